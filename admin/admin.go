// Package admin implements the content-management workflow behind the admin
// console: a form controller that drafts, validates, and saves records, and a
// list controller that keeps both collections loaded for display. Both take
// their dependencies through constructors so callers can substitute fakes.
package admin

import (
	"errors"

	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/store"
)

var (
	// ErrValidation marks client-side required-field failures. No store
	// call is made when validation fails.
	ErrValidation = errors.New("validation failed")
	// ErrPermission is returned when a mutating operation runs without a
	// signed-in session, before any store call.
	ErrPermission = errors.New("not signed in")
	// ErrKindLocked is returned by SetKind while a record is being edited.
	ErrKindLocked = errors.New("kind cannot change while editing")
)

// Session reports whether an admin is currently signed in. The auth gate and
// per-request token sessions both satisfy it.
type Session interface {
	SignedIn() bool
}

// NoticeKind distinguishes success from error notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

func collectionFor(k models.Kind) store.Collection {
	if k == models.KindSocial {
		return store.CollectionSocialLinks
	}
	return store.CollectionPosts
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
