package models

import "strings"

// Kind discriminates the two record types managed by the admin console.
type Kind string

const (
	KindRegular Kind = "regular"
	KindSocial  Kind = "social"
)

// Category values allowed for regular posts. Stored lower-cased.
var Categories = []string{"documentaries", "news", "reports", "interviews", "movies", "photojournalism"}

// CategorySocial is the fixed category stamped on every social link so the
// public pages can filter both record types through the same field.
const CategorySocial = "social"

// Platform values allowed for social links.
var Platforms = []string{"instagram", "facebook", "youtube"}

// DefaultPlatform is used when a social record carries no platform.
const DefaultPlatform = "instagram"

// DefaultAuthor is stamped on regular posts submitted without an author.
const DefaultAuthor = "Anonymous"

// ValidCategory reports whether s (case-insensitive) is one of the six
// regular-post categories.
func ValidCategory(s string) bool {
	s = strings.ToLower(s)
	for _, c := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// ValidPlatform reports whether s is a known social platform.
func ValidPlatform(s string) bool {
	for _, p := range Platforms {
		if s == p {
			return true
		}
	}
	return false
}
