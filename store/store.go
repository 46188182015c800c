// Package store defines the narrow contract against the content database:
// collection-scoped list/create/update/delete over the two collections the
// site publishes from. It carries no business logic; validation and payload
// construction happen in the admin package before a call reaches here.
package store

import (
	"context"
	"errors"
	"time"
)

// Collection is a logical partition of the content store. Exactly two exist.
type Collection string

const (
	CollectionPosts       Collection = "posts"
	CollectionSocialLinks Collection = "socialLinks"
)

var (
	// ErrNotFound is returned by Update when the target id does not exist.
	// Delete tolerates a missing id and reports success instead.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCollection is returned for any collection name other than
	// the two defined above.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Payload is the flat field set written on every save. Kind-specific fields
// are left zero for the other kind; nullable fields are pointers so they
// round-trip as JSON null.
type Payload struct {
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Content         string    `json:"content,omitempty"`
	Platform        string    `json:"platform,omitempty"`
	URL             string    `json:"url,omitempty"`
	Image           *string   `json:"image"`
	Author          *string   `json:"author"`
	InstagramHandle *string   `json:"instagramHandle"`
	FacebookHandle  *string   `json:"facebookHandle"`
	Date            time.Time `json:"date"`
}

// Record is a stored document: a payload plus its store-assigned id.
type Record struct {
	ID string `json:"id"`
	Payload
}

// Store is the content store boundary. Implementations must be safe for
// concurrent use. All operations target a single collection; there are no
// joins or transactions across the two.
type Store interface {
	// ListAll returns every record in the collection, in no guaranteed order.
	ListAll(ctx context.Context, c Collection) ([]Record, error)
	// Create inserts a new record and returns its assigned id.
	Create(ctx context.Context, c Collection, p Payload) (string, error)
	// Update overwrites the payload of an existing record. ErrNotFound if
	// the id is absent.
	Update(ctx context.Context, c Collection, id string, p Payload) error
	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, c Collection, id string) error
}
