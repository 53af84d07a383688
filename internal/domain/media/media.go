// Package media keeps a product's media collection consistent across two
// systems that share no transaction: the object-storage bucket holding the
// files and the database rows referencing them. Operations are ordered to
// minimise orphan states, and any state the two systems cannot agree on is
// reported to the caller rather than hidden.
package media

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
)

// FileType distinguishes images from videos.
type FileType string

const (
	// TypeImage is a still image.
	TypeImage FileType = "image"
	// TypeVideo is a video clip.
	TypeVideo FileType = "video"
)

// ErrNotFound is returned when a requested media row does not exist.
var ErrNotFound = errors.New("media not found")

// Item is one media row for a product.
type Item struct {
	ID        string
	ProductID string
	FileURL   string
	FileType  FileType
	// PublicID is the object's path inside the storage bucket, kept so the
	// object can be deleted or re-signed later.
	PublicID  string
	IsMain    bool
	CreatedAt time.Time
}

// Upload is one file to add to a product's collection.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// IsVideo reports whether the upload's content type denotes a video.
func (u Upload) IsVideo() bool {
	return len(u.ContentType) >= 6 && u.ContentType[:6] == "video/"
}

// StoredObject is the result of a successful object-storage upload.
type StoredObject struct {
	URL  string
	Path string
}

// RemoveResult is the per-path outcome of an object-storage delete.
type RemoveResult struct {
	Path     string
	NotFound bool
	Err      error
}

// ObjectStorage is the bucket holding media files. Remove reports a result
// per path rather than one aggregate flag, so callers can tell a missing
// object from a failed delete.
type ObjectStorage interface {
	Upload(ctx context.Context, u Upload) (*StoredObject, error)
	Remove(ctx context.Context, paths []string) ([]RemoveResult, error)
}

// Store is the database side of the media collection.
type Store interface {
	Insert(ctx context.Context, items []Item) error
	ListByProduct(ctx context.Context, productID string) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	// SetMain clears the main flag on every row of the product and sets it
	// on the given row, in one transaction, so at most one main row per
	// product can ever be observed.
	SetMain(ctx context.Context, productID, mediaID string) error
	Delete(ctx context.Context, id string) error
}

// StorageDeleteError reports that the object could not be removed from
// storage. The database row is intact; the whole operation failed.
type StorageDeleteError struct {
	Path string
	Err  error
}

func (e *StorageDeleteError) Error() string {
	return "storage delete failed for " + e.Path + ": " + e.Err.Error()
}

func (e *StorageDeleteError) Unwrap() error { return e.Err }

// OrphanRowError reports that the object was removed from storage but the
// database row could not be deleted: the row now points at nothing and
// needs a retry or manual cleanup. Never swallowed.
type OrphanRowError struct {
	MediaID string
	Path    string
	Err     error
}

func (e *OrphanRowError) Error() string {
	return "media row " + e.MediaID + " orphaned after storage delete of " + e.Path + ": " + e.Err.Error()
}

func (e *OrphanRowError) Unwrap() error { return e.Err }
