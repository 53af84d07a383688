package media

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentUploads bounds the upload fan-out per AddMedia call.
const maxConcurrentUploads = 4

// Reconciler coordinates the object-storage bucket and the media table.
type Reconciler struct {
	store   Store
	objects ObjectStorage
	lg      *zap.Logger
}

// NewReconciler creates a Reconciler. The logger is used for best-effort
// cleanup failures that do not fail the operation itself.
func NewReconciler(store Store, objects ObjectStorage, lg *zap.Logger) *Reconciler {
	return &Reconciler{store: store, objects: objects, lg: lg}
}

// AddMedia uploads the given files and inserts one row per file, never as
// main. Uploads run concurrently. If any upload or the insert fails, the
// objects uploaded so far are removed best-effort so the bucket does not
// accumulate files no row references.
func (r *Reconciler) AddMedia(ctx context.Context, productID string, uploads []Upload) ([]Item, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	items := make([]Item, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)
	for i, u := range uploads {
		g.Go(func() error {
			obj, err := r.objects.Upload(gctx, u)
			if err != nil {
				return errors.Wrapf(err, "upload %q", u.Name)
			}

			fileType := TypeImage
			if u.IsVideo() {
				fileType = TypeVideo
			}
			items[i] = Item{
				ID:        uuid.New().String(),
				ProductID: productID,
				FileURL:   obj.URL,
				FileType:  fileType,
				PublicID:  obj.Path,
				IsMain:    false,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.removeUploaded(ctx, items)
		return nil, err
	}

	if err := r.store.Insert(ctx, items); err != nil {
		r.removeUploaded(ctx, items)
		return nil, errors.Wrap(err, "insert media rows")
	}

	return items, nil
}

// SetMain promotes one media row to main. The store performs both writes
// (clear all, set one) in a single transaction.
func (r *Reconciler) SetMain(ctx context.Context, productID, mediaID string) error {
	if err := r.store.SetMain(ctx, productID, mediaID); err != nil {
		return errors.Wrap(err, "set main media")
	}
	return nil
}

// DeleteMedia removes a media item from both systems, storage first. If the
// storage delete fails the row is kept and a StorageDeleteError is returned;
// a not-found object is treated as already gone and the row delete proceeds.
// If the row delete fails after the object is gone, the caller gets an
// OrphanRowError describing the dangling row.
func (r *Reconciler) DeleteMedia(ctx context.Context, mediaID string) error {
	item, err := r.store.GetByID(ctx, mediaID)
	if err != nil {
		return errors.Wrap(err, "load media row")
	}

	results, err := r.objects.Remove(ctx, []string{item.PublicID})
	if err != nil {
		return &StorageDeleteError{Path: item.PublicID, Err: err}
	}
	for _, res := range results {
		if res.Err != nil && !res.NotFound {
			return &StorageDeleteError{Path: res.Path, Err: res.Err}
		}
	}

	if err := r.store.Delete(ctx, mediaID); err != nil {
		return &OrphanRowError{MediaID: mediaID, Path: item.PublicID, Err: err}
	}
	return nil
}

// ListByProduct returns the product's media collection.
func (r *Reconciler) ListByProduct(ctx context.Context, productID string) ([]Item, error) {
	return r.store.ListByProduct(ctx, productID)
}

// removeUploaded deletes objects that were uploaded before a failure.
// Best effort: a cleanup failure is logged, not returned, because the
// original error is what the caller needs to see.
func (r *Reconciler) removeUploaded(ctx context.Context, items []Item) {
	paths := make([]string, 0, len(items))
	for _, it := range items {
		if it.PublicID != "" {
			paths = append(paths, it.PublicID)
		}
	}
	if len(paths) == 0 {
		return
	}
	if _, err := r.objects.Remove(ctx, paths); err != nil {
		r.lg.Warn("cleanup of uploaded objects failed",
			zap.Strings("paths", paths),
			zap.Error(err),
		)
	}
}
