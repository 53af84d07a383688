package media

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStore struct {
	mu        sync.Mutex
	items     map[string]*Item
	insertErr error
	deleteErr error
	setMainCalls []struct{ ProductID, MediaID string }
}

func newMockStore(items ...Item) *mockStore {
	m := &mockStore{items: map[string]*Item{}}
	for i := range items {
		m.items[items[i].ID] = &items[i]
	}
	return m
}

func (m *mockStore) Insert(_ context.Context, items []Item) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range items {
		m.items[items[i].ID] = &items[i]
	}
	return nil
}

func (m *mockStore) ListByProduct(_ context.Context, productID string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Item
	for _, it := range m.items {
		if it.ProductID == productID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockStore) SetMain(_ context.Context, productID, mediaID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMainCalls = append(m.setMainCalls, struct{ ProductID, MediaID string }{productID, mediaID})
	for _, it := range m.items {
		if it.ProductID == productID {
			it.IsMain = it.ID == mediaID
		}
	}
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type mockObjects struct {
	mu         sync.Mutex
	stored     map[string]bool
	uploadErr  error
	removeErr  error
	notFound   bool
	perPathErr error
	removed    []string
}

func newMockObjects() *mockObjects {
	return &mockObjects{stored: map[string]bool{}}
}

func (m *mockObjects) Upload(_ context.Context, u Upload) (*StoredObject, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "products/" + u.Name
	m.stored[path] = true
	return &StoredObject{URL: "https://cdn.example.com/" + path, Path: path}, nil
}

func (m *mockObjects) Remove(_ context.Context, paths []string) ([]RemoveResult, error) {
	if m.removeErr != nil {
		return nil, m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]RemoveResult, len(paths))
	for i, p := range paths {
		m.removed = append(m.removed, p)
		results[i] = RemoveResult{Path: p, NotFound: m.notFound, Err: m.perPathErr}
		delete(m.stored, p)
	}
	return results, nil
}

func newTestReconciler(store Store, objects ObjectStorage) *Reconciler {
	return NewReconciler(store, objects, zap.NewNop())
}

func TestAddMedia(t *testing.T) {
	store := newMockStore()
	objects := newMockObjects()
	r := newTestReconciler(store, objects)

	items, err := r.AddMedia(context.Background(), "prod-1", []Upload{
		{Name: "a.webp", ContentType: "image/webp", Body: strings.NewReader("a")},
		{Name: "b.mp4", ContentType: "video/mp4", Body: strings.NewReader("b")},
	})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, TypeImage, items[0].FileType)
	assert.Equal(t, TypeVideo, items[1].FileType)
	for _, it := range items {
		assert.Equal(t, "prod-1", it.ProductID)
		assert.False(t, it.IsMain, "AddMedia must never mark a row as main")
		assert.NotEmpty(t, it.FileURL)
		assert.NotEmpty(t, it.PublicID)
	}
	listed, err := store.ListByProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestAddMedia_EmptyInput(t *testing.T) {
	r := newTestReconciler(newMockStore(), newMockObjects())

	items, err := r.AddMedia(context.Background(), "prod-1", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddMedia_InsertFailureCleansUpObjects(t *testing.T) {
	store := newMockStore()
	store.insertErr = errors.New("insert failed")
	objects := newMockObjects()
	r := newTestReconciler(store, objects)

	_, err := r.AddMedia(context.Background(), "prod-1", []Upload{
		{Name: "a.webp", ContentType: "image/webp", Body: strings.NewReader("a")},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert media rows")
	assert.Empty(t, objects.stored, "uploaded objects must be removed after insert failure")
}

func TestAddMedia_UploadFailure(t *testing.T) {
	objects := newMockObjects()
	objects.uploadErr = errors.New("bucket unavailable")
	store := newMockStore()
	r := newTestReconciler(store, objects)

	_, err := r.AddMedia(context.Background(), "prod-1", []Upload{
		{Name: "a.webp", ContentType: "image/webp", Body: strings.NewReader("a")},
	})

	require.Error(t, err)
	listed, lerr := store.ListByProduct(context.Background(), "prod-1")
	require.NoError(t, lerr)
	assert.Empty(t, listed, "no rows may be inserted when an upload fails")
}

func TestSetMain_SingleMainInvariant(t *testing.T) {
	store := newMockStore(
		Item{ID: "m1", ProductID: "prod-1", PublicID: "p/a", IsMain: true},
		Item{ID: "m2", ProductID: "prod-1", PublicID: "p/b"},
		Item{ID: "m3", ProductID: "prod-2", PublicID: "p/c", IsMain: true},
	)
	r := newTestReconciler(store, newMockObjects())

	require.NoError(t, r.SetMain(context.Background(), "prod-1", "m2"))

	items, err := store.ListByProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	mains := 0
	for _, it := range items {
		if it.IsMain {
			mains++
			assert.Equal(t, "m2", it.ID)
		}
	}
	assert.Equal(t, 1, mains)

	// The other product's main flag is untouched.
	other, err := store.GetByID(context.Background(), "m3")
	require.NoError(t, err)
	assert.True(t, other.IsMain)
}

func TestDeleteMedia_StorageFirstThenRow(t *testing.T) {
	store := newMockStore(Item{ID: "m1", ProductID: "prod-1", PublicID: "p/a"})
	objects := newMockObjects()
	objects.stored["p/a"] = true
	r := newTestReconciler(store, objects)

	require.NoError(t, r.DeleteMedia(context.Background(), "m1"))

	assert.Equal(t, []string{"p/a"}, objects.removed)
	_, err := store.GetByID(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMedia_StorageFailureKeepsRow(t *testing.T) {
	store := newMockStore(Item{ID: "m1", ProductID: "prod-1", PublicID: "p/a"})
	objects := newMockObjects()
	objects.perPathErr = errors.New("permission denied")
	r := newTestReconciler(store, objects)

	err := r.DeleteMedia(context.Background(), "m1")

	var sdErr *StorageDeleteError
	require.ErrorAs(t, err, &sdErr)
	assert.Equal(t, "p/a", sdErr.Path)

	// Row preserved so no database reference dangles.
	_, gerr := store.GetByID(context.Background(), "m1")
	assert.NoError(t, gerr)
}

func TestDeleteMedia_ObjectAlreadyGoneProceeds(t *testing.T) {
	store := newMockStore(Item{ID: "m1", ProductID: "prod-1", PublicID: "p/a"})
	objects := newMockObjects()
	objects.notFound = true
	objects.perPathErr = errors.New("object not found")
	r := newTestReconciler(store, objects)

	require.NoError(t, r.DeleteMedia(context.Background(), "m1"))

	_, err := store.GetByID(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMedia_OrphanRowSurfaced(t *testing.T) {
	store := newMockStore(Item{ID: "m1", ProductID: "prod-1", PublicID: "p/a"})
	store.deleteErr = errors.New("connection reset")
	objects := newMockObjects()
	r := newTestReconciler(store, objects)

	err := r.DeleteMedia(context.Background(), "m1")

	var orphan *OrphanRowError
	require.ErrorAs(t, err, &orphan)
	assert.Equal(t, "m1", orphan.MediaID)
	assert.Equal(t, "p/a", orphan.Path)
}

func TestDeleteMedia_UnknownRow(t *testing.T) {
	r := newTestReconciler(newMockStore(), newMockObjects())

	err := r.DeleteMedia(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
