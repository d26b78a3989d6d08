package client

import (
	"context"
	"sync"

	"github.com/renthaven/renthaven/internal/models"
)

// FavoritesStore mirrors the signed-in user's bookmark set. Mutations go
// through the API first and the set is refreshed from the server response,
// so local state never diverges from what the server acknowledged.
type FavoritesStore struct {
	client *Client

	mu            sync.Mutex
	authenticated bool
	items         []models.Property
	ids           map[string]struct{}
	err           error
}

// NewFavoritesStore creates an empty store. Call SetAuthenticated once the
// session state is known.
func NewFavoritesStore(c *Client) *FavoritesStore {
	return &FavoritesStore{client: c, ids: make(map[string]struct{})}
}

// SetAuthenticated tracks session state: the set is loaded eagerly on
// sign-in and cleared on sign-out.
func (f *FavoritesStore) SetAuthenticated(ctx context.Context, authenticated bool) error {
	f.mu.Lock()
	f.authenticated = authenticated
	if !authenticated {
		f.items = nil
		f.ids = make(map[string]struct{})
		f.err = nil
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	return f.Refresh(ctx)
}

// Refresh reloads the bookmark set from the server.
func (f *FavoritesStore) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if !f.authenticated {
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	items, err := f.client.Favorites(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		return err
	}
	f.items = items
	f.ids = make(map[string]struct{}, len(items))
	for i := range items {
		f.ids[items[i].ID] = struct{}{}
	}
	return nil
}

// Items returns a copy of the bookmarked listings.
func (f *FavoritesStore) Items() []models.Property {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]models.Property, len(f.items))
	copy(items, f.items)
	return items
}

// IsFavorite reports membership against the local snapshot.
func (f *FavoritesStore) IsFavorite(propertyID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ids[propertyID]
	return ok
}

// Err returns the error of the last refresh, if any.
func (f *FavoritesStore) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Add bookmarks a property, then refreshes from the server.
func (f *FavoritesStore) Add(ctx context.Context, propertyID string) error {
	if _, err := f.client.AddFavorite(ctx, propertyID); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// Remove drops the bookmark, then refreshes from the server.
func (f *FavoritesStore) Remove(ctx context.Context, propertyID string) error {
	if err := f.client.RemoveFavorite(ctx, propertyID); err != nil {
		return err
	}
	return f.Refresh(ctx)
}

// Toggle flips the bookmark and refreshes; returns the resulting membership.
func (f *FavoritesStore) Toggle(ctx context.Context, propertyID string) (bool, error) {
	favorited, err := f.client.ToggleFavorite(ctx, propertyID)
	if err != nil {
		return false, err
	}
	if err := f.Refresh(ctx); err != nil {
		return favorited, err
	}
	return favorited, nil
}
