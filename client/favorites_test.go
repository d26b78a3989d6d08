package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/renthaven/renthaven/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// favoritesBackend is an in-memory stand-in for the favorites API
type favoritesBackend struct {
	mu         sync.Mutex
	properties map[string]models.Property
	favorites  map[string]bool
}

func newFavoritesBackend(ids ...string) *favoritesBackend {
	b := &favoritesBackend{
		properties: make(map[string]models.Property),
		favorites:  make(map[string]bool),
	}
	for _, id := range ids {
		b.properties[id] = models.Property{ID: id, Title: "Listing " + id}
	}
	return b
}

func (b *favoritesBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/favorites", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			items := []models.Property{}
			for id := range b.favorites {
				p := b.properties[id]
				p.IsFavorite = true
				items = append(items, p)
			}
			_ = json.NewEncoder(w).Encode(items)

		case http.MethodPost:
			var body struct {
				PropertyID string `json:"propertyId"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			p, ok := b.properties[body.PropertyID]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Property not found"})
				return
			}
			if b.favorites[body.PropertyID] {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Property already in favorites"})
				return
			}
			b.favorites[body.PropertyID] = true
			p.IsFavorite = true
			_ = json.NewEncoder(w).Encode(p)

		case http.MethodDelete:
			delete(b.favorites, r.URL.Query().Get("propertyId"))
			_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}
	})
	mux.HandleFunc("/api/favorites/toggle", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		var body struct {
			PropertyID string `json:"propertyId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := b.properties[body.PropertyID]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Property not found"})
			return
		}
		state := !b.favorites[body.PropertyID]
		if state {
			b.favorites[body.PropertyID] = true
		} else {
			delete(b.favorites, body.PropertyID)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"is_favorite": state})
	})
	return mux
}

func TestFavoritesStoreLifecycle(t *testing.T) {
	backend := newFavoritesBackend("p1", "p2")
	backend.favorites["p1"] = true

	c, _ := newTestClient(t, backend.handler())
	store := NewFavoritesStore(c)
	ctx := context.Background()

	// Signed out: nothing is a favorite
	assert.False(t, store.IsFavorite("p1"))

	// Sign-in loads the set eagerly
	require.NoError(t, store.SetAuthenticated(ctx, true))
	assert.True(t, store.IsFavorite("p1"))
	assert.False(t, store.IsFavorite("p2"))
	assert.Len(t, store.Items(), 1)

	// Mutations refresh from the server
	require.NoError(t, store.Add(ctx, "p2"))
	assert.True(t, store.IsFavorite("p2"))
	assert.Len(t, store.Items(), 2)

	require.NoError(t, store.Remove(ctx, "p1"))
	assert.False(t, store.IsFavorite("p1"))

	favorited, err := store.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, store.IsFavorite("p1"))

	favorited, err = store.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, favorited)
	assert.False(t, store.IsFavorite("p1"))

	// Sign-out clears everything locally
	require.NoError(t, store.SetAuthenticated(ctx, false))
	assert.False(t, store.IsFavorite("p2"))
	assert.Empty(t, store.Items())
}

func TestFavoritesStoreServerErrors(t *testing.T) {
	backend := newFavoritesBackend("p1")
	c, _ := newTestClient(t, backend.handler())
	store := NewFavoritesStore(c)
	ctx := context.Background()

	require.NoError(t, store.SetAuthenticated(ctx, true))

	err := store.Add(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	require.NoError(t, store.Add(ctx, "p1"))
	err = store.Add(ctx, "p1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Property already in favorites", apiErr.Message)

	// The failed add did not corrupt the local set
	assert.True(t, store.IsFavorite("p1"))
}
