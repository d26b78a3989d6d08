package client

import (
	"context"
	"sync"

	"github.com/renthaven/renthaven/internal/models"
)

// PropertyStore keeps a pageable listing snapshot in sync with the server.
// Every read answers from the last snapshot; fetches run on demand. A
// generation counter discards responses that were overtaken by a newer
// query, so a slow page never overwrites fresher results.
type PropertyStore struct {
	client *Client

	mu         sync.Mutex
	query      ListQuery
	items      []models.Property
	loading    bool
	err        error
	hasMore    bool
	generation uint64
}

// NewPropertyStore creates a store over the given client and initial query.
func NewPropertyStore(c *Client, query ListQuery) *PropertyStore {
	if query.Limit < 1 {
		query.Limit = 10
	}
	if query.Page < 1 {
		query.Page = 1
	}
	return &PropertyStore{client: c, query: query, hasMore: true}
}

// Items returns a copy of the current snapshot.
func (s *PropertyStore) Items() []models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.Property, len(s.items))
	copy(items, s.items)
	return items
}

// Loading reports whether a fetch is in flight.
func (s *PropertyStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the error of the last completed fetch, if any.
func (s *PropertyStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// HasMore reports whether another page may exist.
func (s *PropertyStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// SetQuery replaces the filter and refetches from the first page. Any fetch
// still in flight for the old query is discarded when it lands.
func (s *PropertyStore) SetQuery(ctx context.Context, query ListQuery) error {
	if query.Limit < 1 {
		query.Limit = 10
	}
	query.Page = 1

	s.mu.Lock()
	s.query = query
	s.mu.Unlock()

	return s.Refetch(ctx)
}

// Refetch reloads the first page of the current query.
func (s *PropertyStore) Refetch(ctx context.Context) error {
	s.mu.Lock()
	query := s.query
	query.Page = 1
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	items, err := s.client.ListProperties(ctx, query)
	return s.apply(gen, query, items, err, false)
}

// LoadMore fetches the next page and appends it to the snapshot. The page
// cursor only advances when the fetch succeeds, so a failed page is fetched
// again on the next call instead of being skipped.
func (s *PropertyStore) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	query := s.query
	query.Page++
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	items, err := s.client.ListProperties(ctx, query)
	return s.apply(gen, query, items, err, true)
}

// apply commits a fetch result unless a newer fetch started meanwhile.
func (s *PropertyStore) apply(gen uint64, query ListQuery, items []models.Property, err error, appendItems bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// A newer query overtook this response
		return err
	}

	s.loading = false
	s.err = err
	if err != nil {
		return err
	}

	s.query.Page = query.Page
	if appendItems {
		s.items = append(s.items, items...)
	} else {
		s.items = items
	}
	s.hasMore = len(items) >= query.Limit
	return nil
}

// Create adds a listing through the API and prepends the acknowledged state.
func (s *PropertyStore) Create(ctx context.Context, fields map[string]interface{}) (*models.Property, error) {
	property, err := s.client.CreateProperty(ctx, fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = append([]models.Property{*property}, s.items...)
	s.mu.Unlock()
	return property, nil
}

// Update applies a partial update and patches the snapshot in place with the
// acknowledged server state.
func (s *PropertyStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Property, error) {
	property, err := s.client.UpdateProperty(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = *property
			break
		}
	}
	s.mu.Unlock()
	return property, nil
}

// Delete removes a listing and drops it from the snapshot.
func (s *PropertyStore) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteProperty(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// PropertyItem keeps a single listing in sync with the server, under the
// same generation discipline as PropertyStore.
type PropertyItem struct {
	client *Client

	mu         sync.Mutex
	id         string
	property   *models.Property
	loading    bool
	err        error
	generation uint64
}

// NewPropertyItem creates an item store for one listing id.
func NewPropertyItem(c *Client, id string) *PropertyItem {
	return &PropertyItem{client: c, id: id}
}

// Loading reports whether a fetch is in flight.
func (p *PropertyItem) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Err returns the error of the last completed fetch, if any.
func (p *PropertyItem) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Get returns the last fetched state, fetching on first use.
func (p *PropertyItem) Get(ctx context.Context) (*models.Property, error) {
	p.mu.Lock()
	if p.property != nil {
		property := *p.property
		p.mu.Unlock()
		return &property, nil
	}
	p.mu.Unlock()
	return p.Refetch(ctx)
}

// Refetch reloads the listing from the server.
func (p *PropertyItem) Refetch(ctx context.Context) (*models.Property, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.loading = true
	p.mu.Unlock()

	property, err := p.client.GetProperty(ctx, p.id)
	return p.apply(gen, property, err)
}

// Update applies a partial update and stores the acknowledged server state.
func (p *PropertyItem) Update(ctx context.Context, fields map[string]interface{}) (*models.Property, error) {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.loading = true
	p.mu.Unlock()

	property, err := p.client.UpdateProperty(ctx, p.id, fields)
	return p.apply(gen, property, err)
}

func (p *PropertyItem) apply(gen uint64, property *models.Property, err error) (*models.Property, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		if err != nil {
			return nil, err
		}
		result := *property
		return &result, nil
	}

	p.loading = false
	p.err = err
	if err != nil {
		return nil, err
	}
	p.property = property
	result := *property
	return &result, nil
}
