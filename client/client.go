// Package client is a Go client for the RentHaven API. It carries the
// session cookie across requests and offers stateful stores mirroring the
// server resources for long-lived consumers like TUIs and bots.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/renthaven/renthaven/internal/models"
)

// APIError is a non-2xx response decoded from the service's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client is a thin typed wrapper over the HTTP API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL. The cookie jar holds the
// session cookie issued at sign-in.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ListQuery holds the optional listing filters, mirroring the query
// parameters of GET /api/properties.
type ListQuery struct {
	MinPrice int64
	MaxPrice int64
	Beds     int
	Baths    int
	MinSqft  int
	MaxSqft  int
	Types    []string
	Location string
	SortBy   string
	Page     int
	Limit    int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.MinPrice > 0 {
		v.Set("minPrice", strconv.FormatInt(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatInt(q.MaxPrice, 10))
	}
	if q.Beds > 0 {
		v.Set("beds", strconv.Itoa(q.Beds))
	}
	if q.Baths > 0 {
		v.Set("baths", strconv.Itoa(q.Baths))
	}
	if q.MinSqft > 0 {
		v.Set("minSqft", strconv.Itoa(q.MinSqft))
	}
	if q.MaxSqft > 0 {
		v.Set("maxSqft", strconv.Itoa(q.MaxSqft))
	}
	if len(q.Types) > 0 {
		v.Set("type", strings.Join(q.Types, ","))
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ListProperties fetches one page of listings.
func (c *Client) ListProperties(ctx context.Context, query ListQuery) ([]models.Property, error) {
	path := "/api/properties"
	if qs := query.values().Encode(); qs != "" {
		path += "?" + qs
	}
	var properties []models.Property
	if err := c.do(ctx, http.MethodGet, path, nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// GetProperty fetches one listing by id.
func (c *Client) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	if err := c.do(ctx, http.MethodGet, "/api/properties/"+url.PathEscape(id), nil, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// MyProperties fetches every listing owned by the signed-in user.
func (c *Client) MyProperties(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	if err := c.do(ctx, http.MethodGet, "/api/properties/mine", nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// CreateProperty creates a listing and returns the acknowledged server state.
func (c *Client) CreateProperty(ctx context.Context, fields map[string]interface{}) (*models.Property, error) {
	var property models.Property
	if err := c.do(ctx, http.MethodPost, "/api/properties", fields, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// UpdateProperty applies a partial update and returns the acknowledged state.
func (c *Client) UpdateProperty(ctx context.Context, id string, fields map[string]interface{}) (*models.Property, error) {
	var property models.Property
	if err := c.do(ctx, http.MethodPut, "/api/properties/"+url.PathEscape(id), fields, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// DeleteProperty removes a listing owned by the signed-in user.
func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/properties/"+url.PathEscape(id), nil, nil)
}

// Favorites fetches the signed-in user's bookmarked listings.
func (c *Client) Favorites(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	if err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// AddFavorite bookmarks a property and returns it annotated as a favorite.
func (c *Client) AddFavorite(ctx context.Context, propertyID string) (*models.Property, error) {
	var property models.Property
	body := map[string]string{"propertyId": propertyID}
	if err := c.do(ctx, http.MethodPost, "/api/favorites", body, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

// ToggleFavorite flips the bookmark and returns the resulting membership.
func (c *Client) ToggleFavorite(ctx context.Context, propertyID string) (bool, error) {
	var result struct {
		IsFavorite bool `json:"is_favorite"`
	}
	body := map[string]string{"propertyId": propertyID}
	if err := c.do(ctx, http.MethodPost, "/api/favorites/toggle", body, &result); err != nil {
		return false, err
	}
	return result.IsFavorite, nil
}

// RemoveFavorite removes the bookmark. Removing an absent bookmark succeeds.
func (c *Client) RemoveFavorite(ctx context.Context, propertyID string) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites?propertyId="+url.QueryEscape(propertyID), nil, nil)
}

// Me returns the user for the active session.
func (c *Client) Me(ctx context.Context) (*models.AuthUser, error) {
	var user models.AuthUser
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) login(ctx context.Context, email, password string) (*models.AuthUser, error) {
	var user models.AuthUser
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) signup(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/signup", body, nil)
}

func (c *Client) logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) forgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", body, nil)
}

// do performs one request. A non-2xx status is decoded into an *APIError
// from the service's {"error": ...} body.
func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	return json.Unmarshal(data, dest)
}
