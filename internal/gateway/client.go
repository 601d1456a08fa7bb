package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/barberbook/internal/engagement"
	"github.com/HammerMeetNail/barberbook/internal/models"
)

var (
	_ engagement.Gateway    = (*Client)(nil)
	_ engagement.AuthSource = (*Client)(nil)
)

var (
	ErrUnauthorized   = errors.New("not signed in")
	ErrWrongPrincipal = errors.New("request is not for the signed-in user")
)

// StatusError is a non-2xx answer from the store.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store returned %d", e.StatusCode)
	}
	return e.Message
}

// Client talks to the store's HTTP API. It is both the core's Gateway and its
// AuthSource: it holds the session token and announces sign-in and sign-out.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu        sync.RWMutex
	token     string
	identity  models.Identity
	listeners map[int]func(models.Identity)
	nextID    int
}

func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		listeners:  make(map[int]func(models.Identity)),
	}, nil
}

type reviewPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewsResponse struct {
	Reviews []models.Review `json:"reviews"`
}

type reviewResponse struct {
	Review models.Review `json:"review"`
}

type countResponse struct {
	Count int `json:"count"`
}

type likesResponse struct {
	Likes []models.Like `json:"likes"`
}

type catalogueResponse struct {
	Items []models.CatalogueItem `json:"items"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type meResponse struct {
	User models.User `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) FetchReviews(ctx context.Context) ([]models.Review, error) {
	var resp reviewsResponse
	if err := c.do(ctx, http.MethodGet, "/api/reviews", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

func (c *Client) InsertReview(ctx context.Context, authorID uuid.UUID, rating int, comment string) (uuid.UUID, error) {
	if err := c.requirePrincipal(authorID); err != nil {
		return uuid.Nil, err
	}
	var resp reviewResponse
	if err := c.do(ctx, http.MethodPost, "/api/reviews", reviewPayload{Rating: rating, Comment: comment}, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.Review.ID, nil
}

func (c *Client) UpdateReview(ctx context.Context, id uuid.UUID, rating int, comment string) error {
	return c.do(ctx, http.MethodPut, "/api/reviews/"+id.String(), reviewPayload{Rating: rating, Comment: comment}, nil)
}

func (c *Client) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/reviews/"+id.String(), nil, nil)
}

func (c *Client) CountReviewsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var resp countResponse
	path := "/api/reviews/count?author=" + url.QueryEscape(authorID.String())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) FetchLikes(ctx context.Context) ([]models.Like, error) {
	var resp likesResponse
	if err := c.do(ctx, http.MethodGet, "/api/likes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Likes, nil
}

func (c *Client) InsertLike(ctx context.Context, userID uuid.UUID, itemID string) error {
	if err := c.requirePrincipal(userID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/likes/"+url.PathEscape(itemID), nil, nil)
}

func (c *Client) DeleteLike(ctx context.Context, userID uuid.UUID, itemID string) error {
	if err := c.requirePrincipal(userID); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/likes/"+url.PathEscape(itemID), nil, nil)
}

func (c *Client) Catalogue(ctx context.Context) ([]models.CatalogueItem, error) {
	var resp catalogueResponse
	if err := c.do(ctx, http.MethodGet, "/api/catalogue", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.Join(ErrUnauthorized, statusErr)
		}
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) requirePrincipal(userID uuid.UUID) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return ErrUnauthorized
	}
	if c.identity.UserID != userID {
		return ErrWrongPrincipal
	}
	return nil
}
