package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/HammerMeetNail/barberbook/internal/models"
)

type SignUpParams struct {
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type signInPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (c *Client) SignUp(ctx context.Context, params SignUpParams) (models.Identity, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", params, &resp); err != nil {
		return models.Anonymous, err
	}
	return c.setSession(resp.Token, resp.User.Identity()), nil
}

func (c *Client) SignIn(ctx context.Context, phone, password string) (models.Identity, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", signInPayload{Phone: phone, Password: password}, &resp); err != nil {
		return models.Anonymous, err
	}
	return c.setSession(resp.Token, resp.User.Identity()), nil
}

// UseToken adopts a token obtained elsewhere, e.g. from the browser-based
// Google sign-in, and resolves it to an identity.
func (c *Client) UseToken(ctx context.Context, token string) (models.Identity, error) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	var resp meResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		c.setSession("", models.Anonymous)
		return models.Anonymous, err
	}
	return c.setSession(token, resp.User.Identity()), nil
}

// SignOut drops the local session even if the store cannot be reached.
func (c *Client) SignOut(ctx context.Context) error {
	var err error
	if c.Token() != "" {
		err = c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	}
	c.setSession("", models.Anonymous)
	return err
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentSession confirms the held token with the store. An expired token
// signs the client out.
func (c *Client) CurrentSession(ctx context.Context) (models.Identity, error) {
	if c.Token() == "" {
		return models.Anonymous, nil
	}
	var resp meResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp)
	if errors.Is(err, ErrUnauthorized) {
		c.setSession("", models.Anonymous)
		return models.Anonymous, nil
	}
	if err != nil {
		return models.Anonymous, err
	}
	return resp.User.Identity(), nil
}

func (c *Client) OnAuthChange(fn func(models.Identity)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) setSession(token string, identity models.Identity) models.Identity {
	c.mu.Lock()
	c.token = token
	changed := c.identity != identity
	c.identity = identity
	listeners := make([]func(models.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(identity)
		}
	}
	return identity
}
