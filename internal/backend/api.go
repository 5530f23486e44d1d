package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Backend API paths.
const (
	PathLogin            = "/api/auth/login"
	PathRegister         = "/api/auth/register"
	PathLogout           = "/api/auth/logout"
	PathAuthStatus       = "/api/auth/status"
	PathQuotes           = "/api/quotes"
	PathLeads            = "/api/leads"
	PathProducts         = "/api/products"
	PathAIEstimate       = "/api/ai/estimate"
	PathChat             = "/api/chat"
	PathCustomerProfile  = "/api/customer/profile"
	PathCustomerProjects = "/api/customer/projects"
	PathHealth           = "/health"
)

func (c *Client) get(ctx context.Context, path string) (*Body, error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodGet})
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*Body, error) {
	return c.Request(ctx, path, RequestOptions{Method: method, Body: body})
}

func (c *Client) Login(ctx context.Context, credentials any) (*Body, error) {
	return c.send(ctx, http.MethodPost, PathLogin, credentials)
}

func (c *Client) Register(ctx context.Context, user any) (*Body, error) {
	return c.send(ctx, http.MethodPost, PathRegister, user)
}

// Logout tells the backend and then clears the stored token whether or not
// the backend call succeeded.
func (c *Client) Logout(ctx context.Context) error {
	_, callErr := c.Request(ctx, PathLogout, RequestOptions{Method: http.MethodPost})
	clearErr := c.tokens.ClearToken(ctx)
	return errors.Join(callErr, clearErr)
}

func (c *Client) AuthStatus(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathAuthStatus)
}

func (c *Client) Quotes(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathQuotes)
}

func (c *Client) CreateQuote(ctx context.Context, quote any) (*Body, error) {
	return c.send(ctx, http.MethodPost, PathQuotes, quote)
}

func (c *Client) Quote(ctx context.Context, id string) (*Body, error) {
	return c.get(ctx, PathQuotes+"/"+url.PathEscape(id))
}

func (c *Client) UpdateQuote(ctx context.Context, id string, quote any) (*Body, error) {
	return c.send(ctx, http.MethodPut, PathQuotes+"/"+url.PathEscape(id), quote)
}

func (c *Client) Leads(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathLeads)
}

func (c *Client) CreateLead(ctx context.Context, lead any) (*Body, error) {
	return c.send(ctx, http.MethodPost, PathLeads, lead)
}

func (c *Client) Products(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathProducts)
}

func (c *Client) Product(ctx context.Context, id string) (*Body, error) {
	return c.get(ctx, PathProducts+"/"+url.PathEscape(id))
}

func (c *Client) AIEstimate(ctx context.Context, request any) (*Body, error) {
	return c.send(ctx, http.MethodPost, PathAIEstimate, request)
}

// SendChatMessage posts {"message": message}.
func (c *Client) SendChatMessage(ctx context.Context, message string) (*Body, error) {
	return c.send(ctx, http.MethodPost, PathChat, map[string]string{"message": message})
}

func (c *Client) CustomerProfile(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathCustomerProfile)
}

func (c *Client) UpdateCustomerProfile(ctx context.Context, profile any) (*Body, error) {
	return c.send(ctx, http.MethodPut, PathCustomerProfile, profile)
}

func (c *Client) CustomerProjects(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathCustomerProjects)
}

func (c *Client) Health(ctx context.Context) (*Body, error) {
	return c.get(ctx, PathHealth)
}
