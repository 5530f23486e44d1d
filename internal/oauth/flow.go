// Package oauth runs the authorization-code round trip against the identity
// provider for one tenant and one browsing context.
//
// Phases: Idle -> AuthorizationRequested -> CallbackValidated -> Idle.
// A second authorization request replaces the pending state, so only the
// most recent round trip can complete.
package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"gfe/internal/tenant/models"
	"gfe/pkg/secrets"
)

var (
	// ErrInvalidState means the callback state does not match the pending
	// state, or no authorization was requested. No token exchange happens.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrTokenExchangeFailed means the token endpoint rejected the code or
	// could not be reached.
	ErrTokenExchangeFailed = errors.New("failed to exchange authorization code for token")
)

// Phase is where a browsing context stands in the authorization round trip.
type Phase string

const (
	PhaseIdle                   Phase = "idle"
	PhaseAuthorizationRequested Phase = "authorization_requested"
	PhaseCallbackValidated      Phase = "callback_validated"
)

// Session is the slice of the browsing-context session the flow needs.
type Session interface {
	GetToken(ctx context.Context) (string, bool, error)
	GetPendingState(ctx context.Context) (string, bool, error)
	SetPendingState(ctx context.Context, state string) error
	ClearPendingState(ctx context.Context) error
}

// TokenResponse is the token endpoint payload. The caller installs
// AccessToken into the session.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scope        string    `json:"scope,omitempty"`
}

// Flow is the authorization-code flow for one tenant and browsing context.
type Flow struct {
	tenant     models.TenantConfig
	endpoints  models.OAuthEndpoints
	session    Session
	newState   func() (string, error)
	httpClient *http.Client
	onPhase    func(Phase)
}

type Option func(*Flow)

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Flow) { f.httpClient = c }
}

// WithStateGenerator replaces the crypto/rand state source. Tests only.
func WithStateGenerator(gen func() (string, error)) Option {
	return func(f *Flow) { f.newState = gen }
}

// WithPhaseObserver is called on every phase transition.
func WithPhaseObserver(fn func(Phase)) Option {
	return func(f *Flow) { f.onPhase = fn }
}

func New(tenant models.TenantConfig, endpoints models.OAuthEndpoints, session Session, opts ...Option) *Flow {
	f := &Flow{
		tenant:    tenant,
		endpoints: endpoints,
		session:   session,
		newState:  secrets.Generate,
		onPhase:   func(Phase) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the OAuth projection with a freshly drawn state. The state
// is not stored; only GetAuthorizationURL starts a round trip.
func (f *Flow) Config() (models.OAuthParams, error) {
	return f.tenant.OAuthProjection(f.endpoints, f.newState)
}

// GetAuthorizationURL stores a fresh pending state and returns the URL to
// send the browser to. Any earlier pending state is invalidated.
func (f *Flow) GetAuthorizationURL(ctx context.Context) (string, error) {
	params, err := f.Config()
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	if err := f.session.SetPendingState(ctx, params.State); err != nil {
		return "", fmt.Errorf("store pending state: %w", err)
	}
	f.onPhase(PhaseAuthorizationRequested)
	return oauth2Config(params).AuthCodeURL(params.State), nil
}

// HandleCallback validates returnedState against the pending state and
// exchanges code for tokens. The pending state is cleared only on success.
func (f *Flow) HandleCallback(ctx context.Context, code, returnedState string) (*TokenResponse, error) {
	if err := f.ValidateState(ctx, returnedState); err != nil {
		return nil, err
	}
	f.onPhase(PhaseCallbackValidated)

	params := models.OAuthParams{
		ClientID:     f.tenant.OAuth.ClientID,
		AuthorizeURL: f.endpoints.AuthorizeURL,
		TokenURL:     f.endpoints.TokenURL,
		Scope:        f.endpoints.Scope,
		RedirectURI:  f.tenant.OAuth.RedirectURI,
	}
	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}
	token, err := oauth2Config(params).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchangeFailed, err)
	}

	if err := f.session.ClearPendingState(ctx); err != nil {
		return nil, fmt.Errorf("clear pending state: %w", err)
	}
	f.onPhase(PhaseIdle)
	return toTokenResponse(token), nil
}

// ValidateState checks returnedState against the pending state without
// consuming it. It returns ErrInvalidState when nothing is pending or the
// values differ.
func (f *Flow) ValidateState(ctx context.Context, returnedState string) error {
	pending, ok, err := f.session.GetPendingState(ctx)
	if err != nil {
		return fmt.Errorf("read pending state: %w", err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(pending), []byte(returnedState)) != 1 {
		return ErrInvalidState
	}
	return nil
}

// IsAuthenticated reports whether the browsing context holds a token.
func (f *Flow) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := f.session.GetToken(ctx)
	return ok, err
}

// Phase derives the current phase from the session. Only the phases the
// session records are reported: AuthorizationRequested while a state is
// pending, Idle otherwise. CallbackValidated lasts only for the duration of
// HandleCallback and is visible through WithPhaseObserver alone.
func (f *Flow) Phase(ctx context.Context) (Phase, error) {
	_, pending, err := f.session.GetPendingState(ctx)
	if err != nil {
		return "", err
	}
	if pending {
		return PhaseAuthorizationRequested, nil
	}
	return PhaseIdle, nil
}

// oauth2Config sends client_id in the form body; the provider issues public
// clients without a secret.
func oauth2Config(p models.OAuthParams) *oauth2.Config {
	var scopes []string
	if p.Scope != "" {
		scopes = strings.Fields(p.Scope)
	}
	return &oauth2.Config{
		ClientID:    p.ClientID,
		RedirectURL: p.RedirectURI,
		Scopes:      scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthorizeURL,
			TokenURL:  p.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func toTokenResponse(t *oauth2.Token) *TokenResponse {
	resp := &TokenResponse{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		Expiry:       t.Expiry,
	}
	if scope, ok := t.Extra("scope").(string); ok {
		resp.Scope = scope
	}
	return resp
}
