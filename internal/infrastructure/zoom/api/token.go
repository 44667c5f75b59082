// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-sync/internal/logging"
)

// DefaultTokenLifetime applies when the token endpoint omits expires_in.
const DefaultTokenLifetime = 3599 * time.Second

// DefaultRequiredScopes are the scopes the sync core needs on the Zoom app.
var DefaultRequiredScopes = []string{
	"meeting:read:admin",
	"meeting:write:admin",
	"user:read:admin",
}

// TokenSource supplies bearer tokens for Zoom API calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// tokenInvalidator is implemented by token sources that cache tokens.
type tokenInvalidator interface {
	Invalidate()
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token returns the static token.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

type cachedToken struct {
	value  string
	expiry time.Time
}

// TokenProvider obtains Server-to-Server OAuth tokens and caches them until expiry.
// Concurrent refreshes are coalesced into a single token request.
type TokenProvider struct {
	oauthConfig    *clientcredentials.Config
	missing        []string
	requiredScopes []string
	httpClient     *http.Client

	mu     sync.Mutex
	cached cachedToken
	group  singleflight.Group

	now func() time.Time
}

// NewTokenProvider builds a provider from the Zoom client configuration.
func NewTokenProvider(config Config) *TokenProvider {
	config.setDefaults()

	var missing []string
	if config.AccountID == "" {
		missing = append(missing, "account id")
	}
	if config.ClientID == "" {
		missing = append(missing, "client id")
	}
	if config.ClientSecret == "" {
		missing = append(missing, "client secret")
	}

	// Zoom Server-to-Server OAuth requires specific grant_type and account_id
	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.AuthURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{config.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &TokenProvider{
		oauthConfig:    oauthConfig,
		missing:        missing,
		requiredScopes: config.RequiredScopes,
		httpClient:     &http.Client{Timeout: config.Timeout},
		now:            time.Now,
	}
}

// Token returns the cached token, refreshing it when expired.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if len(p.missing) > 0 {
		return "", domain.NewCredentialError("zoom credentials are not configured: missing " + strings.Join(p.missing, ", "))
	}

	if token, ok := p.current(); ok {
		return token, nil
	}

	v, err, _ := p.group.Do("token", func() (any, error) {
		if token, ok := p.current(); ok {
			return token, nil
		}
		return p.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = cachedToken{}
}

func (p *TokenProvider) current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached.value != "" && p.now().Before(p.cached.expiry) {
		return p.cached.value, true
	}
	return "", false
}

func (p *TokenProvider) refresh(ctx context.Context) (string, error) {
	issuedAt := p.now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauthConfig.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode < http.StatusInternalServerError {
			slog.ErrorContext(ctx, "Zoom token request rejected",
				"status", retrieveErr.Response.StatusCode,
				logging.ErrKey, err,
				logging.PriorityCritical())
			return "", domain.NewCredentialError("zoom rejected the OAuth credentials", err)
		}
		slog.ErrorContext(ctx, "Zoom token request failed", logging.ErrKey, err)
		return "", domain.NewConnectionError("failed to obtain Zoom access token", err)
	}
	if token.AccessToken == "" {
		return "", domain.NewCredentialError("zoom token response carried no access token")
	}

	if missing := missingScopes(p.requiredScopes, token); len(missing) > 0 {
		slog.ErrorContext(ctx, "Zoom app is missing required scopes",
			"missing_scopes", missing,
			logging.PriorityCritical())
		return "", domain.NewInsufficientScopeError(missing)
	}

	expiry := issuedAt.Add(DefaultTokenLifetime)
	if expiresIn := tokenExpiresIn(token); expiresIn > 0 {
		expiry = issuedAt.Add(expiresIn)
	}

	p.mu.Lock()
	p.cached = cachedToken{value: token.AccessToken, expiry: expiry}
	p.mu.Unlock()

	slog.DebugContext(ctx, "obtained Zoom access token", "expires_at", expiry.Format(time.RFC3339))
	return token.AccessToken, nil
}

// tokenExpiresIn reads expires_in from the raw token response.
func tokenExpiresIn(token *oauth2.Token) time.Duration {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return 0
}

func missingScopes(required []string, token *oauth2.Token) []string {
	raw, _ := token.Extra("scope").(string)
	granted := make(map[string]struct{})
	for _, scope := range strings.Fields(raw) {
		granted[scope] = struct{}{}
	}

	var missing []string
	for _, scope := range required {
		if _, ok := granted[scope]; !ok {
			missing = append(missing, scope)
		}
	}
	return missing
}
