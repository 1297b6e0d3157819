package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/domain"
)

var ErrOAuthExchangeFailed = errors.New("oauth code exchange failed")

// OAuthUserInfo is the provider-normalized identity of an OAuth user.
type OAuthUserInfo struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// OAuthTokens holds the provider tokens returned by a code exchange.
type OAuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

// GoogleProvider implements the Google OAuth2 authorization code flow.
// Endpoint URLs are overridable so tests can point it at a local server.
type GoogleProvider struct {
	cfg config.GoogleConfig

	AuthURL     string
	TokenURL    string
	UserInfoURL string
	HTTPClient  *http.Client
}

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		cfg:         cfg,
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *GoogleProvider) Enabled() bool {
	return p.cfg.ClientID != "" && p.cfg.ClientSecret != ""
}

// LoginURL builds the consent screen URL for the given CSRF state.
func (p *GoogleProvider) LoginURL(state string) string {
	params := url.Values{}
	params.Set("client_id", p.cfg.ClientID)
	params.Set("redirect_uri", p.cfg.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("state", state)
	params.Set("access_type", "offline")
	params.Set("prompt", "select_account")
	return p.AuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens and fetches the
// user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*OAuthUserInfo, *OAuthTokens, error) {
	tokens, err := p.exchangeCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	info, err := p.fetchUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	return info, tokens, nil
}

func (p *GoogleProvider) exchangeCode(ctx context.Context, code string) (*OAuthTokens, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("redirect_uri", p.cfg.RedirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrOAuthExchangeFailed, resp.StatusCode, body)
	}

	var tokens OAuthTokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, ErrOAuthExchangeFailed
	}

	return &tokens, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*OAuthUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var payload struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if payload.Sub == "" || payload.Email == "" {
		return nil, errors.New("userinfo response missing subject or email")
	}

	name := payload.Name
	if name == "" {
		name = payload.Email
	}

	return &OAuthUserInfo{
		Provider:      domain.ProviderGoogle,
		Subject:       payload.Sub,
		Email:         payload.Email,
		Name:          name,
		Picture:       payload.Picture,
		EmailVerified: payload.EmailVerified,
	}, nil
}
