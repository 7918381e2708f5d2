package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"golang.org/x/oauth2"
)

const maxProfileBytes = 1 << 20

// ProfileDecoder turns a provider's profile payload into a UserProfile.
type ProfileDecoder func(body []byte) (*domain.UserProfile, error)

// Client speaks one identity provider's code exchange and profile protocol.
type Client interface {
	Name() domain.ProviderName
	ExchangeCode(ctx context.Context, code string, params ExchangeParams) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error)
}

// ExchangeParams carries the per-request values some providers require.
type ExchangeParams struct {
	State string
}

// Config describes a provider variant. Providers differ only in the values
// set here; the exchange and profile flow is shared.
type Config struct {
	Name          domain.ProviderName
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	TokenURL      string
	ProfileURL    string
	ProfileMethod string
	RequireSecret bool
	RequireState  bool
	Decode        ProfileDecoder
}

func (c Config) validate() error {
	switch {
	case c.Name == "":
		return errors.New("provider name is required")
	case c.ClientID == "":
		return fmt.Errorf("%s: client id is required", c.Name)
	case c.RequireSecret && c.ClientSecret == "":
		return fmt.Errorf("%s: client secret is required", c.Name)
	case c.TokenURL == "" || c.ProfileURL == "":
		return fmt.Errorf("%s: token and profile endpoints are required", c.Name)
	case c.Decode == nil:
		return fmt.Errorf("%s: profile decoder is required", c.Name)
	}
	return nil
}

// OAuthClient is the Client implementation shared by every provider variant.
type OAuthClient struct {
	cfg        Config
	oauth      *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration
}

var _ Client = (*OAuthClient)(nil)

// New creates a client for cfg. Every outbound call is bounded by timeout.
func New(cfg Config, httpClient *http.Client, timeout time.Duration) (*OAuthClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ProfileMethod == "" {
		cfg.ProfileMethod = http.MethodGet
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &OAuthClient{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		timeout:    timeout,
	}, nil
}

func (c *OAuthClient) Name() domain.ProviderName {
	return c.cfg.Name
}

// ExchangeCode trades an authorization code for the provider's access token.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string, params ExchangeParams) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: empty authorization code", domain.ErrProviderExchange)
	}
	if c.cfg.RequireState && params.State == "" {
		return "", fmt.Errorf("%w: %s requires a state parameter", domain.ErrProviderExchange, c.cfg.Name)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if c.cfg.RequireState {
		opts = append(opts, oauth2.SetAuthURLParam("state", params.State))
	}

	tok, err := c.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrProviderExchange, c.cfg.Name, describeExchangeError(err))
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: %s: response missing access_token", domain.ErrProviderExchange, c.cfg.Name)
	}

	return tok.AccessToken, nil
}

// FetchProfile requests the user's profile with the provider access token as bearer.
func (c *OAuthClient) FetchProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, c.cfg.ProfileMethod, c.cfg.ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create profile request: %w", domain.ErrProfileFetch, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	req.Header.Set("Accept", "application/json")

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrProfileFetch, c.cfg.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read profile response: %w", domain.ErrProfileFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: profile request failed with status %d", domain.ErrProfileFetch, c.cfg.Name, resp.StatusCode)
	}

	profile, err := c.cfg.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrProfileFetch, c.cfg.Name, err)
	}
	if profile.ProviderUserID == "" {
		return nil, fmt.Errorf("%w: %s: profile has no user id", domain.ErrProfileFetch, c.cfg.Name)
	}
	profile.Provider = c.cfg.Name

	return profile, nil
}

// withTimeout bounds the call and hands the configured transport to oauth2.
func (c *OAuthClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func describeExchangeError(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := "unknown status"
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.Status
		}
		if retrieveErr.ErrorCode != "" {
			return fmt.Sprintf("%s: %s", status, retrieveErr.ErrorCode)
		}
		return fmt.Sprintf("%s: %s", status, Redact(string(retrieveErr.Body)))
	}
	return Redact(err.Error())
}
