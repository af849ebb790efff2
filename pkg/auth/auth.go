package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTokenURL is Reddit's OAuth2 token endpoint. Token requests go to
// www.reddit.com, not oauth.reddit.com.
const DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

// OAuth2 grant types supported by Reddit script applications.
const (
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"
)

// Config holds authenticator configuration.
type Config struct {
	// ClientID and ClientSecret identify the registered application.
	// They are sent as HTTP basic auth on the token request.
	ClientID     string
	ClientSecret string

	// Username and Password select the password grant. Leave both empty
	// for application-only access via client_credentials.
	Username string
	Password string

	// UserAgent is required. Reddit throttles or blocks default agents.
	UserAgent string

	// TokenURL overrides the token endpoint. Defaults to DefaultTokenURL.
	TokenURL string

	// HTTPClient overrides the HTTP client used for token requests.
	HTTPClient *http.Client
}

// Token is an issued access token with its expiry.
type Token struct {
	AccessToken string
	Type        string
	Scope       string
	Expires     time.Time
}

// TTL returns the remaining lifetime of the token.
func (t *Token) TTL() time.Duration {
	return time.Until(t.Expires)
}

// IsExpired returns true if the token has lapsed.
func (t *Token) IsExpired() bool {
	return time.Now().After(t.Expires)
}

// Authenticator requests access tokens from the Reddit token endpoint.
type Authenticator struct {
	client    *http.Client
	clientID  string
	secret    string
	userAgent string
	tokenURL  string
	form      url.Values
	grant     string
}

// NewAuthenticator creates an authenticator from config.
// The grant type follows from the config: username and password select the
// password grant, otherwise client_credentials is used.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID cannot be empty")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user agent cannot be empty")
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return nil, fmt.Errorf("username and password must be set together")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if _, err := url.Parse(tokenURL); err != nil {
		return nil, fmt.Errorf("invalid token URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	grant := GrantClientCredentials
	form := url.Values{}
	if cfg.Username != "" {
		grant = GrantPassword
		form.Set("username", cfg.Username)
		form.Set("password", cfg.Password)
	}
	form.Set("grant_type", grant)

	return &Authenticator{
		client:    httpClient,
		clientID:  cfg.ClientID,
		secret:    cfg.ClientSecret,
		userAgent: cfg.UserAgent,
		tokenURL:  tokenURL,
		form:      form,
		grant:     grant,
	}, nil
}

// GrantType returns the grant the authenticator uses.
func (a *Authenticator) GrantType() string {
	return a.grant
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Authenticate requests a fresh access token.
func (a *Authenticator) Authenticate(ctx context.Context) (*Token, error) {
	body := strings.NewReader(a.form.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, body)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("create token request: %w", err)}
	}

	req.SetBasicAuth(a.clientID, a.secret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		TokenRequests.WithLabelValues("error").Inc()
		return nil, &AuthError{Err: fmt.Errorf("execute token request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		TokenRequests.WithLabelValues("error").Inc()
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read token response: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		TokenRequests.WithLabelValues("error").Inc()
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		TokenRequests.WithLabelValues("error").Inc()
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("unmarshal token response: %w", err),
		}
	}

	// Reddit reports invalid credentials as 200 with an error body.
	if tr.AccessToken == "" {
		TokenRequests.WithLabelValues("error").Inc()
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("access token empty in response"),
		}
	}

	TokenRequests.WithLabelValues("success").Inc()

	return &Token{
		AccessToken: tr.AccessToken,
		Type:        tr.TokenType,
		Scope:       tr.Scope,
		Expires:     time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// AuthError represents a failed token request.
type AuthError struct {
	StatusCode int
	// Body holds the raw response body, which may carry details from Reddit.
	Body string
	// Err is the underlying error, e.g. a network or decoding failure.
	Err error
}

func (e *AuthError) Error() string {
	var sb strings.Builder
	sb.WriteString("auth error")

	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status code %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&sb, ", body: %q", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ", err: %v", e.Err)
	}

	return sb.String()
}

func (e *AuthError) Unwrap() error { return e.Err }
