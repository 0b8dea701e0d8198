package okta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Client talks to one Okta organization. It carries the session id
// obtained from CreateSession so that app-link and assertion requests
// are made on behalf of the authenticated user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
}

// NewClient builds a client for https://<organization>.okta.com. An
// organization given as a full URL is used as-is.
func NewClient(organization string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := organization
	if !strings.Contains(baseURL, "://") {
		baseURL = fmt.Sprintf("https://%s.okta.com", organization)
	}

	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// AuthRequest is the body of the primary authentication call. Exactly
// one of username/password or state token is populated.
type AuthRequest struct {
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	StateToken string `json:"stateToken,omitempty"`
}

// NewCredentialsRequest starts a login from a username/password pair.
func NewCredentialsRequest(username, password string) AuthRequest {
	return AuthRequest{Username: username, Password: password}
}

// NewStateTokenRequest resumes a login from a previously issued state
// token.
func NewStateTokenRequest(stateToken string) AuthRequest {
	return AuthRequest{StateToken: stateToken}
}

// AuthStatus is the top-level status of an authentication response.
type AuthStatus string

const (
	StatusUnauthenticated AuthStatus = "UNAUTHENTICATED"
	StatusPasswordWarn    AuthStatus = "PASSWORD_WARN"
	StatusPasswordExpired AuthStatus = "PASSWORD_EXPIRED"
	StatusRecovery        AuthStatus = "RECOVERY"
	StatusLockedOut       AuthStatus = "LOCKED_OUT"
	StatusMfaEnroll       AuthStatus = "MFA_ENROLL"
	StatusMfaRequired     AuthStatus = "MFA_REQUIRED"
	StatusMfaChallenge    AuthStatus = "MFA_CHALLENGE"
	StatusSuccess         AuthStatus = "SUCCESS"
)

// AuthResponse is the shared response shape of the authentication and
// factor verification endpoints.
type AuthResponse struct {
	StateToken   string     `json:"stateToken,omitempty"`
	SessionToken string     `json:"sessionToken,omitempty"`
	ExpiresAt    string     `json:"expiresAt,omitempty"`
	Status       AuthStatus `json:"status"`
	Embedded     Embedded   `json:"_embedded,omitempty"`
}

// Embedded carries the objects nested under _embedded.
type Embedded struct {
	Factors []Factor `json:"factors,omitempty"`
	User    User     `json:"user,omitempty"`
}

// User identifies the subject of a login attempt.
type User struct {
	ID      string `json:"id"`
	Profile struct {
		Login string `json:"login"`
	} `json:"profile"`
}

// AppLink is one entry of the user's application link list.
type AppLink struct {
	AppName string `json:"appName"`
	Label   string `json:"label"`
	LinkURL string `json:"linkUrl"`
}

// Authn submits a primary authentication request.
func (c *Client) Authn(ctx context.Context, req AuthRequest) (*AuthResponse, error) {
	loginType := "credentials"
	if req.StateToken != "" {
		loginType = "state token"
	}
	logrus.Debugf("Attempting to login with %s", loginType)

	var response AuthResponse
	if err := c.postJSON(ctx, c.baseURL+"/api/v1/authn", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// VerifyFactor issues a verification call against the factor's own
// verify endpoint.
func (c *Client) VerifyFactor(ctx context.Context, factor Factor, req VerifyRequest) (*AuthResponse, error) {
	url, err := factor.VerifyURL()
	if err != nil {
		return nil, err
	}

	var response AuthResponse
	if err := c.postJSON(ctx, url, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateSession exchanges a session token for an API session, which
// authenticates subsequent app-link and assertion requests.
func (c *Client) CreateSession(ctx context.Context, sessionToken string) error {
	body := map[string]string{"sessionToken": sessionToken}

	var session struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, c.baseURL+"/api/v1/sessions", body, &session); err != nil {
		return err
	}
	if session.ID == "" {
		return fmt.Errorf("no session id in session response")
	}

	c.sessionID = session.ID
	return nil
}

// AppLinks lists the applications assigned to the current session's
// user.
func (c *Client) AppLinks(ctx context.Context) ([]AppLink, error) {
	var links []AppLink
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/users/me/appLinks", &links); err != nil {
		return nil, err
	}
	return links, nil
}

// FetchAssertion retrieves the base64-encoded assertion document for
// an application link.
func (c *Client) FetchAssertion(ctx context.Context, linkURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkURL, nil)
	if err != nil {
		return "", err
	}
	c.addSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching assertion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching assertion: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading assertion body: %w", err)
	}

	return strings.TrimSpace(string(body)), nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.addSession(req)

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.addSession(req)

	return c.do(req, out)
}

func (c *Client) addSession(req *http.Request) {
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: c.sessionID})
	}
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Body: body}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// APIError is a non-2xx response from the provider, kept verbatim for
// diagnostics.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("okta returned status %d: %s", e.Status, string(e.Body))
}
