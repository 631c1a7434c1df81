package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Login endpoint shapes. Modern firmware serves /api/auth/login, older
// generations only /api/login.
var loginPaths = []string{"/api/auth/login", "/api/login"}

const csrfHeader = "X-Csrf-Token"

// login performs an interactive cookie login against the appliance. The
// resulting session lives for exactly one logical operation; it is never
// cached or shared across calls.
func (c *Client) login() (*Session, error) {
	if c.rec.Username == "" || c.rec.Password == "" {
		return nil, fmt.Errorf("%w: username/password not configured for controller %s", ErrCredentialsRequired, c.rec.ID)
	}

	payload, err := json.Marshal(map[string]string{
		"username": c.rec.Username,
		"password": c.rec.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	for _, path := range loginPaths {
		url := c.base + path
		c.logger.Debugf("Attempting login at %s", url)

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to build login request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Debugf("Login at %s failed: %v", url, err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			c.logger.Debugf("Login at %s answered %d", url, resp.StatusCode)
			continue
		}

		sess := &Session{
			Cookie:    joinCookies(resp.Header.Values("Set-Cookie")),
			CSRFToken: resp.Header.Get(csrfHeader),
		}
		if sess.CSRFToken == "" {
			sess.CSRFToken = c.fetchCSRFToken(sess.Cookie)
		}
		c.logger.Debugf("Logged in to controller %s via %s", c.rec.ID, path)
		return sess, nil
	}

	return nil, fmt.Errorf("%w: all login endpoints rejected controller %s", ErrAuthenticationFailed, c.rec.ID)
}

// joinCookies reduces Set-Cookie response headers to a single Cookie header
// value, keeping only the name=value pair of each cookie.
func joinCookies(setCookies []string) string {
	pairs := make([]string, 0, len(setCookies))
	for _, sc := range setCookies {
		pair := strings.TrimSpace(strings.SplitN(sc, ";", 2)[0])
		if pair != "" {
			pairs = append(pairs, pair)
		}
	}
	return strings.Join(pairs, "; ")
}

// fetchCSRFToken asks the appliance root for an anti-forgery token. Not
// every firmware generation issues one, so failure here is non-fatal and
// operations proceed without the token.
func (c *Client) fetchCSRFToken(cookie string) string {
	req, err := http.NewRequest(http.MethodGet, c.base+"/", nil)
	if err != nil {
		return ""
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugf("CSRF token probe failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	return resp.Header.Get(csrfHeader)
}
