// Package controller implements the integration client for the wireless
// network controller appliance. The same capability is exposed under
// different paths depending on the appliance firmware generation, so every
// operation cascades over an ordered list of endpoint shapes: the modern
// versioned API with static credentials first, the legacy cookie-session
// API second.
package controller

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"

	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/macutil"
)

// DefaultAuthorizeMinutes is the guest authorization duration used when the
// caller does not supply one.
const DefaultAuthorizeMinutes = 120

// Client talks to one appliance. It holds no session state: operations that
// need cookie authentication log in on entry and drop the session on exit.
type Client struct {
	rec    *Record
	base   string
	http   *http.Client
	logger Logger
}

// NewClient creates an integration client for the given controller record.
// insecure disables TLS certificate validation for appliances running
// self-signed certificates.
func NewClient(rec *Record, insecure bool, logger Logger) *Client {
	return &Client{
		rec:  rec,
		base: baseURL(rec),
		http: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
			},
		},
		logger: logger,
	}
}

// modernGET builds the modern versioned API shapes for a read operation.
func (c *Client) modernGET(path string) []candidate {
	return []candidate{
		{http.MethodGet, c.base + "/proxy/network/integration/v1" + path, nil},
		{http.MethodGet, c.base + "/integration/v1" + path, nil},
	}
}

// legacyGET builds the legacy cookie-API shapes for a per-site read.
func (c *Client) legacyGET(site, path string) []candidate {
	return []candidate{
		{http.MethodGet, c.base + "/api/s/" + site + path, nil},
		{http.MethodGet, c.base + "/proxy/network/api/s/" + site + path, nil},
	}
}

// fetch runs a read operation: modern API with static credentials first,
// legacy cookie session second. An UpstreamError from the modern cascade is
// final; ErrNoEndpoint and auth-shaped refusals fall through to the legacy
// path when a username/password is available.
func (c *Client) fetch(modern, legacy []candidate) (interface{}, error) {
	mode, headers := resolveCredentials(c.rec)

	var modernErr error
	if mode != credSession {
		payload, err := c.tryCandidates(headers, modern)
		if err == nil {
			return payload, nil
		}
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		modernErr = err
	}

	if c.rec.Username == "" || c.rec.Password == "" {
		if modernErr != nil {
			return nil, modernErr
		}
		return nil, fmt.Errorf("%w: controller %s has no api key or username/password", ErrCredentialsRequired, c.rec.ID)
	}

	sess, err := c.login()
	if err != nil {
		return nil, err
	}
	return c.tryCandidates(sess.Headers(), legacy)
}

// ListSites returns every management partition on the appliance.
func (c *Client) ListSites() ([]Site, error) {
	legacy := []candidate{
		{http.MethodGet, c.base + "/api/self/sites", nil},
		{http.MethodGet, c.base + "/api/stat/sites", nil},
		{http.MethodGet, c.base + "/proxy/network/api/self/sites", nil},
	}
	payload, err := c.fetch(c.modernGET("/sites"), legacy)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return mapSites(payload), nil
}

// ListWirelessNetworks returns the SSIDs configured in a site.
func (c *Client) ListWirelessNetworks(site string) ([]WirelessNetwork, error) {
	legacy := append(c.legacyGET(site, "/rest/wlanconf"), c.legacyGET(site, "/list/wlanconf")...)
	payload, err := c.fetch(c.modernGET("/sites/"+site+"/wlans"), legacy)
	if err != nil {
		return nil, fmt.Errorf("failed to list wireless networks for site %s: %w", site, err)
	}
	return mapWirelessNetworks(payload), nil
}

// ListAccessPoints returns the radio devices of a site. Gateways and
// switches present in the raw device list are filtered out.
func (c *Client) ListAccessPoints(site string) ([]AccessPoint, error) {
	payload, err := c.fetch(c.modernGET("/sites/"+site+"/devices"), c.legacyGET(site, "/stat/device"))
	if err != nil {
		return nil, fmt.Errorf("failed to list access points for site %s: %w", site, err)
	}
	return mapAccessPoints(payload), nil
}

// ListClients returns the currently known client devices of a site.
func (c *Client) ListClients(site string) ([]WirelessClient, error) {
	payload, err := c.fetch(c.modernGET("/sites/"+site+"/clients"), c.legacyGET(site, "/stat/sta"))
	if err != nil {
		return nil, fmt.Errorf("failed to list clients for site %s: %w", site, err)
	}
	return mapClients(payload), nil
}

// ResolveMACByIP finds the MAC of the client currently holding an IP. The
// appliance has no dedicated endpoint for this, so the client list is
// scanned.
func (c *Client) ResolveMACByIP(site, ip string) (string, error) {
	clients, err := c.ListClients(site)
	if err != nil {
		return "", err
	}
	for _, cl := range clients {
		if cl.IP == ip {
			return cl.MAC, nil
		}
	}
	return "", fmt.Errorf("%w: no client with ip %s in site %s", ErrResolutionFailed, ip, site)
}

// SystemInfo reads the appliance's version and uptime. Only the legacy
// cookie API exposes this.
func (c *Client) SystemInfo(site string) (*SystemInfo, error) {
	sess, err := c.login()
	if err != nil {
		return nil, err
	}
	payload, err := c.tryCandidates(sess.Headers(), c.legacyGET(site, "/stat/sysinfo"))
	if err != nil {
		return nil, fmt.Errorf("failed to read system info for site %s: %w", site, err)
	}
	return mapSystemInfo(payload), nil
}

// runCommand issues a legacy station-manager command under a fresh cookie
// session.
func (c *Client) runCommand(site string, body map[string]interface{}) error {
	sess, err := c.login()
	if err != nil {
		return err
	}
	candidates := []candidate{
		{http.MethodPost, c.base + "/api/s/" + site + "/cmd/stamgr", body},
		{http.MethodPost, c.base + "/proxy/network/api/s/" + site + "/cmd/stamgr", body},
	}
	_, err = c.tryCandidates(sess.Headers(), candidates)
	return err
}

// AuthorizeGuest grants a guest device access for the given number of
// minutes (DefaultAuthorizeMinutes when zero). The legacy authorize-guest
// command is the primary path; when it fails entirely the modern API is
// tried by looking the client up by MAC and issuing an action against its
// id.
func (c *Client) AuthorizeGuest(site, mac string, minutes int) error {
	mac = macutil.Normalize(mac)
	if minutes <= 0 {
		minutes = DefaultAuthorizeMinutes
	}

	primaryErr := c.runCommand(site, map[string]interface{}{
		"cmd":     "authorize-guest",
		"mac":     mac,
		"minutes": minutes,
	})
	if primaryErr == nil {
		return nil
	}
	c.logger.Debugf("Legacy authorize-guest failed for %s, trying modern action API: %v", mac, primaryErr)

	clients, err := c.ListClients(site)
	if err != nil {
		return fmt.Errorf("failed to authorize guest %s: %w", mac, primaryErr)
	}

	var clientID string
	for _, cl := range clients {
		if macutil.Equal(cl.MAC, mac) {
			clientID = cl.ID
			break
		}
	}
	if clientID == "" {
		return fmt.Errorf("%w: mac %s in site %s", ErrClientNotFound, mac, site)
	}

	mode, headers := resolveCredentials(c.rec)
	if mode == credSession {
		sess, err := c.login()
		if err != nil {
			return err
		}
		headers = sess.Headers()
	}

	action := map[string]interface{}{"action": "AUTHORIZE_GUEST_ACCESS"}
	candidates := []candidate{
		{http.MethodPost, c.base + "/proxy/network/integration/v1/sites/" + site + "/clients/" + clientID + "/actions", action},
		{http.MethodPost, c.base + "/integration/v1/sites/" + site + "/clients/" + clientID + "/actions", action},
	}
	if _, err := c.tryCandidates(headers, candidates); err != nil {
		return fmt.Errorf("failed to authorize guest %s: %w", mac, err)
	}
	return nil
}

// UnauthorizeGuest revokes a guest's access. Legacy command only.
func (c *Client) UnauthorizeGuest(site, mac string) error {
	return c.stationCommand(site, "unauthorize-guest", mac)
}

// DisconnectClient kicks a client off the network without revoking its
// authorization; the device may reconnect.
func (c *Client) DisconnectClient(site, mac string) error {
	return c.stationCommand(site, "kick-sta", mac)
}

// BlockClient bars a device from the network until unblocked.
func (c *Client) BlockClient(site, mac string) error {
	return c.stationCommand(site, "block-sta", mac)
}

// UnblockClient lifts a block.
func (c *Client) UnblockClient(site, mac string) error {
	return c.stationCommand(site, "unblock-sta", mac)
}

func (c *Client) stationCommand(site, cmd, mac string) error {
	err := c.runCommand(site, map[string]interface{}{
		"cmd": cmd,
		"mac": macutil.Normalize(mac),
	})
	if err != nil {
		return fmt.Errorf("failed to run %s for %s: %w", cmd, mac, err)
	}
	return nil
}
