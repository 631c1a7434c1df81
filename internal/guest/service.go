// Package guest drives the captive-portal guest-access workflow on top of
// the controller integration client: it resolves which site and MAC a
// command targets and keeps a local ban list alongside the appliance state.
package guest

import (
	"errors"
	"fmt"

	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/controller"
	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/macutil"
	"github.com/sirupsen/logrus"
)

// ErrControllerNotFound means the storage layer has no record for the
// requested controller id.
var ErrControllerNotFound = errors.New("controller not found")

// DefaultSiteID is used when neither an AP MAC nor an SSID identifies the
// target site.
const DefaultSiteID = "default"

// Store is the persistence contract the workflow consumes. Controller
// records are read-only here; the ban side-table is the one piece of local
// state, kept because block/unblock propagation timing on the appliance is
// not guaranteed.
type Store interface {
	GetController(id string) (*controller.Record, error)
	ListBannedMacs(controllerID, siteID string) (map[string]bool, error)
	AddBan(controllerID, siteID, mac string) error
	RemoveBan(controllerID, siteID, mac string) error
}

// ControllerClient is the integration-client surface the workflow uses.
type ControllerClient interface {
	ListSites() ([]controller.Site, error)
	ListWirelessNetworks(site string) ([]controller.WirelessNetwork, error)
	ListAccessPoints(site string) ([]controller.AccessPoint, error)
	ListClients(site string) ([]controller.WirelessClient, error)
	ResolveMACByIP(site, ip string) (string, error)
	SystemInfo(site string) (*controller.SystemInfo, error)
	AuthorizeGuest(site, mac string, minutes int) error
	UnauthorizeGuest(site, mac string) error
	DisconnectClient(site, mac string) error
	BlockClient(site, mac string) error
	UnblockClient(site, mac string) error
}

// ClientFactory builds an integration client for a controller record. Tests
// substitute fakes here.
type ClientFactory func(rec *controller.Record) ControllerClient

// AccessRequest describes one guest-lifecycle command from the portal. The
// site may be omitted, in which case it is discovered from the AP MAC or
// SSID; the device may be identified by MAC or, failing that, by IP.
type AccessRequest struct {
	ControllerID string `json:"controller_id"`
	SiteID       string `json:"site_id,omitempty"`
	MAC          string `json:"mac,omitempty"`
	IP           string `json:"ip,omitempty"`
	APMAC        string `json:"ap_mac,omitempty"`
	SSID         string `json:"ssid,omitempty"`
	Minutes      int    `json:"minutes,omitempty"`
}

// Service is the guest access orchestrator.
type Service struct {
	store     Store
	logger    *logrus.Logger
	newClient ClientFactory
}

// NewService creates the orchestrator. insecure is the process-wide TLS
// verification switch applied to every appliance connection.
func NewService(store Store, insecure bool, logger *logrus.Logger) *Service {
	adapter := controller.NewLogrusAdapter(logger)
	return &Service{
		store:  store,
		logger: logger,
		newClient: func(rec *controller.Record) ControllerClient {
			return controller.NewClient(rec, insecure, adapter)
		},
	}
}

// NewServiceWithFactory is NewService with a custom client factory.
func NewServiceWithFactory(store Store, logger *logrus.Logger, factory ClientFactory) *Service {
	return &Service{store: store, logger: logger, newClient: factory}
}

func (s *Service) client(controllerID string) (ControllerClient, *controller.Record, error) {
	rec, err := s.store.GetController(controllerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load controller %s: %w", controllerID, err)
	}
	if rec == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrControllerNotFound, controllerID)
	}
	return s.newClient(rec), rec, nil
}

// resolveSite discovers the site a command targets. Sites are scanned in
// enumeration order and the first match wins: by AP MAC over the site's
// access points first, by exact SSID name over its wireless networks
// second. When nothing matches the literal default site id is used.
func (s *Service) resolveSite(cl ControllerClient, apMAC, ssid string) string {
	if apMAC == "" && ssid == "" {
		return DefaultSiteID
	}

	sites, err := cl.ListSites()
	if err != nil {
		s.logger.Warnf("Site discovery failed, using default site: %v", err)
		return DefaultSiteID
	}

	if apMAC != "" {
		for _, site := range sites {
			aps, err := cl.ListAccessPoints(site.ID)
			if err != nil {
				s.logger.Debugf("Skipping site %s during AP scan: %v", site.ID, err)
				continue
			}
			for _, ap := range aps {
				if macutil.Equal(ap.MAC, apMAC) {
					s.logger.Debugf("Resolved site %s via AP %s", site.ID, apMAC)
					return site.ID
				}
			}
		}
	}

	if ssid != "" {
		for _, site := range sites {
			networks, err := cl.ListWirelessNetworks(site.ID)
			if err != nil {
				s.logger.Debugf("Skipping site %s during SSID scan: %v", site.ID, err)
				continue
			}
			for _, n := range networks {
				if n.Name == ssid {
					s.logger.Debugf("Resolved site %s via SSID %s", site.ID, ssid)
					return site.ID
				}
			}
		}
	}

	return DefaultSiteID
}

// resolveTarget fills in the site and MAC of a request. A request without a
// MAC and without an IP cannot be targeted; a request with only an IP must
// resolve the MAC from the appliance's client list, and failure to do so is
// fatal.
func (s *Service) resolveTarget(cl ControllerClient, req *AccessRequest) (site, mac string, err error) {
	mac = macutil.Normalize(req.MAC)
	apMAC := macutil.Normalize(req.APMAC)

	site = req.SiteID
	if site == "" {
		site = s.resolveSite(cl, apMAC, req.SSID)
	}

	if mac == "" && req.IP == "" {
		return "", "", controller.ErrMissingTarget
	}
	if mac == "" {
		mac, err = cl.ResolveMACByIP(site, req.IP)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve mac for ip %s: %w", req.IP, err)
		}
	}
	return site, mac, nil
}

// Authorize grants the requesting device guest access.
func (s *Service) Authorize(req *AccessRequest) error {
	cl, rec, err := s.client(req.ControllerID)
	if err != nil {
		return err
	}
	site, mac, err := s.resolveTarget(cl, req)
	if err != nil {
		return err
	}
	s.logger.Infof("Authorizing guest %s on controller %s site %s", mac, rec.ID, site)
	return cl.AuthorizeGuest(site, mac, req.Minutes)
}

// Unauthorize revokes a device's guest access.
func (s *Service) Unauthorize(req *AccessRequest) error {
	cl, rec, err := s.client(req.ControllerID)
	if err != nil {
		return err
	}
	site, mac, err := s.resolveTarget(cl, req)
	if err != nil {
		return err
	}
	s.logger.Infof("Unauthorizing guest %s on controller %s site %s", mac, rec.ID, site)
	return cl.UnauthorizeGuest(site, mac)
}

// Disconnect kicks a device off the network without revoking authorization.
func (s *Service) Disconnect(req *AccessRequest) error {
	cl, _, err := s.client(req.ControllerID)
	if err != nil {
		return err
	}
	site, mac, err := s.resolveTarget(cl, req)
	if err != nil {
		return err
	}
	return cl.DisconnectClient(site, mac)
}

// Block bars a device and records it in the local ban list. The appliance
// block is authoritative; the local write is best-effort because a failure
// to record it must not undo an already-successful block.
func (s *Service) Block(req *AccessRequest) error {
	cl, rec, err := s.client(req.ControllerID)
	if err != nil {
		return err
	}
	site, mac, err := s.resolveTarget(cl, req)
	if err != nil {
		return err
	}
	if err := cl.BlockClient(site, mac); err != nil {
		return err
	}
	if err := s.store.AddBan(rec.ID, site, mac); err != nil {
		s.logger.Warnf("Blocked %s on the controller but failed to record the ban locally: %v", mac, err)
	}
	return nil
}

// Unblock lifts a block and clears the local ban entry, best-effort.
func (s *Service) Unblock(req *AccessRequest) error {
	cl, rec, err := s.client(req.ControllerID)
	if err != nil {
		return err
	}
	site, mac, err := s.resolveTarget(cl, req)
	if err != nil {
		return err
	}
	if err := cl.UnblockClient(site, mac); err != nil {
		return err
	}
	if err := s.store.RemoveBan(rec.ID, site, mac); err != nil {
		s.logger.Warnf("Unblocked %s on the controller but failed to clear the local ban: %v", mac, err)
	}
	return nil
}

// Clients lists a site's client devices with the local ban list merged in:
// a banned device gets Banned=true and, when the appliance reported no
// status of its own, the synthesized "banido" status.
func (s *Service) Clients(controllerID, siteID string) ([]controller.WirelessClient, error) {
	cl, rec, err := s.client(controllerID)
	if err != nil {
		return nil, err
	}
	if siteID == "" {
		siteID = DefaultSiteID
	}

	clients, err := cl.ListClients(siteID)
	if err != nil {
		return nil, err
	}

	banned, err := s.store.ListBannedMacs(rec.ID, siteID)
	if err != nil {
		s.logger.Warnf("Failed to load ban list for controller %s site %s: %v", rec.ID, siteID, err)
		return clients, nil
	}

	for i := range clients {
		if banned[macutil.Normalize(clients[i].MAC)] {
			clients[i].Banned = true
			if clients[i].Status == "" {
				clients[i].Status = "banido"
			}
		}
	}
	return clients, nil
}

// Sites lists the controller's sites.
func (s *Service) Sites(controllerID string) ([]controller.Site, error) {
	cl, _, err := s.client(controllerID)
	if err != nil {
		return nil, err
	}
	return cl.ListSites()
}

// WirelessNetworks lists a site's SSIDs.
func (s *Service) WirelessNetworks(controllerID, siteID string) ([]controller.WirelessNetwork, error) {
	cl, _, err := s.client(controllerID)
	if err != nil {
		return nil, err
	}
	if siteID == "" {
		siteID = DefaultSiteID
	}
	return cl.ListWirelessNetworks(siteID)
}

// AccessPoints lists a site's radios.
func (s *Service) AccessPoints(controllerID, siteID string) ([]controller.AccessPoint, error) {
	cl, _, err := s.client(controllerID)
	if err != nil {
		return nil, err
	}
	if siteID == "" {
		siteID = DefaultSiteID
	}
	return cl.ListAccessPoints(siteID)
}

// SystemInfo reads a controller's version and uptime.
func (s *Service) SystemInfo(controllerID, siteID string) (*controller.SystemInfo, error) {
	cl, _, err := s.client(controllerID)
	if err != nil {
		return nil, err
	}
	if siteID == "" {
		siteID = DefaultSiteID
	}
	return cl.SystemInfo(siteID)
}
