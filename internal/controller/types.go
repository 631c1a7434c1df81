package controller

// Record holds the stored connection details for one managed appliance.
// It is produced by the storage layer and never mutated here.
type Record struct {
	ID       string `json:"id"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	APIKey   string `json:"api_key,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Site is a management partition inside the appliance.
type Site struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// WirelessNetwork is a configured SSID within a site.
type WirelessNetwork struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccessPoint is a physical radio device within a site.
type AccessPoint struct {
	ID      string `json:"id"`
	MAC     string `json:"mac"`
	Name    string `json:"name,omitempty"`
	IP      string `json:"ip,omitempty"`
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
}

// WirelessClient is a connected guest device. Total is always
// RxBytes+TxBytes. Banned is computed against the local ban list at read
// time, never taken from the appliance.
type WirelessClient struct {
	ID      string `json:"id"`
	MAC     string `json:"mac"`
	Name    string `json:"name,omitempty"`
	IP      string `json:"ip,omitempty"`
	APMAC   string `json:"ap_mac,omitempty"`
	SSID    string `json:"ssid,omitempty"`
	RxBytes int64  `json:"rx_bytes"`
	TxBytes int64  `json:"tx_bytes"`
	Total   int64  `json:"total_bytes"`
	Uptime  int64  `json:"uptime"`
	Status  string `json:"status,omitempty"`
	Banned  bool   `json:"banned"`
}

// SystemInfo is the appliance's self-reported version and uptime, with the
// raw payload kept for fields that vary across firmware generations.
type SystemInfo struct {
	Version string                 `json:"version,omitempty"`
	Uptime  int64                  `json:"uptime"`
	Raw     map[string]interface{} `json:"raw,omitempty"`
}

// Session is a short-lived cookie-authenticated context. It is created at
// the start of a cookie-authenticated operation and discarded at the end,
// never persisted or reused across calls.
type Session struct {
	Cookie    string
	CSRFToken string
}

// Headers returns the request headers that attach this session.
func (s *Session) Headers() map[string]string {
	h := map[string]string{"Cookie": s.Cookie}
	if s.CSRFToken != "" {
		h["X-Csrf-Token"] = s.CSRFToken
	}
	return h
}
