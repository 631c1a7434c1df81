package controller

import (
	"strconv"
	"strings"

	"github.com/renanmoutaa/Portal-Cativo-sub000/internal/macutil"
)

// The appliance's field names differ across firmware generations, so every
// logical field is resolved against an ordered candidate list instead of a
// fixed schema. First present candidate wins.

var (
	idFields       = []string{"_id", "id"}
	macFields      = []string{"mac", "macAddress", "mac_address"}
	clientIPFields = []string{"ip", "lastIp", "last_ip", "ipAddress", "fixed_ip"}
	apMACFields    = []string{"ap_mac", "apMac", "accessPointMac", "uplinkMac"}
	ssidFields     = []string{"essid", "ssid", "wlanName"}
	rxFields       = []string{"rx_bytes", "rxBytes", "received"}
	txFields       = []string{"tx_bytes", "txBytes", "transmitted"}
	uptimeFields   = []string{"uptime", "duration", "assoc_time"}
	deviceKinds    = []string{"type", "deviceType", "model", "category"}
)

// apTokens classify a device as an access point by substring match against
// its type/model field.
var apTokens = []string{"uap", "access"}

// records flattens an appliance payload into a list of JSON objects. The
// payload is either a bare array or an envelope with the list under "data";
// a single object without an envelope becomes a one-element list.
func records(payload interface{}) []map[string]interface{} {
	switch v := payload.(type) {
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]interface{}:
		if data, ok := v["data"]; ok {
			return records(data)
		}
		return []map[string]interface{}{v}
	default:
		return nil
	}
}

// pickString returns the first candidate field present with a usable string
// value.
func pickString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// pickInt64 returns the first candidate field coercible to a number, 0 when
// none is.
func pickInt64(m map[string]interface{}, keys ...string) int64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func mapSites(payload interface{}) []Site {
	var sites []Site
	for _, m := range records(payload) {
		sites = append(sites, Site{
			// Legacy firmware uses the short "name" as the site id in
			// URLs; the modern API exposes a plain "id".
			ID:          pickString(m, "name", "id", "_id"),
			Name:        pickString(m, "desc", "description", "name"),
			Description: pickString(m, "desc", "description"),
		})
	}
	return sites
}

func mapWirelessNetworks(payload interface{}) []WirelessNetwork {
	var networks []WirelessNetwork
	for _, m := range records(payload) {
		networks = append(networks, WirelessNetwork{
			ID:   pickString(m, idFields...),
			Name: pickString(m, "name", "essid", "ssid"),
		})
	}
	return networks
}

// isAccessPoint classifies a raw device record. Site device lists mix
// gateways, switches and radios; only radios participate in guest Wi-Fi.
func isAccessPoint(m map[string]interface{}) bool {
	kind := strings.ToLower(pickString(m, deviceKinds...))
	if kind == "" {
		return false
	}
	if kind == "ap" {
		return true
	}
	for _, token := range apTokens {
		if strings.Contains(kind, token) {
			return true
		}
	}
	return false
}

func mapAccessPoints(payload interface{}) []AccessPoint {
	var aps []AccessPoint
	for _, m := range records(payload) {
		if !isAccessPoint(m) {
			continue
		}
		aps = append(aps, AccessPoint{
			ID:      pickString(m, idFields...),
			MAC:     macutil.Normalize(pickString(m, macFields...)),
			Name:    pickString(m, "name", "hostname"),
			IP:      pickString(m, "ip", "ipAddress"),
			Model:   pickString(m, "model", "deviceModel"),
			Version: pickString(m, "version", "firmwareVersion"),
		})
	}
	return aps
}

func mapClients(payload interface{}) []WirelessClient {
	var clients []WirelessClient
	for _, m := range records(payload) {
		rx := pickInt64(m, rxFields...)
		tx := pickInt64(m, txFields...)
		clients = append(clients, WirelessClient{
			ID:      pickString(m, idFields...),
			MAC:     macutil.Normalize(pickString(m, macFields...)),
			Name:    pickString(m, "name", "hostname"),
			IP:      pickString(m, clientIPFields...),
			APMAC:   macutil.Normalize(pickString(m, apMACFields...)),
			SSID:    pickString(m, ssidFields...),
			RxBytes: rx,
			TxBytes: tx,
			Total:   rx + tx,
			Uptime:  pickInt64(m, uptimeFields...),
			Status:  pickString(m, "status"),
		})
	}
	return clients
}

func mapSystemInfo(payload interface{}) *SystemInfo {
	recs := records(payload)
	if len(recs) == 0 {
		return &SystemInfo{}
	}
	m := recs[0]
	return &SystemInfo{
		Version: pickString(m, "version", "server_version", "firmware"),
		Uptime:  pickInt64(m, "uptime", "up_time"),
		Raw:     m,
	}
}
