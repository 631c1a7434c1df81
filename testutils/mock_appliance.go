package testutils

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// MockApplianceServer simulates a network appliance for testing. It speaks
// both API generations: the modern key-authenticated integration API and the
// legacy cookie+command API.
type MockApplianceServer struct {
	Server *httptest.Server
	URL    string

	// APIKey, when non-empty, is required on modern integration requests.
	APIKey string

	mu       sync.Mutex
	commands []map[string]interface{}
}

// NewMockApplianceServer creates a new mock appliance server.
func NewMockApplianceServer() *MockApplianceServer {
	m := &MockApplianceServer{APIKey: "test-api-key"}

	mux := http.NewServeMux()

	// Cookie session login, both generations
	login := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:  "unifises",
			Value: "mock-session-token",
			Path:  "/",
		})
		w.Header().Set("X-Csrf-Token", "mock-csrf-token")
		writeJSON(w, map[string]interface{}{
			"meta": map[string]interface{}{"rc": "ok"},
		})
	}
	mux.HandleFunc("/api/auth/login", login)
	mux.HandleFunc("/api/login", login)

	// Modern integration API, key-authenticated
	mux.HandleFunc("/proxy/network/integration/v1/sites", func(w http.ResponseWriter, r *http.Request) {
		if m.APIKey != "" && r.Header.Get("X-API-Key") != m.APIKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "default", "name": "Default Site"},
				{"id": "site2", "name": "Test Site 2"},
			},
		})
	})

	// Legacy sites endpoint
	mux.HandleFunc("/api/self/sites", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"meta": map[string]interface{}{"rc": "ok"},
			"data": []map[string]interface{}{
				{"_id": "1", "name": "default", "desc": "Default Site"},
				{"_id": "2", "name": "site2", "desc": "Test Site 2"},
			},
		})
	})

	// Legacy per-site endpoints
	mux.HandleFunc("/api/s/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/stat/device"):
			writeJSON(w, map[string]interface{}{
				"meta": map[string]interface{}{"rc": "ok"},
				"data": []map[string]interface{}{
					{
						"_id":     "ap1",
						"mac":     "aa:bb:cc:dd:ee:ff",
						"name":    "Test AP 1",
						"type":    "uap",
						"model":   "U7MP",
						"ip":      "192.168.1.10",
						"version": "6.5.28",
					},
					{
						"_id":     "ap2",
						"mac":     "11:22:33:44:55:66",
						"name":    "Test AP 2",
						"type":    "uap",
						"model":   "UAP6MP",
						"ip":      "192.168.1.11",
						"version": "6.5.28",
					},
				},
			})
		case strings.Contains(r.URL.Path, "/stat/sta"):
			writeJSON(w, map[string]interface{}{
				"meta": map[string]interface{}{"rc": "ok"},
				"data": []map[string]interface{}{
					{
						"_id":      "c1",
						"mac":      "aa:bb:cc:dd:ee:01",
						"hostname": "Test Device 1",
						"ip":       "192.168.1.100",
						"ap_mac":   "aa:bb:cc:dd:ee:ff",
						"essid":    "Guest WiFi",
						"rx_bytes": 1024,
						"tx_bytes": 2048,
						"uptime":   300,
					},
					{
						"_id":      "c2",
						"mac":      "aa:bb:cc:dd:ee:02",
						"hostname": "Test Device 2",
						"ip":       "192.168.1.101",
						"ap_mac":   "11:22:33:44:55:66",
						"essid":    "Office WiFi",
						"rx_bytes": 512,
						"tx_bytes": 128,
						"uptime":   90,
					},
				},
			})
		case strings.Contains(r.URL.Path, "/rest/wlanconf"), strings.Contains(r.URL.Path, "/list/wlanconf"):
			writeJSON(w, map[string]interface{}{
				"meta": map[string]interface{}{"rc": "ok"},
				"data": []map[string]interface{}{
					{"_id": "w1", "name": "Guest WiFi", "enabled": true},
					{"_id": "w2", "name": "Office WiFi", "enabled": true},
				},
			})
		case strings.Contains(r.URL.Path, "/stat/sysinfo"):
			writeJSON(w, map[string]interface{}{
				"meta": map[string]interface{}{"rc": "ok"},
				"data": []map[string]interface{}{
					{"version": "7.3.83", "uptime": 86400},
				},
			})
		case strings.Contains(r.URL.Path, "/cmd/stamgr"):
			if r.Method != "POST" {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			var cmd map[string]interface{}
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &cmd); err != nil {
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			m.mu.Lock()
			m.commands = append(m.commands, cmd)
			m.mu.Unlock()
			writeJSON(w, map[string]interface{}{
				"meta": map[string]interface{}{"rc": "ok"},
			})
		default:
			http.NotFound(w, r)
		}
	})

	m.Server = httptest.NewServer(mux)
	m.URL = m.Server.URL
	return m
}

// Close shuts down the mock server.
func (m *MockApplianceServer) Close() {
	m.Server.Close()
}

// Addr returns the host and port the mock server listens on.
func (m *MockApplianceServer) Addr() (string, int) {
	u := strings.TrimPrefix(m.URL, "http://")
	host, portStr, err := net.SplitHostPort(u)
	if err != nil {
		log.Printf("Failed to split mock server address: %v", err)
		return u, 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// Commands returns the station commands received so far.
func (m *MockApplianceServer) Commands() []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]interface{}, len(m.commands))
	copy(out, m.commands)
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
