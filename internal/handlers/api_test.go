package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/renanmoutaa/Portal-Cativo-sub000/testutils"
)

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func TestSetupHandler(t *testing.T) {
	ta := testutils.NewTestApp(t)

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/setup", map[string]string{
		"username": "admin",
		"password": "testpassword123",
	})
	ta.App.SetupHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Setup failed with status %d: %s", w.Code, w.Body.String())
	}
	if !ta.Config.SetupComplete {
		t.Error("Expected setup to be marked complete")
	}
	if !ta.Config.VerifyAdminPassword("testpassword123") {
		t.Error("Expected admin password to verify after setup")
	}

	// A second setup attempt is rejected
	w2 := httptest.NewRecorder()
	req2 := jsonRequest(t, "POST", "/api/setup", map[string]string{
		"username": "intruder",
		"password": "whatever",
	})
	ta.App.SetupHandler(w2, req2)
	if w2.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for repeated setup, got %d", w2.Code)
	}
}

func TestSetupHandlerRequiresCredentials(t *testing.T) {
	ta := testutils.NewTestApp(t)

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/setup", map[string]string{"username": "admin"})
	ta.App.SetupHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing password, got %d", w.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/login", map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	ta.App.LoginHandler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	req2 := jsonRequest(t, "POST", "/api/login", map[string]string{
		"username": "admin",
		"password": "testpassword123",
	})
	ta.App.LoginHandler(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d: %s", w2.Code, w2.Body.String())
	}
	if len(w2.Result().Cookies()) == 0 {
		t.Error("Expected login to set a session cookie")
	}
}

func TestAuthMiddleware(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	protected := ta.App.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest("GET", "/api/controllers", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a session, got %d", w.Code)
	}

	// Log in and replay with the session cookie
	loginRec := httptest.NewRecorder()
	ta.App.LoginHandler(loginRec, jsonRequest(t, "POST", "/api/login", map[string]string{
		"username": "admin",
		"password": "testpassword123",
	}))
	if loginRec.Code != http.StatusOK {
		t.Fatalf("Login failed with status %d", loginRec.Code)
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/controllers", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	protected.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Errorf("Expected 200 with a valid session, got %d", w2.Code)
	}
}

func TestControllerLifecycle(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	router := mux.NewRouter()
	router.HandleFunc("/api/controllers", ta.App.ListControllersHandler).Methods("GET")
	router.HandleFunc("/api/controllers", ta.App.AddControllerHandler).Methods("POST")
	router.HandleFunc("/api/controllers/{id}", ta.App.UpdateControllerHandler).Methods("PUT")
	router.HandleFunc("/api/controllers/{id}", ta.App.DeleteControllerHandler).Methods("DELETE")

	// Add
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/api/controllers", map[string]interface{}{
		"name":     "Lobby",
		"ip":       "192.168.1.1",
		"port":     8443,
		"username": "admin",
		"password": "secret",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("Add controller failed with status %d: %s", w.Code, w.Body.String())
	}
	id, _ := decodeResponse(t, w)["id"].(string)
	if id == "" {
		t.Fatal("Expected controller id in response")
	}

	// List blanks secrets
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, jsonRequest(t, "GET", "/api/controllers", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("List controllers failed with status %d", w2.Code)
	}
	controllers := decodeResponse(t, w2)["controllers"].([]interface{})
	if len(controllers) != 1 {
		t.Fatalf("Expected 1 controller, got %d", len(controllers))
	}
	first := controllers[0].(map[string]interface{})
	if pw, ok := first["password"]; ok && pw != "" {
		t.Errorf("Expected password to be blanked in listings, got %v", pw)
	}
	if key, ok := first["api_key"]; ok && key != "" {
		t.Errorf("Expected API key to be blanked in listings, got %v", key)
	}

	// Update with blank password keeps the stored one
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, jsonRequest(t, "PUT", "/api/controllers/"+id, map[string]interface{}{
		"name":     "Lobby Renamed",
		"ip":       "192.168.1.1",
		"port":     8443,
		"username": "admin",
	}))
	if w3.Code != http.StatusOK {
		t.Fatalf("Update controller failed with status %d: %s", w3.Code, w3.Body.String())
	}
	stored, err := ta.DB.FindController(id)
	if err != nil || stored == nil {
		t.Fatalf("Failed to reload controller: %v", err)
	}
	if stored.Name != "Lobby Renamed" {
		t.Errorf("Expected updated name, got %q", stored.Name)
	}
	if stored.Password != "secret" {
		t.Errorf("Expected stored password to survive blank update, got %q", stored.Password)
	}

	// Delete
	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, jsonRequest(t, "DELETE", "/api/controllers/"+id, nil))
	if w4.Code != http.StatusOK {
		t.Fatalf("Delete controller failed with status %d", w4.Code)
	}
	gone, err := ta.DB.FindController(id)
	if err != nil {
		t.Fatalf("Failed to check deleted controller: %v", err)
	}
	if gone != nil {
		t.Error("Expected controller to be deleted")
	}
}

func TestUpdateMissingControllerReturns404(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	router := mux.NewRouter()
	router.HandleFunc("/api/controllers/{id}", ta.App.UpdateControllerHandler).Methods("PUT")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "PUT", "/api/controllers/no-such-id", map[string]interface{}{
		"name": "Ghost",
		"ip":   "10.0.0.1",
		"port": 8443,
	}))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown controller, got %d", w.Code)
	}
}

func TestTestControllerHandler(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	appliance := testutils.NewMockApplianceServer()
	defer appliance.Close()
	host, port := appliance.Addr()

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/controllers/test", map[string]interface{}{
		"ip":       host,
		"port":     port,
		"username": "admin",
		"password": "pw",
	})
	ta.App.TestControllerHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Controller test failed with status %d: %s", w.Code, w.Body.String())
	}
	sites := decodeResponse(t, w)["sites"].([]interface{})
	if len(sites) == 0 {
		t.Error("Expected sites from the mock appliance")
	}
}

func TestGuestAuthorizeEndpoint(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	appliance := testutils.NewMockApplianceServer()
	defer appliance.Close()
	host, port := appliance.Addr()
	c := ta.CreateTestController(t, host, port)

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/guests/authorize", map[string]interface{}{
		"controller_id": c.ID,
		"site_id":       "default",
		"mac":           testutils.GetValidTestMAC(),
		"minutes":       30,
	})
	ta.App.AuthorizeGuestHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Authorize failed with status %d: %s", w.Code, w.Body.String())
	}
	commands := appliance.Commands()
	if len(commands) != 1 {
		t.Fatalf("Expected 1 appliance command, got %d", len(commands))
	}
	if commands[0]["cmd"] != "authorize-guest" {
		t.Errorf("Expected authorize-guest command, got %v", commands[0]["cmd"])
	}
	if commands[0]["mac"] != testutils.GetValidTestMAC() {
		t.Errorf("Expected normalized MAC in command, got %v", commands[0]["mac"])
	}
}

func TestGuestOperationUnknownController(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/guests/block", map[string]interface{}{
		"controller_id": "missing",
		"mac":           testutils.GetValidTestMAC(),
	})
	ta.App.BlockClientHandler(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown controller, got %d", w.Code)
	}
}

func TestGuestOperationMissingControllerID(t *testing.T) {
	ta := testutils.NewTestApp(t)
	ta.CompleteSetup(t)

	w := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/guests/disconnect", map[string]interface{}{
		"mac": testutils.GetValidTestMAC(),
	})
	ta.App.DisconnectClientHandler(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing controller_id, got %d", w.Code)
	}
}
