package controller

import (
	"encoding/base64"
	"fmt"
)

// credentialMode says how a request to the appliance can be authenticated.
type credentialMode int

const (
	// credAPIKey and credBasic are static header credentials usable on any
	// request without a prior network call.
	credAPIKey credentialMode = iota
	credBasic
	// credSession means no static credential exists and an interactive
	// cookie login is required.
	credSession
)

// resolveCredentials decides the effective authentication mode for a record.
// An API key wins over username/password when both are present. When the
// record carries neither, static headers are unavailable and the caller must
// either log in interactively or fail with ErrCredentialsRequired.
func resolveCredentials(rec *Record) (credentialMode, map[string]string) {
	if rec.APIKey != "" {
		return credAPIKey, map[string]string{"X-API-Key": rec.APIKey}
	}
	if rec.Username != "" && rec.Password != "" {
		token := base64.StdEncoding.EncodeToString([]byte(rec.Username + ":" + rec.Password))
		return credBasic, map[string]string{"Authorization": "Basic " + token}
	}
	return credSession, nil
}

// baseURL derives the appliance base URL from the stored address. HTTPS is
// assumed on the well-known TLS ports, plain HTTP otherwise.
func baseURL(rec *Record) string {
	scheme := "http"
	if rec.Port == 443 || rec.Port == 8443 {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, rec.IP, rec.Port)
}
