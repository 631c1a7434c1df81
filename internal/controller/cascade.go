package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// candidate is one URL shape under which an appliance generation may expose
// a logical operation.
type candidate struct {
	method string
	url    string
	body   interface{}
}

// tryCandidates walks an ordered list of endpoint shapes for one logical
// operation. A 2xx answer wins immediately and its parsed JSON body is
// returned. 401, 403 and 404 mean "this shape does not exist on this
// firmware generation" and the cascade moves on. Any other status is a real
// appliance error and aborts the cascade as an UpstreamError. When every
// candidate has been tried, ErrNoEndpoint is returned.
func (c *Client) tryCandidates(headers map[string]string, candidates []candidate) (interface{}, error) {
	for _, cand := range candidates {
		var reqBody io.Reader
		if cand.body != nil {
			encoded, err := json.Marshal(cand.body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequest(cand.method, cand.url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if cand.body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// Network-level failure counts against this candidate only.
			c.logger.Debugf("Candidate %s %s unreachable: %v", cand.method, cand.url, err)
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			c.logger.Debugf("Candidate %s %s succeeded with status %d", cand.method, cand.url, resp.StatusCode)
			if len(bytes.TrimSpace(data)) == 0 {
				return nil, nil
			}
			var parsed interface{}
			if err := json.Unmarshal(data, &parsed); err != nil {
				return nil, fmt.Errorf("failed to decode response body: %w", err)
			}
			return parsed, nil
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			c.logger.Debugf("Candidate %s %s answered %d, trying next", cand.method, cand.url, resp.StatusCode)
			continue
		default:
			return nil, &UpstreamError{Status: resp.StatusCode, URL: cand.url, Body: string(data)}
		}
	}

	return nil, ErrNoEndpoint
}
