package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// apiClient talks to a musicbridge server
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		// batches pace tracks several seconds apart; no overall timeout
		http: &http.Client{Timeout: 0},
	}
}

// downloadRequest mirrors the POST /download body
type downloadRequest struct {
	URL        string `json:"url"`
	OutputPath string `json:"output_path,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Type       string `json:"type,omitempty"`
}

// downloadResult summarizes a finished download
type downloadResult struct {
	BatchID  string
	Fetched  int
	Failed   int
	Bytes    int64
	Exported []string
}

// apiError is a non-2xx response
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// download posts req and writes the archive to dest. When the server
// exported the files instead, dest is left untouched.
func (c *apiClient) download(req downloadRequest, dest string) (*downloadResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.baseURL+"/download", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	result := &downloadResult{BatchID: resp.Header.Get("X-Batch-ID")}
	result.Fetched, _ = strconv.Atoi(resp.Header.Get("X-Tracks-Fetched"))
	result.Failed, _ = strconv.Atoi(resp.Header.Get("X-Tracks-Failed"))

	if resp.Header.Get("Content-Type") != "application/zip" {
		var exported struct {
			Files []string `json:"files"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&exported); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		result.Exported = exported.Files
		return result, nil
	}

	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}
	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	result.Bytes = n
	return result, nil
}

// getJSON decodes a GET response into v
func (c *apiClient) getJSON(path string, query url.Values, v interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	resp, err := c.http.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *apiClient) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// healthy reports whether the server answers its health check
func (c *apiClient) healthy() bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// decodeError reads either error envelope the server produces
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := string(bytes.TrimSpace(data))
	if json.Unmarshal(data, &envelope) == nil {
		switch {
		case envelope.Message != "":
			msg = envelope.Message
		case envelope.Error != "":
			msg = envelope.Error
		}
	}
	return &apiError{Status: resp.StatusCode, Message: msg}
}
