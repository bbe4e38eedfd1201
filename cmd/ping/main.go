// Command ping probes the local /healthz endpoint and exits non-zero when the
// server or its store is down. Used as the container HEALTHCHECK.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort = 8080
	timeout     = time.Second
)

const (
	exitUnreachable = 2
	exitDown        = 3
)

func main() {
	port := defaultPort
	if p, err := strconv.Atoi(os.Getenv("APP_PORT")); err == nil && p > 0 && p <= 65535 {
		port = p
	}

	status, err := probe(fmt.Sprintf("http://localhost:%d/healthz", port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ping:", err)
		os.Exit(exitUnreachable)
	}
	if status != "ok" {
		fmt.Fprintf(os.Stderr, "ping: service reported %q\n", status)
		os.Exit(exitDown)
	}
}

func probe(url string) (string, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return body.Status, fmt.Errorf("status %d: %s", resp.StatusCode, body.Error)
	}
	return body.Status, nil
}
