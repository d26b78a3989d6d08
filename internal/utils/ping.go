package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const authzDialTimeout = 1500 * time.Millisecond

// PingService probes the host behind rawURL with a plain TCP dial. A
// successful dial says the service is listening, nothing more; the caller
// still has to speak the actual protocol.
func PingService(rawURL string, timeout time.Duration) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	addr := net.JoinHostPort(u.Hostname(), port)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn.Close()
}

// PingAuthorizer probes the identity provider before a session round trip.
func PingAuthorizer(authzURL string) error {
	return PingService(authzURL, authzDialTimeout)
}
