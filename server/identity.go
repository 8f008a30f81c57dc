package server

import (
	"net"
	"net/http"
	"strings"
)

// clientIdentity derives the rate-limit identity for a request: the
// authenticated credential when present, else the first entry of the
// forwarded-for chain, else the remote address.
func clientIdentity(r *http.Request, credential string) string {
	if credential != "" {
		return credential
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
