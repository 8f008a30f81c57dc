// Package server exposes the HTTP relay: a token-gated search endpoint
// backed by the upstream client, cache and ranker, plus an
// unauthenticated status endpoint reporting process counters.
package server
