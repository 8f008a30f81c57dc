// Package ratelimit bounds how many searches an identity may issue within
// a rolling window. Identities are opaque strings: the orchestrator uses
// the authenticated token when it has one and the client address otherwise.
package ratelimit
