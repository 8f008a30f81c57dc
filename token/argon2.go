package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-crypt/x/argon2"
)

// Default derivation parameters for credentials minted by this package.
// Verification always uses the parameters embedded in the presented hash.
const (
	defaultTime    = 3
	defaultMemory  = 64 * 1024
	defaultThreads = 4
	defaultKeyLen  = 32
	defaultSaltLen = 16
)

// VerifyEncoded reports whether the argon2 PHC string was derived from secret.
// The salt and cost parameters embedded in the hash drive the derivation, so
// credentials minted with different costs remain verifiable. The comparison
// is constant-time.
func VerifyEncoded(encoded, secret string) (bool, error) {
	variant, time, memory, threads, salt, want, err := parseEncoded(encoded)
	if err != nil {
		return false, err
	}

	var got []byte
	switch variant {
	case "argon2id":
		got = argon2.IDKey([]byte(secret), salt, time, memory, uint32(threads), uint32(len(want)))
	case "argon2i":
		got = argon2.IKey([]byte(secret), salt, time, memory, uint32(threads), uint32(len(want)))
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedVariant, variant)
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// EncodeSecret derives an argon2id PHC string from secret with a random salt
// and the package's default cost parameters. The result is the credential a
// client presents instead of the raw secret.
func EncodeSecret(secret string) (string, error) {
	salt := make([]byte, defaultSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, defaultTime, defaultMemory, defaultThreads, defaultKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		defaultMemory, defaultTime, defaultThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// parseEncoded splits a PHC-formatted argon2 hash into its components.
// Expected form: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func parseEncoded(encoded string) (variant string, time, memory uint32, threads uint8, salt, hash []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		err = ErrMalformedHash
		return
	}

	variant = parts[1]
	if variant != "argon2id" && variant != "argon2i" {
		err = fmt.Errorf("%w: %s", ErrUnsupportedVariant, variant)
		return
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		err = fmt.Errorf("%w: %s", ErrMalformedHash, parts[2])
		return
	}
	if version != argon2.Version {
		err = fmt.Errorf("%w: v=%d", ErrUnsupportedVersion, version)
		return
	}

	var p uint32
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &p); err != nil {
		err = fmt.Errorf("%w: %s", ErrMalformedHash, parts[3])
		return
	}
	if p == 0 || p > 255 {
		err = fmt.Errorf("%w: p=%d", ErrMalformedHash, p)
		return
	}
	threads = uint8(p)

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		err = fmt.Errorf("%w: bad salt encoding", ErrMalformedHash)
		return
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		err = fmt.Errorf("%w: bad hash encoding", ErrMalformedHash)
		return
	}
	if len(hash) == 0 {
		err = fmt.Errorf("%w: empty hash", ErrMalformedHash)
	}
	return
}
