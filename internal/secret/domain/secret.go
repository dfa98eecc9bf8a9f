// Package domain defines the TOTP shared secret and the values derived from it.
package domain

import (
	"crypto/hmac"
	"crypto/sha1" // #nosec G505 -- RFC 6238 default, required by authenticator apps
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Secret is a TOTP shared secret in its stored form.
//
// The secret is kept as canonical padded base32 (RFC 4648 standard alphabet),
// which is both the on-disk format read by the auth plugin and the value placed
// in provisioning URIs. A 20-byte secret encodes to 32 characters, so padding
// never appears in practice, but decoding accepts it for robustness.
//
// Security considerations:
//   - The encoded value is equivalent to the key; never log it
//   - ProvisioningURI carries the same secret and is equally sensitive
type Secret struct {
	Value string
}

// NewSecret encodes raw secret bytes. The input must be exactly SecretSize bytes.
// The caller keeps ownership of raw and should Zero it afterwards.
func NewSecret(raw []byte) (*Secret, error) {
	if len(raw) != SecretSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSecretSize, len(raw), SecretSize)
	}
	return &Secret{Value: base32.StdEncoding.EncodeToString(raw)}, nil
}

// ParseSecret parses a stored secret, tolerating surrounding whitespace such as
// the trailing newline of the secret file.
func ParseSecret(s string) (*Secret, error) {
	value := strings.TrimSpace(s)
	raw, err := base32.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretEncoding, err)
	}
	defer Zero(raw)

	if len(raw) != SecretSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSecretSize, len(raw), SecretSize)
	}
	return &Secret{Value: value}, nil
}

// Bytes decodes the secret. Callers should Zero the result when done.
func (s *Secret) Bytes() ([]byte, error) {
	raw, err := base32.StdEncoding.DecodeString(s.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretEncoding, err)
	}
	return raw, nil
}

// ProvisioningURI returns the otpauth:// URI an authenticator app imports.
//
// Format:
//
//	otpauth://totp/ISSUER:ACCOUNT?secret=SECRET&issuer=ISSUER&digits=6&period=30
func (s *Secret) ProvisioningURI() string {
	return fmt.Sprintf(
		"otpauth://totp/%s:%s?secret=%s&issuer=%s&digits=%d&period=%d",
		Issuer, Account, s.Value, Issuer, Digits, Period,
	)
}

// CodeAt returns the code an authenticator shows at time t
// (RFC 6238 over RFC 4226, HMAC-SHA1).
func (s *Secret) CodeAt(t time.Time) (string, error) {
	key, err := s.Bytes()
	if err != nil {
		return "", err
	}
	defer Zero(key)

	counter := make([]byte, 8)
	binary.BigEndian.PutUint64(counter, uint64(t.Unix()/Period))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter)
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226 section 5.4)
	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	modulus := uint32(1)
	for range Digits {
		modulus *= 10
	}
	return fmt.Sprintf("%0*d", Digits, truncated%modulus), nil
}

// String hides the secret value from accidental formatting.
func (s *Secret) String() string {
	return "Secret(redacted)"
}

// LogValue keeps the secret out of structured logs.
func (s *Secret) LogValue() slog.Value {
	return slog.StringValue("redacted")
}
