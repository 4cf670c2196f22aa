// Package keygen generates and masks dandi API key credentials.
//
// Keys have the form "dandi-<type>-<random suffix>", e.g.
// "dandi-dev-Kb2jb0e3XAcW9Qf1uGzHtR4mNp8s". The scheme and type segments
// are not secret and are stored separately as the key prefix; only the
// random suffix carries entropy.
package keygen

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	// Scheme is the fixed first segment of every generated key.
	Scheme = "dandi"

	// Delimiter joins the scheme, type and random segments.
	Delimiter = "-"

	// DefaultType is used when a key is created without an explicit type.
	DefaultType = "dev"

	suffixLen    = 28
	maskedRunLen = 27
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Generate returns a new raw key value for the given key type. The random
// suffix is drawn from crypto/rand, so generated values are unguessable and
// collisions are negligible for any realistic store size.
func Generate(keyType string) string {
	if keyType == "" {
		keyType = DefaultType
	}

	var sb strings.Builder
	sb.Grow(len(Scheme) + len(keyType) + 2 + suffixLen)
	sb.WriteString(Scheme)
	sb.WriteString(Delimiter)
	sb.WriteString(keyType)
	sb.WriteString(Delimiter)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform's entropy source is
			// broken; nothing sensible can be issued in that state.
			panic("keygen: crypto/rand unavailable: " + err.Error())
		}
		sb.WriteByte(alphabet[n.Int64()])
	}

	return sb.String()
}

// PrefixOf returns the non-secret display prefix of a raw key: the scheme and
// type segments including the trailing delimiter ("dandi-dev-").
func PrefixOf(rawValue string) string {
	parts := strings.Split(rawValue, Delimiter)
	if len(parts) < 3 {
		return rawValue
	}
	return strings.Join(parts[:2], Delimiter) + Delimiter
}

// Mask replaces the secret suffix of a raw key with a fixed-length run of
// asterisks for display. Values that do not look like generated keys (fewer
// than three delimiter-separated segments) are returned unchanged.
func Mask(rawValue string) string {
	if rawValue == "" {
		return ""
	}
	parts := strings.Split(rawValue, Delimiter)
	if len(parts) < 3 {
		return rawValue
	}
	return strings.Join(parts[:2], Delimiter) + Delimiter + strings.Repeat("*", maskedRunLen)
}
