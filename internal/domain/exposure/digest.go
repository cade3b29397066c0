// Package exposure models the k-anonymity password exposure check: hashing a
// secret, splitting the digest into a disclosed prefix and a withheld suffix,
// and classifying the frequency of a matched suffix into a risk tier.
package exposure

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Digest and digest part length constants.
const (
	// DigestLen is the length of the hex-encoded SHA-1 digest.
	DigestLen = sha1.Size * 2

	// PrefixLen is the number of leading hex characters sent upstream.
	PrefixLen = 5

	// SuffixLen is the number of hex characters compared locally.
	SuffixLen = DigestLen - PrefixLen
)

// Digest is the uppercase hex encoding of the SHA-1 hash of a secret.
type Digest string

// NewDigest hashes the UTF-8 bytes of secret without any normalization. The
// empty string is a valid input.
func NewDigest(secret string) Digest {
	sum := sha1.Sum([]byte(secret))
	return Digest(strings.ToUpper(hex.EncodeToString(sum[:])))
}

// Prefix returns the leading PrefixLen characters, the only part of the
// digest that may leave the process.
func (d Digest) Prefix() string { return string(d[:PrefixLen]) }

// Suffix returns the trailing SuffixLen characters.
func (d Digest) Suffix() string { return string(d[PrefixLen:]) }

// SplitDigest splits d into its range-query prefix and the suffix matched
// locally against the range response.
func SplitDigest(d Digest) (prefix, suffix string) { return d.Prefix(), d.Suffix() }

// String implements fmt.Stringer.
func (d Digest) String() string { return string(d) }

// IsValidPrefix reports whether p is a well formed range-query prefix.
func IsValidPrefix(p string) bool {
	if len(p) != PrefixLen {
		return false
	}
	for i := 0; i < len(p); i++ {
		if !isHex(p[i]) {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
