package cache

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/crestline/leasebot/core"
	"github.com/go-crypt/x/blake2b"
)

// maxFingerprintInput bounds the normalized text folded into the digest.
// Queries longer than this are truncated; anything past the cap rarely
// changes what the search returns.
const maxFingerprintInput = 512

// Fingerprint derives a canonical cache key from a query's text and its
// extracted filters. Equivalent phrasings ("2 Bed,  Pets OK!" versus
// "2 bed pets ok") normalize to the same key, and the same inputs always
// produce the same fingerprint.
func Fingerprint(text string, filters core.Filters) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(normalizeText(text)))
	h.Write([]byte{0})
	h.Write([]byte(canonicalFilters(filters)))
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeText lowercases, strips punctuation, and collapses whitespace
// so cosmetic variation does not fragment the cache.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '$':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	normalized := strings.TrimSpace(b.String())
	if len(normalized) > maxFingerprintInput {
		normalized = normalized[:maxFingerprintInput]
	}
	return normalized
}

// canonicalFilters renders filters into a stable field-ordered form.
// Unset fields contribute nothing, so a query with no filters hashes the
// same as one whose extraction produced an empty Filters value.
func canonicalFilters(f core.Filters) string {
	var parts []string

	if f.Beds != nil {
		parts = append(parts, "beds="+strconv.Itoa(*f.Beds))
	}
	if f.Baths != nil {
		parts = append(parts, "baths="+strconv.FormatFloat(*f.Baths, 'f', -1, 64))
	}
	if f.Rent != nil {
		if f.Rent.Min != nil {
			parts = append(parts, "rentmin="+strconv.FormatFloat(*f.Rent.Min, 'f', -1, 64))
		}
		if f.Rent.Max != nil {
			parts = append(parts, "rentmax="+strconv.FormatFloat(*f.Rent.Max, 'f', -1, 64))
		}
	}
	if f.City != nil {
		parts = append(parts, "city="+strings.ToLower(*f.City))
	}
	if f.PetsAllowed != nil {
		parts = append(parts, "pets="+strconv.FormatBool(*f.PetsAllowed))
	}
	if f.Sqft != nil {
		if f.Sqft.Min != nil {
			parts = append(parts, "sqftmin="+strconv.Itoa(*f.Sqft.Min))
		}
		if f.Sqft.Max != nil {
			parts = append(parts, "sqftmax="+strconv.Itoa(*f.Sqft.Max))
		}
	}

	return strings.Join(parts, ";")
}
