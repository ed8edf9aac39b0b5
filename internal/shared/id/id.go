// Package id generates the random identifiers used for storage keys,
// session ids and file names.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	Base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// Base36Upper is used for the suffix of human-readable ticket ids.
	Base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Base36Lower is used for generated upload file names.
	Base36Lower = "0123456789abcdefghijklmnopqrstuvwxyz"

	// DocumentIDLength is the length of generated storage identifiers.
	DocumentIDLength = 20
)

// Generate creates a cryptographically random Base62 string of the given length.
func Generate(length int) (string, error) {
	return GenerateFrom(Base62, length)
}

// GenerateFrom creates a cryptographically random string drawn from alphabet.
func GenerateFrom(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result), nil
}

// NewDocumentID returns a fresh storage identifier.
func NewDocumentID() (string, error) {
	return Generate(DocumentIDLength)
}

// MustGenerate creates a random Base62 id and panics on error.
func MustGenerate(length int) string {
	id, err := Generate(length)
	if err != nil {
		panic(err)
	}
	return id
}
