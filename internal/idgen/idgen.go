// Package idgen mints short identifiers for renders and bridge requests.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Kind prefixes.
const (
	RenderPrefix  = "rn-"
	RequestPrefix = "rq-"
)

// Size is the number of random characters after the prefix.
const Size = 12

// New returns prefix followed by Size random alphanumerics.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, Size)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// RenderID identifies one render of one widget. It never fails; if the random
// source is unavailable the id is left without a random part.
func RenderID() string {
	id, err := New(RenderPrefix)
	if err != nil {
		return RenderPrefix + "unknown"
	}
	return id
}

// RequestID identifies one bridge request.
func RequestID() (string, error) {
	return New(RequestPrefix)
}

// Valid reports whether id has the given prefix and a well-formed random part.
func Valid(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || len(rest) != Size {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
