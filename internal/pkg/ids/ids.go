// Package ids generates identifiers for jobs, render attempts and outputs.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// New returns a random UUID string.
func New() string {
	return uuid.NewString()
}

// NewID returns prefix_<uuid>.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Hex returns a random UUID without dashes.
func Hex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Short returns the first 8 hex digits of id with dashes removed, or all of
// them when there are fewer.
func Short(id string) string {
	h := strings.ReplaceAll(id, "-", "")
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
