// Package id generates prefixed NanoID identifiers for stored entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// nanoidLength is the default NanoID size (URL-safe alphabet).
const nanoidLength = 21

// Generate creates an ID of the form "<prefix>-<nanoid>", e.g.
// "book-V1StGXR8_Z5jdHi6B-myT". NanoIDs are URL-friendly and shorter
// than UUIDs while keeping comparable collision resistance.
//
// Fails only when the system cannot supply secure random bytes.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New(nanoidLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// MustGenerate is like Generate but panics on failure. Intended for
// startup paths and tools where a broken entropy source should abort.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
