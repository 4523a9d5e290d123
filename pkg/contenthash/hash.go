// Package contenthash computes the content-addressed identifiers used for
// FDD deduplication and storage paths (spec.md §3, §4.2 of the core's
// "leaves first" component table).
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// SHA256Hex returns the lowercase 64-hex-char SHA-256 digest of data
// (spec.md §6: "Content hash is lowercase hex, 64 chars"). A bare digest is
// the one place in this codebase where the standard library is the right
// tool: no pack library wraps crypto/sha256 usefully for a stateless digest
// (see DESIGN.md).
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug produces a stable, URL-safe filename component from a franchise
// name, used to build the content-addressed object-store path
// `/raw/{state}/{franchise_slug}/{year}/` (spec.md §6).
func Slug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	slug := slugNonAlnum.ReplaceAllString(lower, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "unknown"
	}
	return slug
}

// RawPath builds the canonical raw-document path for a franchise/year.
func RawPath(state, franchiseSlug string, year int) string {
	return fmt.Sprintf("/raw/%s/%s/%d/", state, franchiseSlug, year)
}

// ProcessedSectionPath builds the canonical processed-section PDF path:
// `/processed/{fdd_id}/section_{nn}.pdf` where nn is the two-digit item
// number 00..24 (spec.md §6).
func ProcessedSectionPath(fddID string, itemNo int) string {
	return fmt.Sprintf("/processed/%s/section_%02d.pdf", fddID, itemNo)
}
