package normalization

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lotsight/lotsight-backend/internal/types"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[^A-Z0-9-]`)
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)
)

// Normalize turns a raw lot identifier into its canonical form: trimmed,
// uppercased, internal whitespace runs collapsed to a single dash, anything
// outside [A-Z0-9-] stripped. Idempotent: a canonical value normalizes to
// itself.
func Normalize(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ToUpper(normalized)
	normalized = whitespaceRun.ReplaceAllString(normalized, "-")
	normalized = invalidChars.ReplaceAllString(normalized, "")
	if normalized == "" {
		return "", types.ErrEmptyIdentifier
	}
	return normalized, nil
}

// Skeleton folds away exactly the differences normalization is allowed to
// explain: case and whitespace. Two raw forms with equal skeletons are the
// same identifier written sloppily; unequal skeletons that still normalize
// to the same canonical value mean the canonical form is ambiguous.
func Skeleton(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ToUpper(s)
	return whitespaceRun.ReplaceAllString(s, "-")
}

// FormatSuspicion applies the per-identifier format checks: identifiers too
// short or purely numeric carry too little context to match reliably across
// sources. These flag the identifier as ambiguous without blocking it.
func FormatSuspicion(canonical string) (bool, string) {
	if len(canonical) < 5 {
		return true, fmt.Sprintf("lot identifier too short (length %d, minimum 5)", len(canonical))
	}
	bare := strings.ReplaceAll(canonical, "-", "")
	if digitsOnly.MatchString(bare) && len(canonical) < 12 {
		return true, "numeric-only identifier without date or line context"
	}
	return false, ""
}

// ConflictsWithSeen reports whether raw disagrees with any previously seen
// raw form for the same canonical value in a way case and whitespace cannot
// explain.
func ConflictsWithSeen(raw string, seenRaws []string) (bool, string) {
	skel := Skeleton(raw)
	for _, seen := range seenRaws {
		if seen == raw {
			continue
		}
		if other := Skeleton(seen); other != skel {
			return true, fmt.Sprintf("conflicting raw forms %q and %q normalize to the same identifier", raw, seen)
		}
	}
	return false, ""
}
