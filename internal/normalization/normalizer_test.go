package normalization

import (
	"errors"
	"testing"

	"github.com/lotsight/lotsight-backend/internal/types"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"already canonical", "LOT-20260112-001", "LOT-20260112-001"},
		{"lowercase with dashes", "lot-20260112-001", "LOT-20260112-001"},
		{"spaces to dashes", "LOT 20260112 001", "LOT-20260112-001"},
		{"mixed whitespace runs", "  lot \t 20260112\n001 ", "LOT-20260112-001"},
		{"special characters stripped", "LOT_20260112#001", "LOT20260112001"},
		{"interior trim", "  batch-7a  ", "BATCH-7A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raws := []string{"LOT 20260112 001", "lot-20260112-001", "  batch_7#a "}
	for _, raw := range raws {
		once, err := Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", raw, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", once, err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n", "###"} {
		if _, err := Normalize(raw); !errors.Is(err, types.ErrEmptyIdentifier) {
			t.Fatalf("Normalize(%q): expected ErrEmptyIdentifier, got %v", raw, err)
		}
	}
}

func TestSkeletonExplainsCaseAndWhitespace(t *testing.T) {
	// Variants of the same identifier written sloppily fold to one skeleton.
	a := Skeleton("LOT 20260112 001")
	b := Skeleton("lot-20260112-001")
	if a != b {
		t.Fatalf("skeletons differ: %q vs %q", a, b)
	}
	// Genuinely different spellings of the same canonical value do not.
	c := Skeleton("LOT-2026 0112-001")
	if c == a {
		t.Fatalf("expected distinct skeleton for %q", "LOT-2026 0112-001")
	}
}

func TestFormatSuspicion(t *testing.T) {
	cases := []struct {
		canonical string
		want      bool
	}{
		{"LOT-20260112-001", false},
		{"A7", true},
		{"1234567", true},
		{"123456789012", false},
		{"BATCH-7A", false},
	}
	for _, tc := range cases {
		got, reason := FormatSuspicion(tc.canonical)
		if got != tc.want {
			t.Fatalf("FormatSuspicion(%q) = %v (%s), want %v", tc.canonical, got, reason, tc.want)
		}
		if got && reason == "" {
			t.Fatalf("FormatSuspicion(%q): flagged without reason", tc.canonical)
		}
	}
}

func TestConflictsWithSeen(t *testing.T) {
	// Case and whitespace differences are explained by normalization.
	if conflicting, _ := ConflictsWithSeen("lot-20260112-001", []string{"LOT 20260112 001"}); conflicting {
		t.Fatalf("case/whitespace variants should not conflict")
	}
	// A raw form whose skeleton disagrees means two different spellings
	// collapsed into one canonical identifier.
	if conflicting, _ := ConflictsWithSeen("LOT#-20260112-001", []string{"LOT-20260112-001"}); !conflicting {
		t.Fatalf("expected conflict between skeleton-distinct raw forms")
	}
	if conflicting, _ := ConflictsWithSeen("LOT-1", nil); conflicting {
		t.Fatalf("no seen forms should never conflict")
	}
}
