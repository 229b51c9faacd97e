package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// regionRegex matches region identifiers as they appear in input file names
// (e.g. "Zlinsky", "Praha", "easy-1").
var regionRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateRegion validates a region identifier before it is spliced into
// input file paths.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - Maximum length of 64 characters
//   - No control characters, path separators or traversal sequences
//   - Only letters, digits, '_' and '-'
func ValidateRegion(region string) error {
	if region == "" {
		return New(ErrCodeInvalidInput, "region cannot be empty")
	}

	if len(region) > 64 {
		return New(ErrCodeInvalidInput, "region too long (max 64 characters)")
	}

	for _, r := range region {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "region contains invalid control characters")
		}
	}

	if strings.Contains(region, "..") || strings.ContainsAny(region, `/\`) {
		return New(ErrCodeInvalidInput, "region cannot contain path components: %q", region)
	}

	if !regionRegex.MatchString(region) {
		return New(ErrCodeInvalidInput, "invalid region: %q", region)
	}

	return nil
}

// ValidateMedianCount validates the number of facilities to place.
// n is the vertex count; pass n <= 0 when it is not yet known.
func ValidateMedianCount(p, n int) error {
	if p < 1 {
		return New(ErrCodeInvalidInput, "p must be a positive integer, got %d", p)
	}
	if n > 0 && p > n {
		return New(ErrCodeInfeasibleGraph, "p=%d exceeds vertex count %d", p, n)
	}
	return nil
}

// ValidateTolerance validates a positive finite tolerance such as the
// search precision.
func ValidateTolerance(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return New(ErrCodeInvalidConfig, "%s must be positive and finite, got %v", name, v)
	}
	return nil
}
