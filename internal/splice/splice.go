// Package splice replaces a half-open range of lines with a new block.
//
// The package knows nothing about files. Callers split content into lines,
// call Apply, and join the result back themselves.
package splice

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfRange is returned when an EditRange does not fit the document.
var ErrOutOfRange = errors.New("edit range out of range")

// HashPrefix is prepended to every value returned by ContentHash.
const HashPrefix = "sha256:"

// EditRange is the half-open interval [Start, End) of 0-based line indices.
type EditRange struct {
	Start int
	End   int
}

func (r EditRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Len is the number of lines the range covers.
func (r EditRange) Len() int { return r.End - r.Start }

// Validate checks 0 <= Start <= End <= total.
func (r EditRange) Validate(total int) error {
	switch {
	case r.Start < 0:
		return fmt.Errorf("%w: start %d is negative", ErrOutOfRange, r.Start)
	case r.End < 0:
		return fmt.Errorf("%w: end %d is negative", ErrOutOfRange, r.End)
	case r.Start > r.End:
		return fmt.Errorf("%w: start %d is greater than end %d", ErrOutOfRange, r.Start, r.End)
	case r.End > total:
		return fmt.Errorf("%w: end %d exceeds document length %d", ErrOutOfRange, r.End, total)
	}
	return nil
}

// Apply returns lines[:r.Start] + replacement + lines[r.End:] as a new slice.
// Neither input slice is modified.
func Apply(lines []string, r EditRange, replacement []string) ([]string, error) {
	if err := r.Validate(len(lines)); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(lines)-r.Len()+len(replacement))
	out = append(out, lines[:r.Start]...)
	out = append(out, replacement...)
	out = append(out, lines[r.End:]...)
	return out, nil
}

// ContentHash fingerprints a block of lines. The lines are joined with "\n"
// so the hash does not depend on the line endings of the source file.
func ContentHash(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return HashPrefix + hex.EncodeToString(sum[:])
}

// HashMatches reports whether the removed lines hash to expected.
// The comparison ignores case in the hex digits and surrounding space.
func HashMatches(lines []string, expected string) bool {
	expected = strings.ToLower(strings.TrimSpace(expected))
	if !strings.HasPrefix(expected, HashPrefix) {
		expected = HashPrefix + expected
	}
	return ContentHash(lines) == expected
}
