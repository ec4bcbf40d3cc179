// Package identifier formats and allocates human-readable business
// identifiers of the form TAG-YYYY-NNNNNN.
package identifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	TagPolicy      = "POL"
	TagClaim       = "CLM"
	TagTransaction = "TXN"

	// MaxSequence is the largest value that fits the six-digit suffix.
	MaxSequence = 999999
)

var (
	ErrSequenceExhausted = errors.New("identifier sequence exhausted for year")
	ErrMalformed         = errors.New("malformed identifier")
)

// Format renders tag, year and seq. It fails rather than widening the
// suffix when seq no longer fits six digits.
func Format(tag string, year int, seq int64) (string, error) {
	if seq < 1 {
		return "", fmt.Errorf("%w: sequence %d", ErrMalformed, seq)
	}
	if seq > MaxSequence {
		return "", fmt.Errorf("%w: %s-%d", ErrSequenceExhausted, tag, year)
	}
	return fmt.Sprintf("%s-%d-%06d", tag, year, seq), nil
}

// Parse splits an identifier into its tag, year and sequence.
func Parse(id string) (tag string, year int, seq int64, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] == "" || len(parts[1]) != 4 || len(parts[2]) != 6 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 0 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	return parts[0], year, seq, nil
}

// Allocator returns the next counter value for (tag, year).
type Allocator interface {
	Next(ctx context.Context, tag string, year int) (int64, error)
}

// Generator allocates identifiers for the current calendar year (UTC).
// Call Next inside the transaction that inserts the identified row so the
// counter and the row commit together.
type Generator struct {
	Seq   Allocator
	Clock func() time.Time
}

func NewGenerator(seq Allocator) *Generator {
	return &Generator{Seq: seq, Clock: time.Now}
}

func (g *Generator) Next(ctx context.Context, tag string) (string, error) {
	year := g.Clock().UTC().Year()
	seq, err := g.Seq.Next(ctx, tag, year)
	if err != nil {
		return "", fmt.Errorf("allocate %s sequence: %w", tag, err)
	}
	return Format(tag, year, seq)
}
