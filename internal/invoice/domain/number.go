package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberPrefix returns the invoice number prefix for a year, e.g. "INV-2024-".
func NumberPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// FormatNumber renders a full invoice number with a 4-digit sequence.
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s%04d", NumberPrefix(prefix, year), seq)
}

// ParseSequence extracts the trailing sequence from an invoice number with
// the given year prefix. Returns 0 when the number does not match.
func ParseSequence(number, prefix string, year int) int {
	rest, ok := strings.CutPrefix(number, NumberPrefix(prefix, year))
	if !ok {
		return 0
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}
