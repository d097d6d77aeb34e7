package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-2024-0001", FormatNumber("INV", 2024, 1))
	assert.Equal(t, "INV-2024-0042", FormatNumber("INV", 2024, 42))
	assert.Equal(t, "INV-2025-10000", FormatNumber("INV", 2025, 10000))
	assert.Equal(t, "BILL-2024-0007", FormatNumber("BILL", 2024, 7))
}

func TestParseSequence(t *testing.T) {
	assert.Equal(t, 1, ParseSequence("INV-2024-0001", "INV", 2024))
	assert.Equal(t, 999, ParseSequence("INV-2024-0999", "INV", 2024))
	assert.Equal(t, 10000, ParseSequence("INV-2024-10000", "INV", 2024))

	// year or prefix mismatch never feeds the sequence
	assert.Equal(t, 0, ParseSequence("INV-2023-0042", "INV", 2024))
	assert.Equal(t, 0, ParseSequence("BILL-2024-0042", "INV", 2024))
	assert.Equal(t, 0, ParseSequence("garbage", "INV", 2024))
	assert.Equal(t, 0, ParseSequence("INV-2024-xyz", "INV", 2024))
	assert.Equal(t, 0, ParseSequence("", "INV", 2024))
}

func TestRoundTrip(t *testing.T) {
	for _, seq := range []int{1, 17, 9999} {
		number := FormatNumber("INV", 2024, seq)
		assert.Equal(t, seq, ParseSequence(number, "INV", 2024))
	}
}
