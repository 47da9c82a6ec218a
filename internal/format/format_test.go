package format

import (
	"math/big"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETH(t *testing.T) {
	eth := func(s string) *big.Int {
		n, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		return n
	}

	tests := []struct {
		name string
		wei  *big.Int
		want string
	}{
		{"nil", nil, "0.000000"},
		{"zero", big.NewInt(0), "0.000000"},
		{"one wei rounds down", big.NewInt(1), "0.000000"},
		{"one eth", eth("1000000000000000000"), "1.000000"},
		{"one and a half eth", eth("1500000000000000000"), "1.500000"},
		{"sub-display amount rounds half up", eth("500000000000"), "0.000001"},
		{"just below half rounds down", eth("499999999999"), "0.000000"},
		{"six decimals exact", eth("123456000000000000"), "0.123456"},
		{"large pot", eth("12345678901234567890"), "12.345679"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ETH(tt.wei))
		})
	}
}

func TestETHProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("always exactly six decimal places", prop.ForAll(
		func(wei int64) bool {
			s := ETH(big.NewInt(wei))
			dot := strings.IndexByte(s, '.')
			return dot >= 0 && len(s)-dot-1 == 6
		},
		gen.Int64Range(0, 1<<62),
	))

	properties.Property("monotonic in wei", prop.ForAll(
		func(a, b int64) bool {
			if a > b {
				a, b = b, a
			}
			return fixedLE(ETH(big.NewInt(a)), ETH(big.NewInt(b)))
		},
		gen.Int64Range(0, 1<<62),
		gen.Int64Range(0, 1<<62),
	))

	properties.TestingRun(t)
}

// fixedLE compares two fixed-six-decimal non-negative strings numerically.
// The whole part carries no leading zeros, so a shorter string is always the
// smaller number and equal lengths compare lexicographically.
func fixedLE(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a <= b
}

func TestTicket(t *testing.T) {
	// The no-ticket sentinels all format to empty, never "00000".
	for _, v := range []any{0, "0", "", nil} {
		assert.Equal(t, "", Ticket(v), "sentinel %#v", v)
	}

	assert.Equal(t, "00007", Ticket(7))
	assert.Equal(t, "00042", Ticket(int64(42)))
	assert.Equal(t, "00007", Ticket("7"))
	assert.Equal(t, "12345", Ticket(12345))
	assert.Equal(t, "99999", Ticket(uint64(99999)))
}

func TestTicketProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("positive tickets pad to five digits", prop.ForAll(
		func(n int64) bool {
			s := Ticket(n)
			return len(s) == 5 && strings.TrimLeft(s, "0") != ""
		},
		gen.Int64Range(1, 99999),
	))

	properties.TestingRun(t)
}

func TestUSD(t *testing.T) {
	assert.Equal(t, "0", USD(0, 3000))
	assert.Equal(t, "0", USD(0, 0))
	assert.Equal(t, "$4,500.00", USD(1.5, 3000))
	assert.Equal(t, "$0.10", USD(0.1, 1))
	assert.Equal(t, "$1,234,567.89", USD(1234567.89, 1))
	assert.Equal(t, "$999.99", USD(999.99, 1))
	assert.Equal(t, "$1,000.00", USD(1000, 1))
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x83f2...d810", ShortAddress("0x83f27d55e738c0f2a687c2f36cd797db7c32d810"))
	assert.Equal(t, "0xabc", ShortAddress("0xabc"))
}
