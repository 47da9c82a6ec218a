// Package format implements the display formatting contract shared by the
// snapshot, share message, and history views. The rules here are exact UI
// contracts, not cosmetic choices; tests pin every edge.
package format

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// weiPerEth is the fixed-point scale of the chain's native currency.
var weiPerEth = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ethRoundHalf is half of one display unit (10^(18-6) / 2), added before the
// integer division so ETH amounts round half-up instead of truncating.
var ethRoundHalf = new(big.Int).Div(
	new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil),
	big.NewInt(2),
)

var ethDisplayScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(6), nil)

// ETH renders a wei amount as ETH with exactly six decimal places, rounding
// half-up. All arithmetic stays in big.Int; no floating point touches wei.
// A nil amount renders as "0.000000".
func ETH(wei *big.Int) string {
	if wei == nil {
		return "0.000000"
	}

	// scaled = round(wei / 10^12) so that scaled / 10^6 is the ETH amount.
	scaled := new(big.Int).Add(wei, ethRoundHalf)
	scaled.Div(scaled, new(big.Int).Div(weiPerEth, ethDisplayScale))

	whole, frac := new(big.Int).DivMod(scaled, ethDisplayScale, new(big.Int))
	return fmt.Sprintf("%s.%06d", whole.String(), frac.Int64())
}

// EthFloat converts a wei amount to a float64 ETH value for display-only
// math such as the USD conversion. Funds never go through this path.
func EthFloat(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		new(big.Float).SetInt(weiPerEth),
	).Float64()
	return f
}

// Ticket renders a ticket number zero-padded to five digits. The values 0,
// "0", "" and nil render as the empty string, not "00000": a zero ticket is
// the backend's way of saying "no ticket".
func Ticket(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if t == "" || t == "0" {
			return ""
		}
		if len(t) >= 5 {
			return t
		}
		return strings.Repeat("0", 5-len(t)) + t
	case int:
		return padTicket(int64(t))
	case int64:
		return padTicket(t)
	case uint64:
		if t == 0 {
			return ""
		}
		return fmt.Sprintf("%05d", t)
	default:
		return ""
	}
}

func padTicket(n int64) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%05d", n)
}

// USD converts an ETH amount to US dollars at the given spot price and
// renders it as US-locale currency with two decimal places, e.g. "$4,500.00".
// A zero ETH amount short-circuits to the literal "0" -- deliberately
// asymmetric with the currency-formatted branch.
func USD(eth float64, ethPriceUsd float64) string {
	if eth == 0 {
		return "0"
	}
	usd := eth * ethPriceUsd

	s := strconv.FormatFloat(usd, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	// Insert thousands separators into the whole part.
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// ShortAddress compresses a hex address for display: "0x1234...abcd".
// Addresses too short to compress are returned unchanged.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
