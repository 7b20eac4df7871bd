package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.New(1, 3)
	million  = decimal.New(1, 6)
	billion  = decimal.New(1, 9)
)

// ScaleAmount converts a raw on-chain integer into token units (raw / 10^decimals).
// A nil raw amount yields nil.
func ScaleAmount(raw *big.Int, decimals uint8) *decimal.Decimal {
	if raw == nil {
		return nil
	}
	scaled := decimal.NewFromBigInt(raw, -int32(decimals))
	return &scaled
}

// ToBaseUnits converts a token amount into its raw integer representation, truncating
// any digits beyond the token's decimals.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}

// ParseAmount parses a user supplied amount. The amount must be a finite number greater than zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero")
	}
	return amount, nil
}

// DisplayPrecision is the number of fractional digits shown for a token.
func DisplayPrecision(decimals uint8) int32 {
	if decimals > 6 {
		return 4
	}
	return 6
}

// FormatTokenAmount renders an amount truncated toward zero at the token's display precision,
// with "," grouping in the integer part. With shorter set, amounts of at least one thousand
// are divided down and suffixed with K, M or B. A nil amount renders as "0".
func FormatTokenAmount(amount *decimal.Decimal, decimals uint8, shorter bool) string {
	if amount == nil {
		return "0"
	}

	precision := DisplayPrecision(decimals)
	value := *amount

	if shorter {
		abs := value.Abs()
		switch {
		case abs.GreaterThanOrEqual(billion):
			return groupThousands(value.Shift(-9).Truncate(precision).String()) + "B"
		case abs.GreaterThanOrEqual(million):
			return groupThousands(value.Shift(-6).Truncate(precision).String()) + "M"
		case abs.GreaterThanOrEqual(thousand):
			return groupThousands(value.Shift(-3).Truncate(precision).String()) + "K"
		}
	}

	return groupThousands(value.Truncate(precision).String())
}

// FormatUSD renders a USD estimate with two fractional digits, truncated.
func FormatUSD(amount decimal.Decimal) string {
	return "$" + groupThousands(amount.Truncate(2).StringFixed(2))
}

func groupThousands(number string) string {
	sign := ""
	if strings.HasPrefix(number, "-") {
		sign = "-"
		number = number[1:]
	}

	integer, fraction, hasFraction := strings.Cut(number, ".")
	if len(integer) > 3 {
		var b strings.Builder
		head := len(integer) % 3
		if head > 0 {
			b.WriteString(integer[:head])
		}
		for i := head; i < len(integer); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(integer[i : i+3])
		}
		integer = b.String()
	}

	if hasFraction {
		return sign + integer + "." + fraction
	}
	return sign + integer
}
