package unitutil

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of the staking token.
const EtherDecimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// amountPattern accepts plain decimal notation only. Exponents are rejected so a
// short input cannot expand into an arbitrarily large integer.
var amountPattern = regexp.MustCompile(`^-?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

// ParseEther converts a decimal token amount such as "1.25" to its base-unit value.
// Negative amounts and fractions longer than 18 digits are rejected; zero is allowed.
func ParseEther(amount string) (*big.Int, error) {
	return ParseUnits(amount, EtherDecimals)
}

func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	if !amountPattern.MatchString(amount) {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, amount)
	}
	if i := strings.IndexByte(amount, '.'); i >= 0 && int32(len(amount)-i-1) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, decimals)
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(amount, "."))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, amount)
	}
	if d.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}

	return d.Shift(decimals).BigInt(), nil
}

// FormatEther renders a base-unit value as a decimal string, always with a fractional part.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0.0"
	}

	s := decimal.NewFromBigInt(value, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
