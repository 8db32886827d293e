package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in minor units (cents). All arithmetic stays on
// int64 so repeated settlement math never accumulates binary float drift;
// decimal is used only when crossing the boundary (parse/format/JSON).
type Money int64

const Zero Money = 0

var (
	ErrNotANumber   = errors.New("money: value is not a finite number")
	ErrTooPrecise   = errors.New("money: more than two decimal places")
	ErrOutOfRange   = errors.New("money: value out of range")
	errInvalidInput = errors.New("money: invalid input")
)

// maxUnits keeps Mul-free addition chains away from int64 overflow.
const maxUnits = math.MaxInt64 / 4

// FromDecimal converts a decimal amount to Money. Fails if the value carries
// sub-cent precision, so "12.345" is rejected rather than silently rounded.
func FromDecimal(d decimal.Decimal) (Money, error) {
	units := d.Shift(2)
	if !units.IsInteger() {
		return 0, ErrTooPrecise
	}
	v := units.IntPart()
	if v > maxUnits || v < -maxUnits {
		return 0, ErrOutOfRange
	}
	return Money(v), nil
}

// FromString parses a boundary amount such as "120.50" or "-35".
func FromString(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidInput
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return FromDecimal(d)
}

// FromFloat converts a float amount, rejecting NaN/Inf and rounding to cents.
func FromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	return FromDecimal(decimal.NewFromFloat(f).Round(2))
}

// FromUnits builds a Money from raw minor units.
func FromUnits(units int64) Money {
	return Money(units)
}

func (m Money) Units() int64 { return int64(m) }

func (m Money) Add(other Money) Money { return m + other }

func (m Money) Sub(other Money) Money { return m - other }

func (m Money) Neg() Money { return -m }

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsNegative() bool { return m < 0 }
func (m Money) IsPositive() bool { return m > 0 }

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// Decimal exposes the amount for boundary formatting.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a quoted fixed-point string so JS clients
// never see it as a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both "120.50" and a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	v, err := FromString(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value / Scan store Money as a bigint column.
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*m = Money(v)
		return nil
	case nil:
		*m = 0
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T", value)
	}
}
