package book_vos

import (
	"math"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	common "github.com/psavelis/ledger-book/pkg/domain"
)

// Amount is a non-negative posting amount, backed by an exact decimal rather than a float,
// since §4.3 requires rounding to truncate at a configured precision rather than approximate it.
type Amount struct {
	value decimal.Decimal
}

// NewAmount validates and wraps a posting amount. Negative or non-finite amounts are rejected.
func NewAmount(value float64) (Amount, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Amount{}, common.NewErrInvalidInput("amount must be finite")
	}
	if value < 0 {
		return Amount{}, common.NewErrInvalidInput("amount must be non-negative")
	}

	return Amount{value: decimal.NewFromFloat(value)}, nil
}

// Zero is the additive identity, used as the seed for Σdebit / Σcredit accumulation.
func Zero() Amount {
	return Amount{value: decimal.Zero}
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

func (a Amount) Sub(other Amount) Amount {
	return Amount{value: a.value.Sub(other.value)}
}

func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

func (a Amount) Float64() float64 {
	f, _ := a.value.Float64()
	return f
}

func (a Amount) String() string {
	return a.value.String()
}

// ToDecimal128 converts to the driver's native decimal type, which is what lets the balance
// engine's $sum/$subtract aggregation (§6) operate on debit/credit fields exactly instead of
// as floats.
func (a Amount) ToDecimal128() (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(a.value.String())
}

// DecimalFromDecimal128 is the inverse conversion, used when reading aggregation results back.
func DecimalFromDecimal128(d primitive.Decimal128) decimal.Decimal {
	parsed, _ := decimal.NewFromString(d.String())
	return parsed
}

// RoundToPrecision truncates to the given number of fractional digits, matching the source's
// "round after aggregation, not per posting" contract (§4.3, §9).
func RoundToPrecision(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Truncate(precision)
}

// WithinTolerance reports whether |a-b| <= 10^-precision, the balance-commit tolerance used by
// the entry builder (§4.2) and the void protocol's zero-sum invariant (§4.5).
func WithinTolerance(a, b decimal.Decimal, precision int32) bool {
	tolerance := decimal.New(1, -precision)
	diff := a.Sub(b).Abs()
	return diff.LessThanOrEqual(tolerance)
}
