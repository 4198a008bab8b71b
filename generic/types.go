/*
Package generic provides the domain-agnostic building blocks of the staffing engine.

PURPOSE:
  Day and week arithmetic, inclusive periods, and exact hour amounts. The
  workload package builds weekly breakdowns on top of these types without
  caring how they are stored or served.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: An exact hour quantity (e.g., 8 hours, 7.5 hours)
  - Hours: Shorthand constructor for hour amounts

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so sums of hour values are exact
  2. Value semantics: Amount arithmetic returns new values, never mutates
  3. UTC days: TimePoint is always a UTC calendar day for week math

USAGE:
  total := generic.Hours(20).Add(generic.Hours(8))
  holiday := generic.Hours(40).Div(decimal.NewFromInt(5)) // 8h

SEE ALSO:
  - time.go: TimePoint and week normalization
  - period.go: Inclusive day ranges
  - errors.go: Sentinel errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (hours for every workload accumulator)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const UnitHours Unit = "hours"

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

// Hours is NewAmount(value, UnitHours).
func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

// ZeroHours is the starting value of every accumulator.
func ZeroHours() Amount { return Amount{Value: decimal.Zero, Unit: UnitHours} }

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s), Unit: a.Unit} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

// Float64 returns the value for JSON responses. Precision loss is acceptable there.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string { return a.Value.String() + " " + string(a.Unit) }
