// Package tax implements the Malaysian personal income-tax computation
// for year of assessment 2024, using the LHDN progressive rate schedule.
//
// The schedule is marginal: each bracket's rate applies only to the
// slice of chargeable income that falls inside that bracket, so moving
// into a higher bracket never taxes the income below it at the higher
// rate. All arithmetic is done with shopspring/decimal — tax amounts
// must be exact to the sen, and float64 cannot guarantee that.
package tax

import "github.com/shopspring/decimal"

// Bracket is one row of the progressive rate schedule. Lower bounds are
// implicit: a bracket starts where the previous one ends. Upper is the
// inclusive ceiling of the bracket; the top bracket is open-ended and
// marked with open=true.
type Bracket struct {
	Upper decimal.Decimal
	Rate  decimal.Decimal
	open  bool
}

// rm builds a decimal from a whole-ringgit bracket boundary.
func rm(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// Schedule is the LHDN 2024 resident individual rate table, brackets
// A through J. The first bracket (0–5,000 at 0%) is kept in the table
// rather than special-cased so reports can render the full schedule.
var Schedule = []Bracket{
	{Upper: rm(5_000), Rate: decimal.Zero},                               // A: 0%
	{Upper: rm(20_000), Rate: decimal.RequireFromString("0.01")},         // B: 1%
	{Upper: rm(35_000), Rate: decimal.RequireFromString("0.03")},         // C: 3%
	{Upper: rm(50_000), Rate: decimal.RequireFromString("0.06")},         // D: 6%
	{Upper: rm(70_000), Rate: decimal.RequireFromString("0.11")},         // E: 11%
	{Upper: rm(100_000), Rate: decimal.RequireFromString("0.19")},        // F: 19%
	{Upper: rm(400_000), Rate: decimal.RequireFromString("0.25")},        // G: 25%
	{Upper: rm(600_000), Rate: decimal.RequireFromString("0.26")},        // H: 26%
	{Upper: rm(2_000_000), Rate: decimal.RequireFromString("0.28")},      // I: 28%
	{Upper: decimal.Decimal{}, Rate: decimal.RequireFromString("0.30"), open: true}, // J: 30%
}

// Compute returns the tax payable on income after deducting totalRelief,
// rounded half-up to 2 decimal places.
//
// Chargeable income at or below the first bracket ceiling (RM5,000)
// attracts no tax; that includes the case where relief exceeds income.
// The function is total: any inputs produce a value, never an error.
func Compute(income, totalRelief decimal.Decimal) decimal.Decimal {
	return ComputeChargeable(income.Sub(totalRelief))
}

// ComputeChargeable runs the marginal schedule directly on a chargeable
// income figure. Callers that persist chargeable income clamp it at
// zero first (see types.TaxRecord); the engine only needs the ≤ 0 case
// to fall through to zero tax, which it does.
func ComputeChargeable(chargeable decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero

	for _, b := range Schedule {
		if chargeable.LessThanOrEqual(lower) {
			break
		}
		// Slice of income inside this bracket: from the bracket's lower
		// bound up to its ceiling, or to the chargeable income if that
		// runs out first. The open top bracket has no ceiling.
		slice := chargeable
		if !b.open && slice.GreaterThan(b.Upper) {
			slice = b.Upper
		}
		tax = tax.Add(slice.Sub(lower).Mul(b.Rate))
		lower = b.Upper
	}

	// Round half-up to the sen on the final sum only, matching how LHDN
	// figures are quoted. Intermediate slices stay unrounded.
	return tax.Round(2)
}
