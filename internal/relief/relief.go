// Package relief validates and aggregates the individual tax relief
// claims that reduce chargeable income.
//
// Relief caps (LHDN, year of assessment 2024):
//
//	Individual        RM9,000  (automatic for every taxpayer)
//	Spouse            RM4,000  (spouse with no or low income)
//	Medical Expenses  RM8,000  (self, spouse or child)
//	Lifestyle         RM2,500  (books, sports, computer, phone, internet)
//	Education Fees    RM7,000
//	Parental Care     RM5,000
//	Child             RM8,000 per child, up to 12 children
//
// The caps live as validate:"..." tags on types.TaxFiling; this package
// runs that single validation pass and then does the arithmetic. It
// never re-prompts — callers decide what to do with a ValidationErrors.
package relief

import (
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/amirulhm/tax-api/internal/types"
)

// PerChild is the child relief granted for each dependent child.
var PerChild = decimal.NewFromInt(8000)

// validate is shared: validator.New is relatively expensive (it parses
// struct tags via reflection) so we build it once per package.
var validate = validator.New()

// Breakdown is the aggregated relief figure plus the per-category
// amounts, in exact decimals. It is transient — built fresh for each
// computation and folded into the TaxRecord that gets stored.
type Breakdown struct {
	Individual  decimal.Decimal
	Spouse      decimal.Decimal
	Child       decimal.Decimal
	NumChildren int
	Medical     decimal.Decimal
	Lifestyle   decimal.Decimal
	Education   decimal.Decimal
	Parental    decimal.Decimal
	Total       decimal.Decimal
}

// Aggregate validates every claimed amount against its cap and the
// child count against [0,12], then totals the seven relief categories.
// Child relief is derived, never claimed directly: NumChildren × 8,000.
//
// On any out-of-range field it returns validator.ValidationErrors and a
// zero Breakdown; it does not partially aggregate.
func Aggregate(filing types.TaxFiling) (Breakdown, error) {
	if err := validate.Struct(filing); err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Individual:  decimal.NewFromFloat(filing.IndividualRelief),
		Spouse:      decimal.NewFromFloat(filing.SpouseRelief),
		Child:       PerChild.Mul(decimal.NewFromInt(int64(filing.NumChildren))),
		NumChildren: filing.NumChildren,
		Medical:     decimal.NewFromFloat(filing.MedicalRelief),
		Lifestyle:   decimal.NewFromFloat(filing.LifestyleRelief),
		Education:   decimal.NewFromFloat(filing.EducationRelief),
		Parental:    decimal.NewFromFloat(filing.ParentalRelief),
	}

	b.Total = b.Individual.
		Add(b.Spouse).
		Add(b.Child).
		Add(b.Medical).
		Add(b.Lifestyle).
		Add(b.Education).
		Add(b.Parental)

	return b, nil
}

// Claimed returns the display names of the categories with a strictly
// positive claimed amount, sorted alphabetically. This is a reporting
// view derived on demand; it is never stored.
func (b Breakdown) Claimed() []string {
	var names []string

	add := func(amount decimal.Decimal, name string) {
		if amount.IsPositive() {
			names = append(names, name)
		}
	}

	add(b.Individual, "Individual Relief")
	add(b.Spouse, "Spouse Relief")
	add(b.Child, "Child Relief")
	add(b.Medical, "Medical Expenses Relief")
	add(b.Lifestyle, "Lifestyle Relief")
	add(b.Education, "Education Fees Relief")
	add(b.Parental, "Parental Care Relief")

	sort.Strings(names)
	return names
}
