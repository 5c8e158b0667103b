// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and the tax/relief packages can all import types
// without depending on each other.
package types

import "github.com/shopspring/decimal"

// TaxFiling carries the taxpayer's income and relief claims for one
// assessment, exactly as submitted (before aggregation).
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when decoded from
//     the request body (snake_case names match the stored column names).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. Each relief amount is bounded by its LHDN cap, e.g.
//     lifestyle relief may not exceed RM2,500.
type TaxFiling struct {
	Income           float64 `json:"income"            validate:"gte=0"`
	IndividualRelief float64 `json:"individual_relief" validate:"gte=0,lte=9000"`
	SpouseRelief     float64 `json:"spouse_relief"     validate:"gte=0,lte=4000"`
	MedicalRelief    float64 `json:"medical_relief"    validate:"gte=0,lte=8000"`
	LifestyleRelief  float64 `json:"lifestyle_relief"  validate:"gte=0,lte=2500"`
	EducationRelief  float64 `json:"education_relief"  validate:"gte=0,lte=7000"`
	ParentalRelief   float64 `json:"parental_relief"   validate:"gte=0,lte=5000"`
	NumChildren      int     `json:"num_children"      validate:"gte=0,lte=12"`
}

// TaxRecord is one taxpayer's stored assessment, keyed by ID.
//
// ICNumber is deliberately a string: Malaysian IC numbers are 12 decimal
// digits and may begin with zeros, which a numeric type would lose.
//
// Password is the credential derived at registration time (the last 4
// digits of the IC number). It is persisted with the record but never
// serialised in API responses, hence json:"-".
//
// All money fields are decimal.Decimal so that relief sums and bracket
// maths stay exact; float64 drift in tax amounts is not acceptable.
type TaxRecord struct {
	ID               string          `json:"id"`
	ICNumber         string          `json:"ic_number"`
	Password         string          `json:"-"`
	Income           decimal.Decimal `json:"income"`
	IndividualRelief decimal.Decimal `json:"individual_relief"`
	SpouseRelief     decimal.Decimal `json:"spouse_relief"`
	ChildRelief      decimal.Decimal `json:"child_relief"`
	NumChildren      int             `json:"num_children"`
	MedicalRelief    decimal.Decimal `json:"medical_relief"`
	LifestyleRelief  decimal.Decimal `json:"lifestyle_relief"`
	EducationRelief  decimal.Decimal `json:"education_relief"`
	ParentalRelief   decimal.Decimal `json:"parental_relief"`
	TotalRelief      decimal.Decimal `json:"total_relief"`
	ChargeableIncome decimal.Decimal `json:"chargeable_income"`
	TaxPayable       decimal.Decimal `json:"tax_payable"`
}
