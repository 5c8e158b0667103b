package relief

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirulhm/tax-api/internal/types"
)

func TestAggregate(t *testing.T) {
	filing := types.TaxFiling{
		Income:           80000,
		IndividualRelief: 9000,
		SpouseRelief:     4000,
		MedicalRelief:    1500,
		LifestyleRelief:  2500,
		EducationRelief:  0,
		ParentalRelief:   0,
		NumChildren:      3,
	}

	b, err := Aggregate(filing)
	require.NoError(t, err)

	assert.Equal(t, "24000.00", b.Child.StringFixed(2), "3 children at RM8,000 each")
	assert.Equal(t, 3, b.NumChildren)
	// 9000 + 4000 + 24000 + 1500 + 2500
	assert.Equal(t, "41000.00", b.Total.StringFixed(2))
}

func TestAggregateNoClaims(t *testing.T) {
	b, err := Aggregate(types.TaxFiling{})
	require.NoError(t, err)

	assert.True(t, b.Total.IsZero())
	assert.Empty(t, b.Claimed())
}

func TestAggregateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		filing types.TaxFiling
	}{
		{"negative income", types.TaxFiling{Income: -1}},
		{"individual above cap", types.TaxFiling{IndividualRelief: 9001}},
		{"spouse above cap", types.TaxFiling{SpouseRelief: 4000.01}},
		{"medical above cap", types.TaxFiling{MedicalRelief: 8001}},
		{"lifestyle above cap", types.TaxFiling{LifestyleRelief: 2501}},
		{"education above cap", types.TaxFiling{EducationRelief: 7001}},
		{"parental above cap", types.TaxFiling{ParentalRelief: 5001}},
		{"negative relief", types.TaxFiling{MedicalRelief: -50}},
		{"too many children", types.TaxFiling{NumChildren: 13}},
		{"negative children", types.TaxFiling{NumChildren: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(tt.filing)
			require.Error(t, err)

			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestClaimedNames(t *testing.T) {
	b, err := Aggregate(types.TaxFiling{
		IndividualRelief: 9000,
		LifestyleRelief:  100,
		NumChildren:      1,
	})
	require.NoError(t, err)

	// sorted alphabetically, only positive categories
	assert.Equal(t,
		[]string{"Child Relief", "Individual Relief", "Lifestyle Relief"},
		b.Claimed())
}
