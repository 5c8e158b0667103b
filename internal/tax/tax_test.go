package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		income      string
		totalRelief string
		want        string
	}{
		{"zero income", "0", "0", "0.00"},
		{"inside tax-free bracket", "4999.99", "0", "0.00"},
		{"exactly first ceiling", "5000", "0", "0.00"},
		{"one ringgit into bracket B", "5001", "0", "0.01"},
		{"top of bracket B", "20000", "0", "150.00"},
		// 15,000 × 1% + 5,000 × 3% = 150 + 150
		{"mid bracket C", "25000", "0", "300.00"},
		{"top of bracket C", "35000", "0", "600.00"},
		{"top of bracket D", "50000", "0", "1500.00"},
		{"top of bracket E", "70000", "0", "3700.00"},
		{"top of bracket F", "100000", "0", "9400.00"},
		{"top of bracket G", "400000", "0", "84400.00"},
		{"top of bracket H", "600000", "0", "136400.00"},
		{"top of bracket I", "2000000", "0", "528400.00"},
		// all ten brackets in play: bracket J taxes the final
		// 100,000 at 30% = 30,000 on top of 528,400
		{"into bracket J", "2100000", "0", "558400.00"},
		{"relief reduces chargeable", "30000", "5000", "300.00"},
		{"relief exceeds income", "10000", "25000", "0.00"},
		{"fractional sen rounds half-up", "5001.50", "0", "0.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(d(tt.income), d(tt.totalRelief))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

// TestComputeMonotonic checks that tax payable never decreases as
// chargeable income rises, sampling across every bracket boundary.
func TestComputeMonotonic(t *testing.T) {
	samples := []string{
		"0", "2500", "5000", "5001", "19999", "20000", "20001",
		"34999", "35001", "49999", "50001", "69999", "70001",
		"99999", "100001", "399999", "400001", "599999", "600001",
		"1999999", "2000001", "5000000",
	}

	prev := decimal.Zero
	for _, s := range samples {
		got := ComputeChargeable(d(s))
		assert.True(t, got.GreaterThanOrEqual(prev),
			"tax at chargeable %s (%s) below tax at previous sample (%s)",
			s, got, prev)
		prev = got
	}
}

// TestScheduleContiguous guards the bracket table itself: ceilings must
// be strictly increasing and only the last bracket may be open-ended.
func TestScheduleContiguous(t *testing.T) {
	assert.Len(t, Schedule, 10)

	lower := decimal.Zero
	for i, b := range Schedule {
		if i == len(Schedule)-1 {
			assert.True(t, b.open, "last bracket must be open-ended")
			continue
		}
		assert.False(t, b.open, "bracket %d must have a ceiling", i)
		assert.True(t, b.Upper.GreaterThan(lower),
			"bracket %d ceiling %s not above previous %s", i, b.Upper, lower)
		lower = b.Upper
	}
}
