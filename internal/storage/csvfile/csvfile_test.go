package csvfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/amirulhm/tax-api/internal/storage"
	"github.com/amirulhm/tax-api/internal/types"
)

type CSVStoreSuite struct {
	suite.Suite
	dir   string
	path  string
	store *Store
}

func (s *CSVStoreSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.path = filepath.Join(s.dir, "tax_records.csv")
	s.store = New(s.path)
}

func TestCSVStoreSuite(t *testing.T) {
	suite.Run(t, new(CSVStoreSuite))
}

func (s *CSVStoreSuite) newRecord(id, ic string) types.TaxRecord {
	d := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	return types.TaxRecord{
		ID:               id,
		ICNumber:         ic,
		Password:         ic[len(ic)-4:],
		Income:           d("80000"),
		IndividualRelief: d("9000"),
		SpouseRelief:     d("0"),
		ChildRelief:      d("16000"),
		NumChildren:      2,
		MedicalRelief:    d("1200.50"),
		LifestyleRelief:  d("2500"),
		EducationRelief:  d("0"),
		ParentalRelief:   d("0"),
		TotalRelief:      d("28700.50"),
		ChargeableIncome: d("51299.50"),
		TaxPayable:       d("1642.95"),
	}
}

func (s *CSVStoreSuite) TestEmptyTable() {
	s.Run("Exists on absent file", func() {
		found, ic, err := s.store.Exists("nobody")
		s.Require().NoError(err)
		s.False(found)
		s.Empty(ic)
	})

	s.Run("GetByID on absent file", func() {
		_, err := s.store.GetByID("nobody")
		s.Require().ErrorIs(err, storage.ErrNotFound)
	})

	s.Run("ListAll on absent file", func() {
		all, err := s.store.ListAll()
		s.Require().NoError(err)
		s.NotNil(all)
		s.Empty(all)
	})
}

func (s *CSVStoreSuite) TestInsertAndLookup() {
	rec := s.newRecord("ali88", "990101145678")
	s.Require().NoError(s.store.Upsert(rec, storage.InsertOnly))

	s.Run("file created with header", func() {
		data, err := os.ReadFile(s.path)
		s.Require().NoError(err)
		s.True(strings.HasPrefix(string(data), "id,ic_number,password,income,"))
	})

	s.Run("Exists finds it", func() {
		found, ic, err := s.store.Exists("ali88")
		s.Require().NoError(err)
		s.True(found)
		s.Equal("990101145678", ic)
	})

	s.Run("GetByID round-trips every field", func() {
		got, err := s.store.GetByID("ali88")
		s.Require().NoError(err)
		s.Equal(rec.ID, got.ID)
		s.Equal(rec.ICNumber, got.ICNumber)
		s.Equal(rec.Password, got.Password)
		s.Equal(rec.NumChildren, got.NumChildren)
		s.Equal("1200.50", got.MedicalRelief.StringFixed(2))
		s.Equal("28700.50", got.TotalRelief.StringFixed(2))
		s.Equal("1642.95", got.TaxPayable.StringFixed(2))
	})
}

// TestLeadingZeroICRoundTrip pins the fixed-width guarantee: an IC
// number starting with zeros must come back exactly as written, from
// both GetByID and Exists.
func (s *CSVStoreSuite) TestLeadingZeroICRoundTrip() {
	rec := s.newRecord("zero1", "000123456789")
	s.Require().NoError(s.store.Upsert(rec, storage.InsertOnly))

	got, err := s.store.GetByID("zero1")
	s.Require().NoError(err)
	s.Equal("000123456789", got.ICNumber)

	found, ic, err := s.store.Exists("zero1")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("000123456789", ic)
}

func (s *CSVStoreSuite) TestReplace() {
	first := s.newRecord("siti", "880202085544")
	s.Require().NoError(s.store.Upsert(first, storage.InsertOnly))

	other := s.newRecord("rahman", "770303039911")
	s.Require().NoError(s.store.Upsert(other, storage.InsertOnly))

	updated := first
	updated.Income = decimal.RequireFromString("95000")
	updated.TaxPayable = decimal.RequireFromString("3145.00")

	s.Run("replace swaps the row in place", func() {
		s.Require().NoError(s.store.Upsert(updated, storage.Replace))

		got, err := s.store.GetByID("siti")
		s.Require().NoError(err)
		s.Equal("95000.00", got.Income.StringFixed(2))
		s.Equal("3145.00", got.TaxPayable.StringFixed(2))
	})

	s.Run("replace is idempotent", func() {
		s.Require().NoError(s.store.Upsert(updated, storage.Replace))

		all, err := s.store.ListAll()
		s.Require().NoError(err)
		s.Len(all, 2)

		count := 0
		for _, rec := range all {
			if rec.ID == "siti" {
				count++
			}
		}
		s.Equal(1, count, "exactly one row for the replaced ID")
	})

	s.Run("other rows survive the rewrite", func() {
		got, err := s.store.GetByID("rahman")
		s.Require().NoError(err)
		s.Equal("770303039911", got.ICNumber)
	})

	s.Run("no temp files left behind", func() {
		entries, err := os.ReadDir(s.dir)
		s.Require().NoError(err)
		s.Len(entries, 1)
	})
}

func (s *CSVStoreSuite) TestListAllPreservesOrder() {
	ids := []string{"c3", "a1", "b2"}
	for _, id := range ids {
		s.Require().NoError(s.store.Upsert(s.newRecord(id, "990101145678"), storage.InsertOnly))
	}

	all, err := s.store.ListAll()
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for i, id := range ids {
		s.Equal(id, all[i].ID)
	}
}
