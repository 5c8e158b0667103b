package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/amirulhm/tax-api/internal/storage"
	"github.com/amirulhm/tax-api/internal/types"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *SQLite
}

func (s *SQLiteStoreSuite) SetupTest() {
	store, err := New(filepath.Join(s.T().TempDir(), "tax.db"))
	require.NoError(s.T(), err)
	s.store = store
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.store.Db.Close()
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) newRecord(id, ic string) types.TaxRecord {
	d := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	return types.TaxRecord{
		ID:               id,
		ICNumber:         ic,
		Password:         ic[len(ic)-4:],
		Income:           d("60000"),
		IndividualRelief: d("9000"),
		ChildRelief:      d("8000"),
		NumChildren:      1,
		LifestyleRelief:  d("2000"),
		TotalRelief:      d("19000"),
		ChargeableIncome: d("41000"),
		TaxPayable:       d("960.00"),
	}
}

func (s *SQLiteStoreSuite) TestEmptyTable() {
	found, _, err := s.store.Exists("nobody")
	s.Require().NoError(err)
	s.False(found)

	_, err = s.store.GetByID("nobody")
	s.Require().ErrorIs(err, storage.ErrNotFound)

	all, err := s.store.ListAll()
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)
}

func (s *SQLiteStoreSuite) TestInsertAndRoundTrip() {
	rec := s.newRecord("farid", "000123456789")
	s.Require().NoError(s.store.Upsert(rec, storage.InsertOnly))

	found, ic, err := s.store.Exists("farid")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("000123456789", ic, "leading zeros survive the TEXT column")

	got, err := s.store.GetByID("farid")
	s.Require().NoError(err)
	s.Equal("000123456789", got.ICNumber)
	s.Equal(1, got.NumChildren)
	s.Equal("960.00", got.TaxPayable.StringFixed(2))
	s.Equal("19000.00", got.TotalRelief.StringFixed(2))
}

func (s *SQLiteStoreSuite) TestReplaceIdempotent() {
	rec := s.newRecord("lim", "900505015678")
	s.Require().NoError(s.store.Upsert(rec, storage.InsertOnly))

	rec.Income = decimal.RequireFromString("72000")
	s.Require().NoError(s.store.Upsert(rec, storage.Replace))
	s.Require().NoError(s.store.Upsert(rec, storage.Replace))

	all, err := s.store.ListAll()
	s.Require().NoError(err)
	s.Len(all, 1)
	s.Equal("72000.00", all[0].Income.StringFixed(2))
}
