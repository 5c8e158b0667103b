// Package csvfile provides the default Storage implementation: a single
// CSV table of tax records, one row per taxpayer ID.
//
// FILE LAYOUT
// ───────────
// The first row is a header naming every TaxRecord field; each later
// row is one record. The file is append-only for inserts. A Replace
// upsert rewrites the whole table to a temp file in the same directory
// and renames it over the original, so readers never observe a
// half-written table even if the process dies mid-write.
//
// The ic_number column is always written and re-read as a fixed-width
// 12-character string. "000123456789" must round-trip exactly; parsing
// it as a number would silently drop the leading zeros.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirulhm/tax-api/internal/auth"
	"github.com/amirulhm/tax-api/internal/storage"
	"github.com/amirulhm/tax-api/internal/types"
)

// header is the column order of the table, fixed at first write. It
// deliberately matches the stored-field order of types.TaxRecord.
var header = []string{
	"id", "ic_number", "password", "income",
	"individual_relief", "spouse_relief", "child_relief", "num_children",
	"medical_relief", "lifestyle_relief", "education_relief",
	"parental_relief", "total_relief", "chargeable_income", "tax_payable",
}

// Store is the CSV-backed implementation of storage.Storage.
// It holds only the file path; every operation opens, reads or rewrites
// the file and closes it again. With a single interactive session at a
// time (the system's stated usage) that is all the coordination needed.
// Concurrent writers would need a lock around Upsert — see the package
// comment on the rename strategy, which protects readers but not two
// racing rewrites.
type Store struct {
	path string
}

// New returns a Store over the table at path. The file itself is
// created lazily on the first insert; a missing file reads as an empty
// table, so construction never touches the disk.
func New(path string) *Store {
	return &Store{path: path}
}

// Exists scans the table for id. On a hit the stored IC number is
// returned zero-padded to 12 characters.
func (s *Store) Exists(id string) (bool, string, error) {
	records, err := s.readAll()
	if err != nil {
		return false, "", fmt.Errorf("Exists: %w", err)
	}

	for _, rec := range records {
		if rec.ID == id {
			return true, padIC(rec.ICNumber), nil
		}
	}
	return false, "", nil
}

// GetByID scans the table and returns the first (and, IDs being unique,
// only) record matching id, or storage.ErrNotFound.
func (s *Store) GetByID(id string) (types.TaxRecord, error) {
	records, err := s.readAll()
	if err != nil {
		return types.TaxRecord{}, fmt.Errorf("GetByID: %w", err)
	}

	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return types.TaxRecord{}, fmt.Errorf("GetByID %q: %w", id, storage.ErrNotFound)
}

// Upsert writes record according to mode.
//
// InsertOnly appends a row, creating the file with its header first if
// the table does not exist yet. Replace loads the table, drops any row
// with the same ID, re-appends the record and rewrites the whole file
// atomically. Calling Replace twice with the same record therefore
// leaves exactly one row for that ID.
func (s *Store) Upsert(record types.TaxRecord, mode storage.UpsertMode) error {
	switch mode {
	case storage.Replace:
		records, err := s.readAll()
		if err != nil {
			return fmt.Errorf("Upsert replace: %w", err)
		}

		kept := records[:0]
		for _, rec := range records {
			if rec.ID != record.ID {
				kept = append(kept, rec)
			}
		}
		kept = append(kept, record)

		if err := s.writeAll(kept); err != nil {
			return fmt.Errorf("Upsert replace: %w", err)
		}
		return nil

	default: // storage.InsertOnly
		if err := s.appendRow(record); err != nil {
			return fmt.Errorf("Upsert insert: %w", err)
		}
		return nil
	}
}

// ListAll returns every record in stored (insertion) order. An absent
// or header-only file yields an empty, non-nil slice.
func (s *Store) ListAll() ([]types.TaxRecord, error) {
	records, err := s.readAll()
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// file plumbing
// ─────────────────────────────────────────────────────────────────────────────

// readAll loads the whole table into memory. Missing file == empty
// table: read operations must not fail just because nothing has been
// saved yet.
func (s *Store) readAll() ([]types.TaxRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.TaxRecord{}, nil
		}
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	if len(rows) == 0 {
		return []types.TaxRecord{}, nil
	}

	// rows[0] is the header; everything after it is data.
	records := make([]types.TaxRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := unmarshalRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// appendRow adds one record to the end of the file, writing the header
// first when the file is being created.
func (s *Store) appendRow(record types.TaxRecord) error {
	_, statErr := os.Stat(s.path)
	newTable := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open table for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newTable {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(marshalRow(record)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// writeAll rewrites the entire table: header plus every record, into a
// temp file in the same directory, then renames it over the original.
// Rename within one filesystem is atomic, which is what makes Replace
// safe against readers.
func (s *Store) writeAll(records []types.TaxRecord) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(header)
	for _, rec := range records {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(marshalRow(rec))
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}

	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write temp table: %w", writeErr)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// row codec
// ─────────────────────────────────────────────────────────────────────────────

func marshalRow(rec types.TaxRecord) []string {
	return []string{
		rec.ID,
		padIC(rec.ICNumber),
		rec.Password,
		rec.Income.StringFixed(2),
		rec.IndividualRelief.StringFixed(2),
		rec.SpouseRelief.StringFixed(2),
		rec.ChildRelief.StringFixed(2),
		strconv.Itoa(rec.NumChildren),
		rec.MedicalRelief.StringFixed(2),
		rec.LifestyleRelief.StringFixed(2),
		rec.EducationRelief.StringFixed(2),
		rec.ParentalRelief.StringFixed(2),
		rec.TotalRelief.StringFixed(2),
		rec.ChargeableIncome.StringFixed(2),
		rec.TaxPayable.StringFixed(2),
	}
}

func unmarshalRow(row []string) (types.TaxRecord, error) {
	if len(row) != len(header) {
		return types.TaxRecord{}, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}

	var rec types.TaxRecord
	rec.ID = row[0]
	rec.ICNumber = padIC(row[1])
	rec.Password = row[2]

	numChildren, err := strconv.Atoi(row[7])
	if err != nil {
		return types.TaxRecord{}, fmt.Errorf("num_children: %w", err)
	}
	rec.NumChildren = numChildren

	// Money columns, in header order. Pointers keep the parse loop flat.
	money := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"income", row[3], &rec.Income},
		{"individual_relief", row[4], &rec.IndividualRelief},
		{"spouse_relief", row[5], &rec.SpouseRelief},
		{"child_relief", row[6], &rec.ChildRelief},
		{"medical_relief", row[8], &rec.MedicalRelief},
		{"lifestyle_relief", row[9], &rec.LifestyleRelief},
		{"education_relief", row[10], &rec.EducationRelief},
		{"parental_relief", row[11], &rec.ParentalRelief},
		{"total_relief", row[12], &rec.TotalRelief},
		{"chargeable_income", row[13], &rec.ChargeableIncome},
		{"tax_payable", row[14], &rec.TaxPayable},
	}
	for _, col := range money {
		d, err := decimal.NewFromString(col.raw)
		if err != nil {
			return types.TaxRecord{}, fmt.Errorf("%s: %w", col.name, err)
		}
		*col.dst = d
	}

	return rec, nil
}

// padIC left-pads an IC number with zeros to the fixed 12-character
// width. Values already at full width pass through unchanged.
func padIC(ic string) string {
	if len(ic) >= auth.ICLength {
		return ic
	}
	return strings.Repeat("0", auth.ICLength-len(ic)) + ic
}
