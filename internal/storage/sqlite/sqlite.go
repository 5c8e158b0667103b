// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY A SECOND BACKEND?
// ─────────────────────
// The CSV table is the system's native format, but its Replace upsert
// rewrites the whole file; an embedded database turns that into a real
// keyed write. SQLite stores everything in a single file on disk with
// no server process, so it slots into the same "one file next to the
// binary" deployment as the CSV store.
//
// Every money column is stored as TEXT holding the decimal's canonical
// 2-dp string. REAL would reintroduce the float drift the decimals
// exist to avoid, and ic_number as TEXT keeps its leading zeros.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirulhm/tax-api/internal/storage"
	"github.com/amirulhm/tax-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the embedded-database implementation of storage.Storage.
// It holds a *sql.DB, the connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// New opens (or creates) the SQLite database at path and ensures the
// tax_records table exists.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tax_records (
			id                TEXT PRIMARY KEY,
			ic_number         TEXT    NOT NULL,
			password          TEXT    NOT NULL,
			income            TEXT    NOT NULL,
			individual_relief TEXT    NOT NULL,
			spouse_relief     TEXT    NOT NULL,
			child_relief      TEXT    NOT NULL,
			num_children      INTEGER NOT NULL,
			medical_relief    TEXT    NOT NULL,
			lifestyle_relief  TEXT    NOT NULL,
			education_relief  TEXT    NOT NULL,
			parental_relief   TEXT    NOT NULL,
			total_relief      TEXT    NOT NULL,
			chargeable_income TEXT    NOT NULL,
			tax_payable       TEXT    NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Exists reports whether id is present and returns its stored IC
// number on a hit.
func (s *SQLite) Exists(id string) (bool, string, error) {
	var ic string
	err := s.Db.QueryRow(
		"SELECT ic_number FROM tax_records WHERE id = ? LIMIT 1", id,
	).Scan(&ic)
	if err == sql.ErrNoRows {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("Exists: %w", err)
	}
	return true, ic, nil
}

// GetByID fetches exactly one record by its primary key, or returns
// storage.ErrNotFound.
func (s *SQLite) GetByID(id string) (types.TaxRecord, error) {
	row := s.Db.QueryRow(selectColumns+" WHERE id = ? LIMIT 1", id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return types.TaxRecord{}, fmt.Errorf("GetByID %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.TaxRecord{}, fmt.Errorf("GetByID: %w", err)
	}
	return rec, nil
}

// Upsert writes record according to mode. Replace deletes any row with
// the same key first; both paths then insert, inside one transaction so
// a failure cannot leave the record half-replaced.
func (s *SQLite) Upsert(record types.TaxRecord, mode storage.UpsertMode) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("Upsert: begin: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	if mode == storage.Replace {
		if _, err := tx.Exec("DELETE FROM tax_records WHERE id = ?", record.ID); err != nil {
			return fmt.Errorf("Upsert: delete old row: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO tax_records (
			id, ic_number, password, income,
			individual_relief, spouse_relief, child_relief, num_children,
			medical_relief, lifestyle_relief, education_relief,
			parental_relief, total_relief, chargeable_income, tax_payable
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ICNumber,
		record.Password,
		record.Income.StringFixed(2),
		record.IndividualRelief.StringFixed(2),
		record.SpouseRelief.StringFixed(2),
		record.ChildRelief.StringFixed(2),
		record.NumChildren,
		record.MedicalRelief.StringFixed(2),
		record.LifestyleRelief.StringFixed(2),
		record.EducationRelief.StringFixed(2),
		record.ParentalRelief.StringFixed(2),
		record.TotalRelief.StringFixed(2),
		record.ChargeableIncome.StringFixed(2),
		record.TaxPayable.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("Upsert: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Upsert: commit: %w", err)
	}
	return nil
}

// ListAll returns every record. rowid order is insertion order for a
// table that never deletes except during Replace, matching the CSV
// store's stored-order guarantee.
func (s *SQLite) ListAll() ([]types.TaxRecord, error) {
	rows, err := s.Db.Query(selectColumns + " ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("ListAll: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice: an empty table must list
	// as [], not null.
	records := make([]types.TaxRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAll: scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll: rows iteration: %w", err)
	}
	return records, nil
}

// Explicitly list columns — never SELECT * — so that scanRecord's field
// order cannot drift from the query.
const selectColumns = `SELECT
	id, ic_number, password, income,
	individual_relief, spouse_relief, child_relief, num_children,
	medical_relief, lifestyle_relief, education_relief,
	parental_relief, total_relief, chargeable_income, tax_payable
	FROM tax_records`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.TaxRecord, error) {
	var rec types.TaxRecord
	var income, individual, spouse, child string
	var medical, lifestyle, education, parental string
	var total, chargeable, payable string

	if err := sc.Scan(
		&rec.ID, &rec.ICNumber, &rec.Password, &income,
		&individual, &spouse, &child, &rec.NumChildren,
		&medical, &lifestyle, &education,
		&parental, &total, &chargeable, &payable,
	); err != nil {
		return types.TaxRecord{}, err
	}

	cols := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"income", income, &rec.Income},
		{"individual_relief", individual, &rec.IndividualRelief},
		{"spouse_relief", spouse, &rec.SpouseRelief},
		{"child_relief", child, &rec.ChildRelief},
		{"medical_relief", medical, &rec.MedicalRelief},
		{"lifestyle_relief", lifestyle, &rec.LifestyleRelief},
		{"education_relief", education, &rec.EducationRelief},
		{"parental_relief", parental, &rec.ParentalRelief},
		{"total_relief", total, &rec.TotalRelief},
		{"chargeable_income", chargeable, &rec.ChargeableIncome},
		{"tax_payable", payable, &rec.TaxPayable},
	}
	for _, col := range cols {
		d, err := decimal.NewFromString(col.raw)
		if err != nil {
			return types.TaxRecord{}, fmt.Errorf("%s: %w", col.name, err)
		}
		*col.dst = d
	}
	return rec, nil
}
