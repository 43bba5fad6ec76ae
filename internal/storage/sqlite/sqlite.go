// Package sqlite provides an alternative SQLite-backed implementation
// of the storage.Storage interface using Go's standard database/sql
// package.
//
// SQLite stores everything in a single file on disk — no network, no
// separate server process, nothing to install beyond the driver. It is
// selected with `storage.driver: sqlite` in the config; the flat-file
// backend remains the default.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/anikitin/studentdb/internal/storage"
	"github.com/anikitin/studentdb/internal/types"
	"github.com/go-playground/validator/v10"

	// Importing the package also registers the "sqlite3" driver with
	// database/sql via its init().
	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete SQLite implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db       *sql.DB
	validate *validator.Validate
}

// New opens the SQLite database at path, creates the students table if
// it does not already exist, and returns a ready-to-use *SQLite.
//
// The identifier column is caller-assigned and UNIQUE, deliberately
// not the primary key: `id INTEGER PRIMARY KEY` would alias the rowid,
// making rowid order equal id order. Keeping the implicit rowid as its
// own column preserves insertion order for listing even when ids
// arrive non-monotonically, and the UNIQUE constraint doubles as the
// duplicate-id check.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent — safe on every startup.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER NOT NULL UNIQUE,
			surname    TEXT    NOT NULL,
			birth_year INTEGER NOT NULL,
			study_year INTEGER NOT NULL,
			gpa        REAL    NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, validate: validator.New()}, nil
}

// CreateStudent validates rec and inserts it. A unique-constraint
// collision on the id is reported as storage.ErrDuplicateID so callers
// see the same error surface as with the flat-file backend.
func (s *SQLite) CreateStudent(rec types.StudentRecord) error {
	if err := s.validate.Struct(rec); err != nil {
		return err
	}

	stmt, err := s.Db.Prepare(
		"INSERT INTO students (id, surname, birth_year, study_year, gpa) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(rec.ID, rec.Surname, rec.BirthYear, rec.StudyYear, rec.GPA)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("CreateStudent: id %d: %w", rec.ID, storage.ErrDuplicateID)
		}
		return fmt.Errorf("CreateStudent: exec: %w", err)
	}

	return nil
}

// GetStudentByID fetches exactly one record matched by primary key.
func (s *SQLite) GetStudentByID(id int64) (types.StudentRecord, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, surname, birth_year, study_year, gpa FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	var rec types.StudentRecord

	err = stmt.QueryRow(id).Scan(
		&rec.ID,
		&rec.Surname,
		&rec.BirthYear,
		&rec.StudyYear,
		&rec.GPA,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.StudentRecord{},
				fmt.Errorf("no student found with id %d: %w", id, storage.ErrStudentNotFound)
		}
		return types.StudentRecord{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return rec, nil
}

// GetStudents returns all records. Ordering by rowid preserves
// insertion order, matching the flat-file backend's file order.
func (s *SQLite) GetStudents() ([]types.StudentRecord, error) {
	stmt, err := s.Db.Prepare(
		"SELECT id, surname, birth_year, study_year, gpa FROM students ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice so the JSON layer renders
	// [] instead of null.
	records := make([]types.StudentRecord, 0)

	for rows.Next() {
		var rec types.StudentRecord

		if err := rows.Scan(
			&rec.ID,
			&rec.Surname,
			&rec.BirthYear,
			&rec.StudyYear,
			&rec.GPA,
		); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return records, nil
}

// Count reports the number of stored records.
func (s *SQLite) Count() (int64, error) {
	var n int64
	if err := s.Db.QueryRow("SELECT COUNT(*) FROM students").Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
