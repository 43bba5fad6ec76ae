// Package flatfile provides the canonical flat-text-file implementation
// of the storage.Storage interface.
//
// PERSISTED FORMAT
// ────────────────
// One record per line, five whitespace-separated fields:
//
//	<id> <surname> <birthYear> <studyYear> <gpa>
//
// GPA is written with exactly one decimal digit and parsed back as a
// general real number. Blank lines are ignored. There is no header, no
// escaping — surnames containing whitespace are not supported by this
// format (a known limitation of the file layout, not a feature).
//
// The store keeps every record in memory in insertion order (file order
// = display order) and rewrites the whole file after each successful
// append. A single in-process owner is assumed; there is no locking.
package flatfile

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/anikitin/studentdb/internal/storage"
	"github.com/anikitin/studentdb/internal/types"
	"github.com/go-playground/validator/v10"
)

// fieldsPerRecord is the fixed shape of one persisted line.
const fieldsPerRecord = 5

// Store is the concrete flat-file implementation of storage.Storage.
// Invariant: every record in records is valid and ids are unique.
type Store struct {
	path     string
	log      *slog.Logger
	validate *validator.Validate
	records  []types.StudentRecord
}

// New opens the store backed by the file at path and loads its records.
//
// A missing file is not an error — the store simply starts empty and
// the caller decides whether to seed defaults. Lines that cannot be
// decoded into the five expected fields are skipped silently (Debug
// log only); lines that decode but fail validation are skipped with a
// Warn diagnostic. Load finishes with a summary log carrying the
// loaded and skipped counts, so corrupt files are observable without
// making startup brittle.
func New(path string, log *slog.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		log:      log,
		validate: validator.New(),
		records:  make([]types.StudentRecord, 0),
	}

	if err := s.load(); err != nil {
		return nil, fmt.Errorf("flatfile.New: %w", err)
	}

	return s, nil
}

// load reads the persisted file line by line into memory.
func (s *Store) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Info("store file not found, starting empty",
				slog.String("path", s.path))
			return nil
		}
		return fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	var skipped int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := parseRecord(line)
		if err != nil {
			// Undecodable line: the record is simply omitted.
			s.log.Debug("skipping unparseable line",
				slog.String("line", line),
				slog.String("error", err.Error()))
			skipped++
			continue
		}

		if err := s.validate.Struct(rec); err != nil {
			// Decoded but violates a field constraint. Corrupt
			// persisted data is not fatal to startup.
			s.log.Warn("skipping invalid record",
				slog.Int64("id", rec.ID),
				slog.String("error", err.Error()))
			skipped++
			continue
		}

		if s.findIndex(rec.ID) >= 0 {
			s.log.Warn("skipping record with duplicate id",
				slog.Int64("id", rec.ID))
			skipped++
			continue
		}

		s.records = append(s.records, rec)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read store file: %w", err)
	}

	s.log.Info("store loaded",
		slog.String("path", s.path),
		slog.Int("loaded", len(s.records)),
		slog.Int("skipped", skipped))

	return nil
}

// parseRecord decodes one persisted line into a StudentRecord.
// Fields are separated by arbitrary whitespace.
func parseRecord(line string) (types.StudentRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != fieldsPerRecord {
		return types.StudentRecord{},
			fmt.Errorf("expected %d fields, got %d", fieldsPerRecord, len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("id: %w", err)
	}

	birthYear, err := strconv.Atoi(fields[2])
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("birth year: %w", err)
	}

	studyYear, err := strconv.Atoi(fields[3])
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("study year: %w", err)
	}

	gpa, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("gpa: %w", err)
	}

	return types.StudentRecord{
		ID:        id,
		Surname:   fields[1],
		BirthYear: birthYear,
		StudyYear: studyYear,
		GPA:       gpa,
	}, nil
}

// SeedDefaults populates an empty store with the sample records and
// persists them. Used at startup when no persisted data was found.
func (s *Store) SeedDefaults() error {
	if len(s.records) != 0 {
		return fmt.Errorf("SeedDefaults: store already holds %d records", len(s.records))
	}

	s.records = []types.StudentRecord{
		{ID: 101, Surname: "Ivanov", BirthYear: 2005, StudyYear: 1, GPA: 4.5},
		{ID: 102, Surname: "Petrov", BirthYear: 2004, StudyYear: 2, GPA: 3.8},
		{ID: 103, Surname: "Sidorov", BirthYear: 2006, StudyYear: 1, GPA: 4.2},
		{ID: 104, Surname: "Sokolov", BirthYear: 2003, StudyYear: 3, GPA: 3.9},
		{ID: 105, Surname: "Kozlov", BirthYear: 2004, StudyYear: 2, GPA: 4.1},
	}

	if err := s.persist(); err != nil {
		return fmt.Errorf("SeedDefaults: %w", err)
	}

	return nil
}

// CreateStudent validates rec, rejects identifier collisions, appends
// the record, and immediately rewrites the whole persisted file.
//
// When the rewrite fails the record stays in memory and the storage
// error is returned: the in-memory store remains valid, and the next
// successful append reconverges the file with memory.
func (s *Store) CreateStudent(rec types.StudentRecord) error {
	if err := s.validate.Struct(rec); err != nil {
		return err
	}

	if s.findIndex(rec.ID) >= 0 {
		return fmt.Errorf("CreateStudent: id %d: %w", rec.ID, storage.ErrDuplicateID)
	}

	s.records = append(s.records, rec)

	if err := s.persist(); err != nil {
		return fmt.Errorf("CreateStudent: %w", err)
	}

	return nil
}

// persist rewrites the whole file from the in-memory records.
// Not incremental: every append pays a full rewrite, which is fine at
// this scale and keeps the file trivially consistent.
func (s *Store) persist() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("open store file for writing: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range s.records {
		// GPA rendered with exactly one decimal digit.
		fmt.Fprintf(w, "%d %s %d %d %.1f\n",
			rec.ID, rec.Surname, rec.BirthYear, rec.StudyYear, rec.GPA)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write store file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}

	return nil
}

// GetStudentByID returns the unique record with the given identifier
// by linear scan, or ErrStudentNotFound.
func (s *Store) GetStudentByID(id int64) (types.StudentRecord, error) {
	if i := s.findIndex(id); i >= 0 {
		return s.records[i], nil
	}
	return types.StudentRecord{},
		fmt.Errorf("no student found with id %d: %w", id, storage.ErrStudentNotFound)
}

// GetStudents returns a snapshot copy of every record in insertion
// order. The copy keeps callers from aliasing the store's backing
// slice.
func (s *Store) GetStudents() ([]types.StudentRecord, error) {
	out := make([]types.StudentRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Count reports the current record count.
func (s *Store) Count() (int64, error) {
	return int64(len(s.records)), nil
}

// findIndex returns the position of the record with the given id, or
// -1 when absent.
func (s *Store) findIndex(id int64) int {
	for i, rec := range s.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
