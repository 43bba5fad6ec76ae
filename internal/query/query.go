// Package query implements stateless predicate-based search over a
// snapshot of student records.
//
// The engine itself is predicate-agnostic: any boolean function of a
// record is accepted. The constructors below cover the predicate
// shapes the surrounding system actually uses (exact matches on each
// field plus the GPA threshold), so callers rarely write predicates
// by hand.
package query

import "github.com/anikitin/studentdb/internal/types"

// Predicate is a boolean test over a single record.
type Predicate func(types.StudentRecord) bool

// Search evaluates pred against every record in order and returns the
// ordered sub-sequence of matches. An empty result is a valid outcome,
// not an error; the returned slice is never nil.
func Search(records []types.StudentRecord, pred Predicate) []types.StudentRecord {
	matches := make([]types.StudentRecord, 0)
	for _, rec := range records {
		if pred(rec) {
			matches = append(matches, rec)
		}
	}
	return matches
}

// ByID matches the record with the given identifier.
func ByID(id int64) Predicate {
	return func(rec types.StudentRecord) bool { return rec.ID == id }
}

// BySurname matches records with exactly the given surname.
// Comparison is case-sensitive.
func BySurname(surname string) Predicate {
	return func(rec types.StudentRecord) bool { return rec.Surname == surname }
}

// ByBirthYear matches records born in the given year.
func ByBirthYear(year int) Predicate {
	return func(rec types.StudentRecord) bool { return rec.BirthYear == year }
}

// ByStudyYear matches records in the given study year.
func ByStudyYear(year int) Predicate {
	return func(rec types.StudentRecord) bool { return rec.StudyYear == year }
}

// ByMinGPA matches records with GPA greater than or equal to min.
func ByMinGPA(min float64) Predicate {
	return func(rec types.StudentRecord) bool { return rec.GPA >= min }
}
