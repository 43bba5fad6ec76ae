// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and the query engine can all import types without
// depending on each other.
package types

// StudentRecord is one student's academic data tuple.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (lowercase names match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. A record is valid iff every rule holds at once; invalid
//     records are rejected at the storage boundary and never enter the
//     store.
type StudentRecord struct {
	ID        int64   `json:"id"         validate:"required,gt=0"`
	Surname   string  `json:"surname"    validate:"required"`
	BirthYear int     `json:"birth_year" validate:"gte=1950,lte=2015"`
	StudyYear int     `json:"study_year" validate:"gte=1,lte=4"`
	GPA       float64 `json:"gpa"        validate:"gte=0,lte=5"`
}
