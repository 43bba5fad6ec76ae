// Package report renders an ordered sequence of student records as a
// fixed-width text table with a title banner and a trailing total
// count.
//
// Presentation is deliberately decoupled from search: the caller runs
// a query, picks a title, and hands the matches here together with any
// io.Writer. Fan-out (console plus report file, for instance) is the
// caller's business — compose the sinks with io.MultiWriter and pass
// the result in.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/anikitin/studentdb/internal/types"
)

const bannerWidth = 60

// Render writes the records as a formatted table.
//
// Layout:
//
//	============================================================
//	=== <TITLE> ===
//	============================================================
//	    ID |         Surname |  Birth Year |  Year |    GPA
//	------------------------------------------------------------
//	   101 |          Ivanov |        2005 |     1 |   4.50
//	============================================================
//	Total records: 1
//
// An empty record set renders a short "no records" note instead of an
// empty table.
func Render(w io.Writer, title string, records []types.StudentRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found matching criteria.")
		return err
	}

	banner := strings.Repeat("=", bannerWidth)

	if _, err := fmt.Fprintf(w, "\n%s\n=== %s ===\n%s\n", banner, title, banner); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%6s | %15s | %11s | %5s | %6s\n",
		"ID", "Surname", "Birth Year", "Year", "GPA"); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("-", bannerWidth)); err != nil {
		return err
	}

	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "%6d | %15s | %11d | %5d | %6.2f\n",
			rec.ID, rec.Surname, rec.BirthYear, rec.StudyYear, rec.GPA); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s\nTotal records: %d\n", banner, len(records)); err != nil {
		return err
	}

	return nil
}
