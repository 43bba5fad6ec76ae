package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/anikitin/studentdb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	records := []types.StudentRecord{
		{ID: 101, Surname: "Ivanov", BirthYear: 2005, StudyYear: 1, GPA: 4.5},
		{ID: 103, Surname: "Sidorov", BirthYear: 2006, StudyYear: 1, GPA: 4.2},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "SEARCH RESULTS: Study Year = 1", records))

	out := buf.String()

	assert.Contains(t, out, "=== SEARCH RESULTS: Study Year = 1 ===")
	assert.Contains(t, out, strings.Repeat("=", 60))
	assert.Contains(t, out, "Total records: 2")

	// Fixed-width columns, GPA with two decimals.
	assert.Contains(t, out, "   101 |          Ivanov |        2005 |     1 |   4.50")
	assert.Contains(t, out, "   103 |         Sidorov |        2006 |     1 |   4.20")

	// Rows come out in input order.
	assert.Less(t, strings.Index(out, "Ivanov"), strings.Index(out, "Sidorov"))
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "ALL STUDENTS", nil))

	assert.Equal(t, "No records found matching criteria.\n", buf.String())
	assert.NotContains(t, buf.String(), "Total records")
}
