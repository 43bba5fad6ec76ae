package student_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anikitin/studentdb/internal/http/handlers/student"
	"github.com/anikitin/studentdb/internal/storage/flatfile"
	"github.com/anikitin/studentdb/internal/types"
	"github.com/anikitin/studentdb/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter builds the same route table as cmd/studentdb over a
// seeded flat-file store in a temp dir.
func newTestRouter(t *testing.T, reportPath string) *http.ServeMux {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := flatfile.New(filepath.Join(t.TempDir(), "db.txt"), log)
	require.NoError(t, err)
	require.NoError(t, st.SeedDefaults())

	router := http.NewServeMux()
	router.HandleFunc("POST /api/students", student.New(st))
	router.HandleFunc("GET /api/students", student.GetList(st))
	router.HandleFunc("GET /api/students/search", student.Search(st))
	router.HandleFunc("GET /api/students/report", student.Report(st, reportPath))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(st))

	return router
}

func do(t *testing.T, router *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	t.Run("creates a record", func(t *testing.T) {
		router := newTestRouter(t, "")

		rec := do(t, router, http.MethodPost, "/api/students",
			`{"id":106,"surname":"Orlov","birth_year":2005,"study_year":1,"gpa":4.0}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created map[string]int64
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, int64(106), created["id"])

		got := do(t, router, http.MethodGet, "/api/students/106", "")
		require.Equal(t, http.StatusOK, got.Code)

		var fetched types.StudentRecord
		require.NoError(t, json.Unmarshal(got.Body.Bytes(), &fetched))
		assert.Equal(t, "Orlov", fetched.Surname)
	})

	t.Run("duplicate id yields 409", func(t *testing.T) {
		router := newTestRouter(t, "")

		rec := do(t, router, http.MethodPost, "/api/students",
			`{"id":101,"surname":"Dup","birth_year":2000,"study_year":1,"gpa":3.0}`)
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp response.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, response.StatusError, resp.Status)

		// Store unchanged.
		list := do(t, router, http.MethodGet, "/api/students", "")
		var records []types.StudentRecord
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &records))
		assert.Len(t, records, 5)
	})

	t.Run("validation failure yields 400", func(t *testing.T) {
		router := newTestRouter(t, "")

		rec := do(t, router, http.MethodPost, "/api/students",
			`{"id":107,"surname":"Volkov","birth_year":2000,"study_year":1,"gpa":5.5}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp response.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "GPA")
	})

	t.Run("empty body yields 400", func(t *testing.T) {
		router := newTestRouter(t, "")

		rec := do(t, router, http.MethodPost, "/api/students", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetByID(t *testing.T) {
	router := newTestRouter(t, "")

	t.Run("found", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/101", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got types.StudentRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Ivanov", got.Surname)
	})

	t.Run("missing yields 404", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-integer id yields 400", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetList(t *testing.T) {
	router := newTestRouter(t, "")

	rec := do(t, router, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []types.StudentRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 5)
	assert.Equal(t, int64(101), records[0].ID)
	assert.Equal(t, int64(105), records[4].ID)
}

func TestSearch(t *testing.T) {
	router := newTestRouter(t, "")

	t.Run("study year 1", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/search?field=study_year&value=1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var records []types.StudentRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 2)
		assert.Equal(t, int64(101), records[0].ID)
		assert.Equal(t, int64(103), records[1].ID)
	})

	t.Run("min gpa threshold", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/search?field=min_gpa&value=4.1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var records []types.StudentRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		assert.Len(t, records, 3)
	})

	t.Run("surname match is case-sensitive", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/search?field=surname&value=ivanov", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("no matches returns empty array not null", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/search?field=id&value=999", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("unknown field yields 400", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/search?field=shoe_size&value=42", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unparseable value yields 400", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/students/search?field=id&value=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReport(t *testing.T) {
	t.Run("renders the table", func(t *testing.T) {
		router := newTestRouter(t, "")

		rec := do(t, router, http.MethodGet, "/api/students/report?title=ALL+STUDENTS", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

		out := rec.Body.String()
		assert.Contains(t, out, "=== ALL STUDENTS ===")
		assert.Contains(t, out, "Ivanov")
		assert.Contains(t, out, "Total records: 5")
	})

	t.Run("appends a copy to the report file", func(t *testing.T) {
		reportPath := filepath.Join(t.TempDir(), "output_students.txt")
		router := newTestRouter(t, reportPath)

		first := do(t, router, http.MethodGet, "/api/students/report", "")
		require.Equal(t, http.StatusOK, first.Code)
		second := do(t, router, http.MethodGet, "/api/students/report", "")
		require.Equal(t, http.StatusOK, second.Code)

		data, err := os.ReadFile(reportPath)
		require.NoError(t, err)

		// Two renders, appended: the file holds both tables and matches
		// what the clients received.
		assert.Equal(t, first.Body.String()+second.Body.String(), string(data))
		assert.Equal(t, 2, strings.Count(string(data), "Total records: 5"))
	})

	t.Run("unwritable report file leaves the response intact", func(t *testing.T) {
		// The parent directory does not exist, so the file sink cannot
		// be opened. The client must still receive the whole table.
		reportPath := filepath.Join(t.TempDir(), "missing-dir", "output_students.txt")
		router := newTestRouter(t, reportPath)

		rec := do(t, router, http.MethodGet, "/api/students/report", "")
		require.Equal(t, http.StatusOK, rec.Code)

		out := rec.Body.String()
		assert.Contains(t, out, "=== ALL STUDENTS ===")
		assert.Contains(t, out, "Total records: 5")

		_, err := os.Stat(reportPath)
		assert.True(t, os.IsNotExist(err))
	})
}
