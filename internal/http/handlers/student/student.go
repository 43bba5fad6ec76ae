// Package student contains all HTTP handlers for the student-record
// resource.
//
// Handlers are built with the closure / factory pattern: each exported
// function accepts its dependencies (the storage backend, the report
// file path) and returns a func with the exact signature the router
// needs. The factory runs once at startup; the returned handler runs
// on every request and closes over the dependencies.
//
// Route table (registered in cmd/studentdb):
//
//	POST /api/students           → New        (append a record)
//	GET  /api/students           → GetList    (full snapshot)
//	GET  /api/students/{id}      → GetByID    (one record)
//	GET  /api/students/search    → Search     (predicate query)
//	GET  /api/students/report    → Report     (fixed-width text table)
package student

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/anikitin/studentdb/internal/query"
	"github.com/anikitin/studentdb/internal/report"
	"github.com/anikitin/studentdb/internal/storage"
	"github.com/anikitin/studentdb/internal/types"
	"github.com/anikitin/studentdb/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// New handles POST /api/students.
// Appends a record decoded from the JSON request body.
//
// Responses:
//
//	201 Created  — { "id": N }
//	400 Bad Request — empty body, malformed JSON, or validation failure
//	409 Conflict    — a record with this id already exists
//	500 Internal    — the store could not be persisted
//
// Validation and the duplicate-id check both live in the store; the
// handler only translates the returned errors into status codes.
func New(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student record")

		var rec types.StudentRecord

		err := json.NewDecoder(r.Body).Decode(&rec)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := st.CreateStudent(rec); err != nil {
			var validateErrs validator.ValidationErrors
			switch {
			case errors.As(err, &validateErrs):
				response.WriteJSON(w, http.StatusBadRequest,
					response.ValidationError(validateErrs))
			case errors.Is(err, storage.ErrDuplicateID):
				response.WriteJSON(w, http.StatusConflict,
					response.GeneralError(err))
			default:
				slog.Error("error creating student record",
					slog.Int64("id", rec.ID),
					slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(err))
			}
			return
		}

		slog.Info("student record created", slog.Int64("id", rec.ID))

		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": rec.ID})
	}
}

// GetByID handles GET /api/students/{id}.
//
// Responses:
//
//	200 OK          — the matching record
//	400 Bad Request — id is not a valid integer
//	404 Not Found   — no record with this id
//	500 Internal    — storage error
func GetByID(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student record", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		rec, err := st.GetStudentByID(intID)
		if err != nil {
			if errors.Is(err, storage.ErrStudentNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.GeneralError(err))
				return
			}
			slog.Error("error getting student record",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, rec)
	}
}

// GetList handles GET /api/students.
// Returns every record in insertion order, as a JSON array.
// Returns an empty array [] (not null) when the store is empty.
func GetList(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all student records")

		records, err := st.GetStudents()
		if err != nil {
			slog.Error("error getting student records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// Search handles GET /api/students/search?field=<f>&value=<v>.
// Builds the predicate for the requested field, runs it over the
// current store snapshot, and returns the ordered matches.
//
// Supported fields: id, surname, birth_year, study_year, min_gpa
// (GPA >= value). Surname matching is case-sensitive.
//
// Responses:
//
//	200 OK          — JSON array of matches (possibly empty)
//	400 Bad Request — unknown field or unparseable value
//	500 Internal    — storage error
func Search(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		field := r.URL.Query().Get("field")
		value := r.URL.Query().Get("value")
		slog.Info("searching student records",
			slog.String("field", field),
			slog.String("value", value))

		pred, err := predicateFor(field, value)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		records, err := st.GetStudents()
		if err != nil {
			slog.Error("error getting student records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, query.Search(records, pred))
	}
}

// predicateFor maps a field/value query pair onto the matching query
// predicate.
func predicateFor(field, value string) (query.Predicate, error) {
	switch field {
	case "id":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field id: %q", value)
		}
		return query.ByID(id), nil
	case "surname":
		if value == "" {
			return nil, errors.New("value for field surname must not be empty")
		}
		return query.BySurname(value), nil
	case "birth_year":
		year, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field birth_year: %q", value)
		}
		return query.ByBirthYear(year), nil
	case "study_year":
		year, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field study_year: %q", value)
		}
		return query.ByStudyYear(year), nil
	case "min_gpa":
		min, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for field min_gpa: %q", value)
		}
		return query.ByMinGPA(min), nil
	default:
		return nil, fmt.Errorf("unknown search field: %q", field)
	}
}

// Report handles GET /api/students/report?title=<t>.
// Renders the full store as a fixed-width text table. When reportPath
// is non-empty the same table is appended to that file, so the client
// and the report file receive identical bytes.
//
// The table is rendered into a buffer once and each sink is written
// independently: the file sink is best-effort, so a failure to open or
// write the report file never truncates the client's copy — it is
// logged and the response goes out whole.
func Report(st storage.Storage, reportPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")
		if title == "" {
			title = "ALL STUDENTS"
		}
		slog.Info("rendering student report", slog.String("title", title))

		records, err := st.GetStudents()
		if err != nil {
			slog.Error("error getting student records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		var buf bytes.Buffer
		if err := report.Render(&buf, title, records); err != nil {
			slog.Error("error rendering report", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := w.Write(buf.Bytes()); err != nil {
			// Headers are already out; all we can do is log.
			slog.Error("error writing report response", slog.String("error", err.Error()))
		}

		if reportPath != "" {
			if err := appendReportFile(reportPath, buf.Bytes()); err != nil {
				slog.Warn("cannot write report file",
					slog.String("path", reportPath),
					slog.String("error", err.Error()))
			}
		}
	}
}

// appendReportFile appends one rendered table to the report file.
func appendReportFile(path string, table []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(table); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
