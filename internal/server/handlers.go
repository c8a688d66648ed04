package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/claude/liftlog/internal/app"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/go-chi/chi/v5"
)

var errNoFrontend = errors.New("frontend not configured")

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"number": app.FormatNumber,
	"add":    func(a, b int) int { return a + b },
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.pages == nil {
		s.fail(w, r, errNoFrontend)
		return
	}
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "index.html", s.app.Page()); err != nil {
		s.fail(w, r, fmt.Errorf("rendering page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// action adapts a controller action that cannot fail.
func (s *Server) action(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn()
		redirectHome(w, r)
	}
}

func (s *Server) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	if err := s.app.AddWeek(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleSelectWeek(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week ID"})
		return
	}
	if err := s.app.SelectWeek(id); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleEditWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	if err := s.app.EditWorkout(id); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

// handleEditor binds the submitted editor form to the buffer, then runs the
// named action. Exercise and set indices come from the ex and set query
// parameters.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "cancel" {
		s.app.Cancel()
		redirectHome(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form: " + err.Error()})
		return
	}
	if err := s.app.Bind(editorFields(r.PostForm)); err != nil {
		s.fail(w, r, err)
		return
	}

	ex, set := queryIndex(r, "ex"), queryIndex(r, "set")
	var err error
	switch action {
	case "update":
	case "template":
		err = s.app.ApplyTemplate(r.PostFormValue("template"))
	case "exercise-add":
		err = s.app.AddExercise()
	case "exercise-remove":
		err = s.app.RemoveExercise(ex)
	case "set-add":
		err = s.app.AddSet(ex)
	case "set-remove":
		err = s.app.RemoveSet(ex, set)
	case "chart-toggle":
		err = s.app.ToggleOneRepMaxChart(ex)
	case "save":
		err = s.app.SaveWorkout(r.Context())
	case "save-template":
		err = s.app.SaveAsTemplate(r.Context(), r.PostFormValue("template_name"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown editor action: " + action})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleLogWeight(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form: " + err.Error()})
		return
	}
	if _, err := s.app.LogWeight(r.Context(), r.PostFormValue("date"), r.PostFormValue("weight")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleOpenDay(w http.ResponseWriter, r *http.Request) {
	if err := s.app.OpenDay(chi.URLParam(r, "date")); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.View())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	week := r.URL.Query().Get("week")
	if week == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week parameter required"})
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	result, err := s.alpha.Ingest(r.Context(), r.Body, week, dryRun)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.metrics != nil && !dryRun {
		s.metrics.CounterImportedWorkouts.Add(float64(result.WorkoutsInserted))
	}
	writeJSON(w, http.StatusOK, result)
}

// fail maps an error onto a status code and writes it as JSON. Only
// unexpected failures are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrWorkoutNotFound),
		errors.Is(err, app.ErrWeekNotFound),
		errors.Is(err, alpha.ErrUnknownWeek):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrNoEditor),
		errors.Is(err, app.ErrIndexOutOfRange),
		errors.Is(err, app.ErrUnknownField),
		errors.Is(err, app.ErrNotNewWorkout),
		errors.Is(err, app.ErrInvalidDate),
		errors.Is(err, alpha.ErrNoSessions):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", requestIDFromContext(r.Context()),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// editorFields reads title, date, exN.name and exN.setM.{weight,reps}.
// Exercises and sets are read in index order until the first gap.
func editorFields(form url.Values) app.EditorFields {
	f := app.EditorFields{Title: form.Get("title"), Date: form.Get("date")}
	for i := 0; ; i++ {
		prefix := "ex" + strconv.Itoa(i)
		if _, ok := form[prefix+".name"]; !ok {
			break
		}
		ex := app.ExerciseFields{Name: form.Get(prefix + ".name")}
		for j := 0; ; j++ {
			setPrefix := prefix + ".set" + strconv.Itoa(j)
			if _, ok := form[setPrefix+".weight"]; !ok {
				break
			}
			ex.Sets = append(ex.Sets, app.SetFields{
				Weight: form.Get(setPrefix + ".weight"),
				Reps:   form.Get(setPrefix + ".reps"),
			})
		}
		f.Exercises = append(f.Exercises, ex)
	}
	return f
}

// queryIndex returns -1 for a missing or malformed index, which the
// controller rejects as out of range.
func queryIndex(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return -1
	}
	return n
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
