// Package api serves a scraped catalog over HTTP for local queries.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

// Server exposes a read-only catalog API over a finished scrape.
type Server struct {
	records   []*models.CourseRecord
	byCode    map[string]*models.CourseRecord
	bySubject map[string][]*models.CourseRecord
}

func NewServer(records []*models.CourseRecord) *Server {
	s := &Server{
		records:   records,
		byCode:    make(map[string]*models.CourseRecord, len(records)),
		bySubject: make(map[string][]*models.CourseRecord),
	}
	for _, rec := range records {
		s.byCode[strings.ToUpper(rec.Course.Code)] = rec
		subject := strings.ToUpper(rec.Course.Subject)
		s.bySubject[subject] = append(s.bySubject[subject], rec)
	}
	return s
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/courses", s.handleCourses).Methods(http.MethodGet)
	r.HandleFunc("/api/courses/{code}", s.handleCourse).Methods(http.MethodGet)
	r.HandleFunc("/api/subjects", s.handleSubjects).Methods(http.MethodGet)
	r.HandleFunc("/api/subjects/{subject}", s.handleSubjectCourses).Methods(http.MethodGet)
	return r
}

// ListenAndServe runs the API until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Int("courses", len(s.records)).Msg("Serving catalog API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"courses": len(s.records),
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	records := s.records

	if subject := r.URL.Query().Get("subject"); subject != "" {
		records = s.bySubject[strings.ToUpper(subject)]
	}
	if r.URL.Query().Get("open") == "true" {
		open := make([]*models.CourseRecord, 0, len(records))
		for _, rec := range records {
			if rec.Stats.AvailableSeats > 0 {
				open = append(open, rec)
			}
		}
		records = open
	}

	if records == nil {
		records = []*models.CourseRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	rec, ok := s.byCode[code]
	if !ok {
		// Allow "CMPSC-121" in paths as a space substitute
		rec, ok = s.byCode[strings.ReplaceAll(code, "-", " ")]
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "course not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSubjects(w http.ResponseWriter, _ *http.Request) {
	type subjectInfo struct {
		Subject string `json:"subject"`
		Courses int    `json:"courses"`
	}

	subjects := make([]subjectInfo, 0, len(s.bySubject))
	for subject, recs := range s.bySubject {
		subjects = append(subjects, subjectInfo{Subject: subject, Courses: len(recs)})
	}
	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].Subject < subjects[j].Subject
	})
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleSubjectCourses(w http.ResponseWriter, r *http.Request) {
	subject := strings.ToUpper(mux.Vars(r)["subject"])

	records, ok := s.bySubject[subject]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "subject not found"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
