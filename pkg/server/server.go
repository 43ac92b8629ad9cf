// Package server exposes patient lookup and conversion over HTTP, standing
// in for the desktop form
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jpfielding/img2pacs/pkg/archive"
	"github.com/jpfielding/img2pacs/pkg/convert"
	"github.com/jpfielding/img2pacs/pkg/metrics"
)

// Converter runs one conversion and reports its outcome
type Converter interface {
	Convert(ctx context.Context, req convert.Request) convert.Report
}

// Server wires the HTTP routes to a finder and a converter
type Server struct {
	Finder         archive.PatientFinder
	Converter      Converter
	Metrics        *metrics.Metrics // /metrics is not routed when nil
	Log            *slog.Logger
	AllowedOrigins []string // CORS is off when empty
}

// PatientResponse is the body of a patient lookup
type PatientResponse struct {
	PatientID   string `json:"patient_id"`
	Status      string `json:"status"`
	PatientName string `json:"patient_name"`
	Detail      string `json:"detail,omitempty"`
}

// ConversionRequest is the body of a conversion, one field per form input
type ConversionRequest struct {
	ImagePath        string `json:"image_path"`
	PatientName      string `json:"patient_name"`
	PatientID        string `json:"patient_id"`
	StudyDescription string `json:"study_description"`
	AccessionNumber  string `json:"accession_number"`
	StudyID          string `json:"study_id"`
}

// ConversionResponse mirrors convert.Report
type ConversionResponse struct {
	OK         bool   `json:"ok"`
	Stage      string `json:"stage,omitempty"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
	ObjectPath string `json:"object_path,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recovery)
	r.Use(s.requestLog)

	// without configured origins only same-origin callers get through;
	// cors.Options treats an empty list as "*"
	if len(s.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Content-Length", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.health)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/patients/{id}", s.lookupPatient)
		// a JSON content type forces a CORS preflight on cross-site posts
		r.With(chimiddleware.AllowContentType("application/json")).Post("/conversions", s.createConversion)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) lookupPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	outcome, err := s.Finder.FindPatient(ctx, id).Wait(ctx)
	if err != nil {
		s.logger().WarnContext(ctx, "patient lookup abandoned", "patient_id", id, "error", err)
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
		return
	}

	status := http.StatusOK
	switch outcome.Status {
	case archive.NotFound:
		status = http.StatusNotFound
	case archive.QueryFailed:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, PatientResponse{
		PatientID:   id,
		Status:      outcome.Status.String(),
		PatientName: outcome.DisplayName(),
		Detail:      outcome.Detail,
	})
}

func (s *Server) createConversion(w http.ResponseWriter, r *http.Request) {
	var body ConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	report := s.Converter.Convert(r.Context(), convert.Request{
		ImagePath: body.ImagePath,
		PatientIdentity: convert.PatientIdentity{
			PatientID:   body.PatientID,
			PatientName: body.PatientName,
		},
		StudyContext: convert.StudyContext{
			StudyDescription: body.StudyDescription,
			AccessionNumber:  body.AccessionNumber,
			StudyID:          body.StudyID,
		},
	})

	resp := ConversionResponse{
		OK:         report.OK,
		Message:    report.Message,
		ObjectPath: report.ObjectPath,
	}
	if report.State == convert.Reporting {
		resp.Stage = report.Stage.String()
	}
	if report.Err != nil {
		resp.Error = report.Err.Error()
	}
	writeJSON(w, reportStatus(report), resp)
}

func reportStatus(report convert.Report) int {
	switch {
	case report.OK:
		return http.StatusOK
	case errors.Is(report.Err, convert.ErrBusy):
		return http.StatusConflict
	case errors.Is(report.Err, convert.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(report.Err, convert.ErrBuild):
		return http.StatusUnprocessableEntity
	case errors.Is(report.Err, convert.ErrTransmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logger() *slog.Logger {
	if s.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Log
}
