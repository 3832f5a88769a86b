// Package server exposes the grading pipeline over HTTP: one upload
// endpoint and a liveness probe. All pipeline failures map onto the named
// error categories so callers can render an actionable message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/entity"
)

// uploads larger than this are rejected before the gate even sniffs them
const maxUploadBytes = 32 << 20

// Grader is the pipeline surface the server depends on.
type Grader interface {
	GradeImage(ctx context.Context, data []byte, source string) (entity.GradingResult, error)
}

type Server struct {
	grader Grader
	logger *slog.Logger
}

func NewServer(grader Grader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{grader: grader, logger: logger}
}

// Handler returns the routed HTTP handler with request-ID and logging
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/grade", s.handleGrade)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return RequestID(s.logger, RequestLog(mux))
}

// handleGrade accepts a multipart upload ("file" field), runs the full
// pipeline, and returns the grading result as JSON.
func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	logger := common.LoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeInvalidInput, "multipart field 'file' is required", err))
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.Warn("upload close error", "error", cerr)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, common.NewAppError(common.CodeInvalidInput, "read upload", err))
		return
	}

	res, err := s.grader.GradeImage(r.Context(), data, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode error", "error", err)
	}
}

// errorBody is the JSON shape for every failed request.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := common.LoggerFromContext(r.Context())
	status := common.HTTPStatus(err)
	code := common.ErrorCode(err)

	var body errorBody
	body.Error.Code = code
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		body.Error.Message = appErr.Message
	} else {
		body.Error.Message = "request failed"
	}

	logger.Warn("request failed", "status", status, "code", code, "error", err)
	s.writeJSON(w, status, body)
}
