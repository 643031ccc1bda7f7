package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"selection/common"
)

const maxCommandBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// newHTTPHandler exposes the command surface as JSON over HTTP.
func newHTTPHandler(s *server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "SERVING"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			cmd, err := decodeCommand(req)
			if err != nil {
				writeError(w, err)
				return
			}
			cmd.Type = "OpenSession"
			s.serveCommand(w, req, cmd)
		})
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			s.serveCommand(w, req, &common.Command{Session: chi.URLParam(req, "id"), Type: "GetForm"})
		})
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
			s.serveCommand(w, req, &common.Command{Session: chi.URLParam(req, "id"), Type: "CloseSession"})
		})
		r.Post("/{id}/commands", func(w http.ResponseWriter, req *http.Request) {
			cmd, err := decodeCommand(req)
			if err != nil {
				writeError(w, err)
				return
			}
			cmd.Session = chi.URLParam(req, "id")
			if err := common.RequireExists(cmd.Type, common.ErrMsgNoCommandType); err != nil {
				writeError(w, err)
				return
			}
			s.serveCommand(w, req, cmd)
		})
	})
	return r
}

func (s *server) serveCommand(w http.ResponseWriter, req *http.Request, cmd *common.Command) {
	resp, err := s.execute(req.Context(), cmd)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if cmd.Type == "OpenSession" {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// decodeCommand reads a command envelope. An empty body is an empty command.
func decodeCommand(req *http.Request) (*common.Command, error) {
	cmd := &common.Command{}
	err := json.NewDecoder(io.LimitReader(req.Body, maxCommandBytes)).Decode(cmd)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, common.NewInvalidArgumentf("invalid request body: %v", err)
	}
	return cmd, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Code: "INTERNAL"}
	var cmdErr *common.CommandError
	if errors.As(err, &cmdErr) {
		body.Code = cmdErr.Code.String()
	}
	writeJSON(w, common.HTTPStatus(err), body)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		logger.Debug("http request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(req.Context())),
		)
	})
}
