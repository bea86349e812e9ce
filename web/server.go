// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package web serves the case log form.
package web

//go:generate qtc -file=page.qtpl

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/UNO-SOFT/sheetlog"
)

// Choices are the options of the select and checkbox controls.
type Choices struct {
	Sexes        []string
	Attendants   []string
	Roles        []string
	SurgeryTypes []string
}

// DefaultChoices returns the stock options.
func DefaultChoices() Choices {
	return Choices{
		Sexes:        []string{"M", "F"},
		Attendants:   []string{"Dr Amare", "Dr Adane", "Dr Menarg"},
		Roles:        []string{"Surgeon", "Assistant", "Observer"},
		SurgeryTypes: []string{"Elective", "Emergency"},
	}
}

// PageData is rendered by Page.
type PageData struct {
	Title   string
	Choices Choices
	Form    sheetlog.Form
	Status  sheetlog.Status
}

// Config of the Server.
type Config struct {
	Title   string
	Choices Choices
	// Timeout bounds one submission. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Server is the HTTP front of a sheetlog.Session.
type Server struct {
	session *sheetlog.Session
	cfg     Config
	logger  *slog.Logger
}

// New returns a new Server. The session should be initialized already.
func New(session *sheetlog.Session, cfg Config) *Server {
	if cfg.Title == "" {
		cfg.Title = "Surgical case log"
	}
	if cfg.Choices.Sexes == nil {
		cfg.Choices = DefaultChoices()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{session: session, cfg: cfg, logger: logger}
}

// Handler returns the routes of the Server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/", s.getIndex)
	r.Post("/submit", s.postSubmit)
	r.Get("/status", s.getStatus)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.session.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	})
	return r
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, sheetlog.Form{}, s.session.Status())
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, submitResponse{Status: s.session.Status()})
}

type submitResponse struct {
	Status sheetlog.Status `json:"status"`
	Row    int             `json:"row,omitempty"`
}

func (s *Server) postSubmit(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("req", uuid.NewString())
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form, err := sheetlog.ParseForm(r.PostForm)
	var row int
	if err != nil {
		err = s.session.Report(err)
	} else {
		ctx := r.Context()
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
		row, err = s.session.Submit(ctx, form)
	}
	code := httpStatus(err)
	st := s.session.Status()
	if err != nil {
		logger.Warn("submit", "status", code, "error", err)
	} else {
		logger.Info("submit", "row", row)
		form = sheetlog.Form{}
	}
	if wantsJSON(r) {
		writeJSON(w, code, submitResponse{Status: st, Row: row})
		return
	}
	s.render(w, code, form, st)
}

func (s *Server) render(w http.ResponseWriter, code int, form sheetlog.Form, st sheetlog.Status) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	WritePage(w, &PageData{Title: s.cfg.Title, Choices: s.cfg.Choices, Form: form, Status: st})
}

func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ve *sheetlog.ValidationError
	var me *sheetlog.MissingElementError
	var hme *sheetlog.HeaderMismatchError
	var hae *sheetlog.HostAccessError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &me):
		return http.StatusBadRequest
	case errors.Is(err, sheetlog.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.As(err, &hme):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &hae):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
