// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// HostInfo is delivered once the host is ready.
type HostInfo struct {
	Host     string
	Platform string
}

// Status is the single message shown to the user.
type Status struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// ExpectHost is the host tag Init accepts. Empty accepts any host.
	ExpectHost string
	Logger     *slog.Logger
	// OnStatus is called with each new Status.
	OnStatus func(Status)
}

// Session is the hosting shell around a SheetLogger: it is initialized once,
// then receives the form submissions.
type Session struct {
	sl       *SheetLogger
	expect   string
	logger   *slog.Logger
	onStatus func(Status)

	mu     sync.Mutex
	ready  bool
	status Status
}

// NewSession returns a new, not yet initialized Session.
func NewSession(sl *SheetLogger, cfg SessionConfig) *Session {
	s := &Session{sl: sl, expect: cfg.ExpectHost, logger: cfg.Logger, onStatus: cfg.OnStatus}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Init checks the host and ensures the header row.
// Submissions are refused until Init succeeds.
func (s *Session) Init(ctx context.Context, info HostInfo) error {
	s.logger.Info("host ready", "host", info.Host, "platform", info.Platform)
	if s.expect != "" && info.Host != s.expect {
		return s.report(fmt.Errorf("%w: got %q, wanted %q", ErrHostMismatch, info.Host, s.expect))
	}
	if err := s.sl.EnsureHeaders(ctx); err != nil {
		return s.report(fmt.Errorf("ensure headers: %w", err))
	}
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	s.setStatus(Status{Message: "Ready."})
	return nil
}

// Ready reports whether Init succeeded.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Submit validates the form and appends it as a new row.
// It returns the 1-based sheet row number of the logged record.
func (s *Session) Submit(ctx context.Context, f Form) (int, error) {
	if !s.Ready() {
		return 0, s.report(ErrNotReady)
	}
	rec, err := f.Record()
	if err != nil {
		return 0, s.report(err)
	}
	row, err := s.sl.AppendRow(ctx, rec)
	if err != nil {
		return 0, s.report(fmt.Errorf("append: %w", err))
	}
	s.logger.Info("record logged", "row", row+1)
	s.setStatus(Status{Message: fmt.Sprintf("Logged to row %d.", row+1)})
	return row + 1, nil
}

// Status returns the latest status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// report replaces the status with err, and returns err.
func (s *Session) report(err error) error {
	var ve *ValidationError
	var me *MissingElementError
	var hae *HostAccessError
	switch {
	case errors.As(err, &ve):
		s.logger.Info("invalid submission", "field", ve.Field, "error", err)
	case errors.As(err, &me):
		s.logger.Error("missing element", "name", me.Name)
	case errors.As(err, &hae):
		s.logger.Error("host access", "op", hae.Op, "code", hae.Code, "error", err)
	default:
		s.logger.Error("session", "error", err)
	}
	s.setStatus(Status{Message: StatusMessage(err), Error: true})
	return err
}

// Report surfaces an error raised outside of the Session, such as
// a *MissingElementError from ParseForm.
func (s *Session) Report(err error) error {
	if err == nil {
		return nil
	}
	return s.report(err)
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
	if s.onStatus != nil {
		s.onStatus(st)
	}
}

// StatusMessage returns the user facing message of err.
func StatusMessage(err error) string {
	var ve *ValidationError
	var me *MissingElementError
	var hae *HostAccessError
	var hme *HeaderMismatchError
	switch {
	case errors.As(err, &ve):
		return "Error: " + ve.Error()
	case errors.As(err, &me):
		return "Error: " + me.Error()
	case errors.As(err, &hme):
		return "Error: the first row of the sheet is not the case log header."
	case errors.As(err, &hae):
		if hae.Code != "" {
			return fmt.Sprintf("Error writing the sheet (%s): %v", hae.Code, hae.Err)
		}
		return fmt.Sprintf("Error writing the sheet: %v", hae.Err)
	case errors.Is(err, ErrNotReady):
		return "Error: not ready yet, reload the page."
	}
	return "Error: " + err.Error()
}
