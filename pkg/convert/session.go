package convert

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jpfielding/img2pacs/pkg/archive"
)

// Session holds the patient fields of one form. Every identifier change
// cancels the lookup in flight and only the latest lookup may set the name.
type Session struct {
	Finder archive.PatientFinder
	Log    *slog.Logger
	// OnName observes every applied name change
	OnName func(name string)

	mu        sync.Mutex
	seq       uint64
	cancel    context.CancelFunc
	patientID string
	name      string
}

// NewSession creates a session resolving names through finder
func NewSession(finder archive.PatientFinder, log *slog.Logger) *Session {
	return &Session{Finder: finder, Log: log}
}

// SetPatientID records a new identifier and starts resolving it. An empty
// identifier clears the name without a lookup.
func (s *Session) SetPatientID(ctx context.Context, patientID string) *archive.Task[archive.LookupOutcome] {
	s.mu.Lock()
	s.seq++
	mine := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.patientID = patientID
	if patientID == "" {
		s.setName("")
		s.mu.Unlock()
		s.logger().DebugContext(ctx, "patient ID cleared")
		return archive.Completed(archive.LookupOutcome{Status: archive.Empty}, nil)
	}
	// the old name must not pair with the new identifier while resolving
	s.setName("")
	lookupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	pending := s.Finder.FindPatient(lookupCtx, patientID)
	return archive.Start(lookupCtx, func(lookupCtx context.Context) (archive.LookupOutcome, error) {
		outcome, err := pending.Wait(lookupCtx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq != mine {
			// superseded, leave the field to the newer lookup
			return outcome, context.Canceled
		}
		s.cancel = nil
		cancel()
		switch {
		case err == nil:
			s.setName(outcome.DisplayName())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return outcome, err
		default:
			outcome = archive.LookupOutcome{Status: archive.QueryFailed, Detail: err.Error(), Err: err}
			s.setName(outcome.DisplayName())
		}
		return outcome, nil
	})
}

// setName must be called with mu held
func (s *Session) setName(name string) {
	if s.name == name {
		return
	}
	s.name = name
	if s.OnName != nil {
		s.OnName(name)
	}
}

// PatientID returns the current identifier
func (s *Session) PatientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientID
}

// PatientName returns the name the latest completed lookup produced
func (s *Session) PatientName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Identity snapshots the patient fields
func (s *Session) Identity() PatientIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PatientIdentity{PatientID: s.patientID, PatientName: s.name}
}

// Close cancels any lookup in flight
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) logger() *slog.Logger {
	if s.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Log
}
