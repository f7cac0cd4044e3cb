package ingest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"sms-ledger/internal/logging"
	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"
)

// State is a step of the ingest workflow.
type State string

const (
	StateIdle       State = "idle"
	StateParsing    State = "parsing"
	StatePreviewing State = "previewing"
	StateCommitting State = "committing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StateIdle:       {StateParsing, StatePreviewing},
	StateParsing:    {StatePreviewing, StateIdle},
	StatePreviewing: {StateCommitting},
	StateCommitting: {StateDone, StateFailed},
	StateFailed:     {StateCommitting},
}

// ErrInvalidState is returned when an operation is not allowed in the current state.
type ErrInvalidState struct {
	From, To State
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

// Session drives one upload from parsing to commit. Edits are allowed while previewing
// and after a failed commit; a failed commit keeps the preview intact for a retry.
type Session struct {
	mu       sync.Mutex
	state    State
	preview  *Preview
	pipeline *Pipeline
	writer   BatchWriter
	ids      []int64
	logger   logging.Logger
}

// NewSession creates an idle session.
func NewSession(pipeline *Pipeline, writer BatchWriter, logger logging.Logger) *Session {
	return &Session{
		state:    StateIdle,
		pipeline: pipeline,
		writer:   writer,
		logger:   logging.OrDefault(logger),
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Preview returns the current preview, nil before parsing.
func (s *Session) Preview() *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// CommittedIDs returns the transaction ids of a successful commit.
func (s *Session) CommittedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.ids...)
}

func (s *Session) moveTo(to State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.logger.Debug("Ingest session state change",
				logging.F(logging.FieldState, string(to)),
				logging.F("from", string(s.state)))
			s.state = to
			return nil
		}
	}
	return &ErrInvalidState{From: s.state, To: to}
}

// Load parses an upload into the session preview. A rejected upload returns the
// session to idle.
func (s *Session) Load(ctx context.Context, r io.Reader) (*Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.moveTo(StateParsing); err != nil {
		return nil, err
	}
	preview, err := s.pipeline.Parse(ctx, r)
	if err != nil {
		s.state = StateIdle
		return nil, err
	}
	s.preview = preview
	s.state = StatePreviewing
	return preview, nil
}

// Resume adopts a preview saved earlier.
func (s *Session) Resume(preview *Preview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if preview == nil {
		return &parsererror.ValidationError{Field: "preview", Reason: "is required"}
	}
	if err := s.moveTo(StatePreviewing); err != nil {
		return err
	}
	s.preview = preview
	return nil
}

func (s *Session) editable() error {
	if s.state != StatePreviewing && s.state != StateFailed {
		return &ErrInvalidState{From: s.state, To: s.state}
	}
	return nil
}

// Remove drops drafts by position.
func (s *Session) Remove(indices ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	return s.preview.Remove(indices...)
}

// Replace overwrites one draft.
func (s *Session) Replace(i int, d models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	return s.preview.Replace(i, d)
}

// Commit writes the preview as one batch. Empty or invalid previews are rejected
// without a state change. A storage failure moves the session to failed and keeps
// the preview so the commit can be retried.
func (s *Session) Commit(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return nil, err
	}
	// A batch that cannot be stored keeps the session editable.
	if err := validateBatch(s.preview.Drafts); err != nil {
		return nil, err
	}

	if err := s.moveTo(StateCommitting); err != nil {
		return nil, err
	}
	drafts := append([]models.Draft(nil), s.preview.Drafts...)
	ids, err := Commit(ctx, s.writer, drafts)
	if err != nil {
		s.state = StateFailed
		s.logger.WithError(err).Warn("Commit failed, preview kept for retry",
			logging.F(logging.FieldPreviewID, s.preview.ID))
		return nil, err
	}

	s.state = StateDone
	s.ids = ids
	s.logger.Info("Preview committed",
		logging.F(logging.FieldPreviewID, s.preview.ID), logging.F(logging.FieldCount, len(ids)))
	return ids, nil
}
