// Package core implements the load, edit and save workflow of the table
// editor. This package has no UI dependencies and can be used by any
// frontend.
package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"parqedit/internal/config"
	"parqedit/internal/metrics"
	"parqedit/internal/storage"
	"parqedit/internal/table"
)

// Source identifies where a session's table was loaded from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceUpload Source = "upload"
)

// Service provides the core workflow: load a table into a session, apply
// edits behind the deletion confirmation gate, and persist the outcome.
type Service struct {
	store storage.Store
	cfg   *config.Config

	// now is the clock used for backup key computation and session expiry.
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Session holds the state of one editing workflow: the current table, the
// original source, and the confirmation gate for a pending row deletion.
// A session is owned by a single operator; access is serialized internally.
type Session struct {
	ID         string
	source     Source
	uploadName string

	mu       sync.Mutex
	tbl      *table.Table
	gate     *confirmationGate
	lastUsed time.Time
}

// SessionView is a read-only snapshot of session state for rendering.
type SessionView struct {
	ID              string           `json:"id"`
	Source          Source           `json:"source"`
	Address         *storage.Address `json:"address,omitempty"`
	UploadName      string           `json:"uploadName,omitempty"`
	Rows            int              `json:"rows"`
	Cols            int              `json:"cols"`
	PendingDeletion *GateView        `json:"pendingDeletion,omitempty"`
}

// GateView describes a deletion awaiting confirmation.
type GateView struct {
	State        GateState `json:"state"`
	RowsToDelete int       `json:"rowsToDelete"`
}

// NewService creates a Service backed by the given store.
func NewService(store storage.Store, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// primaryAddress is the configured address of the table object.
func (s *Service) primaryAddress() storage.Address {
	return storage.Address{Bucket: s.cfg.Storage.Bucket, Key: s.cfg.Storage.Key}
}

// newSession registers a session around a freshly loaded table.
func (s *Service) newSession(src Source, tbl *table.Table, uploadName string) *Session {
	sess := &Session{
		ID:         uuid.New().String(),
		source:     src,
		uploadName: uploadName,
		tbl:        tbl,
		lastUsed:   s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	metrics.SessionsActive.Inc()
	return sess
}

// session looks up a live session and refreshes its idle timer.
func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastUsed = s.now()
	sess.mu.Unlock()
	return sess, nil
}

// View returns a snapshot of session state.
func (s *Service) View(id string) (SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

// viewLocked builds a SessionView; sess.mu must be held.
func (s *Service) viewLocked(sess *Session) SessionView {
	view := SessionView{
		ID:         sess.ID,
		Source:     sess.source,
		UploadName: sess.uploadName,
		Rows:       sess.tbl.NumRows(),
		Cols:       sess.tbl.NumCols(),
	}
	if sess.source == SourceRemote {
		addr := s.primaryAddress()
		view.Address = &addr
	}
	if sess.gate != nil && sess.gate.state == GateAwaitingCode {
		view.PendingDeletion = &GateView{
			State:        sess.gate.state,
			RowsToDelete: sess.gate.before.NumRows() - sess.gate.pending.NumRows(),
		}
	}
	return view
}

// TableSnapshot returns a deep copy of the session's current table.
func (s *Service) TableSnapshot(id string) (*table.Table, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.tbl.Clone(), nil
}

// Summary returns descriptive statistics for the session's current table.
func (s *Service) Summary(id string) (table.Summary, error) {
	sess, err := s.session(id)
	if err != nil {
		return table.Summary{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return table.Summarize(sess.tbl), nil
}

// DeleteSession discards a session. Returns false if it did not exist.
func (s *Service) DeleteSession(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if ok {
		metrics.SessionsActive.Dec()
	}
	return ok
}

// SessionCount reports the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSessionJanitor reaps idle sessions until ctx is cancelled.
func (s *Service) StartSessionJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Session.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.reapIdleSessions(); n > 0 {
				slog.Info("reaped idle sessions", "count", n)
			}
		}
	}
}

// reapIdleSessions drops sessions idle longer than the configured TTL.
func (s *Service) reapIdleSessions() int {
	cutoff := s.now().Add(-s.cfg.Session.TTL)

	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for range expired {
		metrics.SessionsActive.Dec()
	}
	return len(expired)
}
