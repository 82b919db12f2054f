package core

import (
	"context"
	"fmt"

	"parqedit/internal/logging"
	"parqedit/internal/metrics"
	"parqedit/internal/table"
)

// CreateRemoteSession reads the configured table object, decodes it and
// opens an edit session around it. Reads are memoized by the store, so
// repeated loads of an unchanged object skip the network round-trip.
//
// On any failure no session is created: the workflow halts and nothing
// downstream can run against a partial table.
func (s *Service) CreateRemoteSession(ctx context.Context) (SessionView, error) {
	addr := s.primaryAddress()
	logger := logging.WithFields(ctx, "bucket", addr.Bucket, "key", addr.Key)

	data, err := s.store.Read(ctx, addr.Bucket, addr.Key)
	if err != nil {
		metrics.Loads.WithLabelValues(string(SourceRemote), "error").Inc()
		logger.Error("remote load failed", "error", err)
		return SessionView{}, fmt.Errorf("read %s: %w", addr, err)
	}

	tbl, err := table.Decode(data)
	if err != nil {
		metrics.Loads.WithLabelValues(string(SourceRemote), "error").Inc()
		logger.Error("remote decode failed", "error", err)
		return SessionView{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	sess := s.newSession(SourceRemote, tbl, "")
	metrics.Loads.WithLabelValues(string(SourceRemote), "ok").Inc()
	logger.Info("table loaded", "session_id", sess.ID, "rows", tbl.NumRows(), "cols", tbl.NumCols())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

// CreateUploadSession decodes a user-supplied blob and opens an edit
// session around it. Decode failures are reported the same way as remote
// load failures; no session is created.
func (s *Service) CreateUploadSession(ctx context.Context, name string, data []byte) (SessionView, error) {
	logger := logging.WithFields(ctx, "upload", name, "bytes", len(data))

	tbl, err := table.Decode(data)
	if err != nil {
		metrics.Loads.WithLabelValues(string(SourceUpload), "error").Inc()
		logger.Error("upload decode failed", "error", err)
		return SessionView{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	sess := s.newSession(SourceUpload, tbl, name)
	metrics.Loads.WithLabelValues(string(SourceUpload), "ok").Inc()
	logger.Info("uploaded table loaded", "session_id", sess.ID, "rows", tbl.NumRows(), "cols", tbl.NumCols())

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}
