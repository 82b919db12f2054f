package core

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"parqedit/internal/logging"
	"parqedit/internal/metrics"
	"parqedit/internal/storage"
)

// SaveResult reports where a save landed.
type SaveResult struct {
	Destination string           `json:"destination"`
	Primary     *storage.Address `json:"primary,omitempty"`
	Backup      *storage.Address `json:"backup,omitempty"`
	LocalPath   string           `json:"localPath,omitempty"`
	Rows        int              `json:"rows"`
}

// SaveRemote persists the session table to the configured primary address.
//
// Before the primary object is overwritten, a same-day backup copy of the
// prior version is created at backups/<base>_<YYYYMMDD>.<ext>. If the copy
// fails the save is aborted and nothing is written. On any failure the
// in-memory table is untouched so the operator can retry without
// re-editing.
func (s *Service) SaveRemote(ctx context.Context, id string) (SaveResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return SaveResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	primary := s.primaryAddress()
	backup := storage.Address{
		Bucket: primary.Bucket,
		Key:    backupKey(s.cfg.Storage.BackupPrefix, primary.Key, s.now()),
	}
	logger := logging.WithFields(ctx, "session_id", id, "primary", primary.String(), "backup", backup.String())

	if err := s.store.Copy(ctx, primary.Bucket, primary.Key, backup.Key); err != nil {
		metrics.Saves.WithLabelValues("remote", "error").Inc()
		logger.Error("backup copy failed, save aborted", "error", err)
		return SaveResult{}, &BackupError{From: primary, To: backup, Err: err}
	}

	data, err := encodeTable(sess.tbl)
	if err != nil {
		metrics.Saves.WithLabelValues("remote", "error").Inc()
		return SaveResult{}, err
	}

	if err := s.store.Write(ctx, primary.Bucket, primary.Key, data); err != nil {
		metrics.Saves.WithLabelValues("remote", "error").Inc()
		logger.Error("write failed", "error", err)
		return SaveResult{}, fmt.Errorf("write %s: %w", primary, err)
	}

	metrics.Saves.WithLabelValues("remote", "ok").Inc()
	logger.Info("table saved", "rows", sess.tbl.NumRows(), "bytes", len(data))
	return SaveResult{
		Destination: "remote",
		Primary:     &primary,
		Backup:      &backup,
		Rows:        sess.tbl.NumRows(),
	}, nil
}

// SaveLocal persists the session table to a file on the server. An empty
// path falls back to the configured default local path.
func (s *Service) SaveLocal(ctx context.Context, id, localPath string) (SaveResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return SaveResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if localPath == "" {
		localPath = s.cfg.LocalPath()
	}

	data, err := encodeTable(sess.tbl)
	if err != nil {
		metrics.Saves.WithLabelValues("local", "error").Inc()
		return SaveResult{}, err
	}

	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		metrics.Saves.WithLabelValues("local", "error").Inc()
		logging.FromContext(ctx).Error("local save failed", "path", localPath, "error", err)
		return SaveResult{}, fmt.Errorf("write %s: %w", localPath, err)
	}

	metrics.Saves.WithLabelValues("local", "ok").Inc()
	logging.FromContext(ctx).Info("table saved locally", "session_id", id, "path", localPath, "rows", sess.tbl.NumRows())
	return SaveResult{
		Destination: "local",
		LocalPath:   localPath,
		Rows:        sess.tbl.NumRows(),
	}, nil
}

// Export encodes the session's current table and returns the blob together
// with a download filename derived from the primary key.
func (s *Service) Export(id string) ([]byte, string, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	data, err := encodeTable(sess.tbl)
	if err != nil {
		return nil, "", err
	}
	return data, path.Base(s.cfg.Storage.Key), nil
}

// backupKey derives the backup object key from the primary key and a date:
// <prefix><base>_<YYYYMMDD>.<ext>. It is recomputed per save so a save on
// a new day lands on a new backup object.
func backupKey(prefix, key string, now time.Time) string {
	base := path.Base(key)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s%s_%s%s", prefix, name, now.Format("20060102"), ext)
}
