package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"parqedit/internal/storage"
	"parqedit/internal/table"
)

// recordingStore wraps a Store and logs the order of mutating operations.
// failCopy makes Copy fail without touching the inner store.
type recordingStore struct {
	inner    storage.Store
	ops      []string
	failCopy bool
}

func (r *recordingStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	return r.inner.Read(ctx, bucket, key)
}

func (r *recordingStore) Write(ctx context.Context, bucket, key string, data []byte) error {
	r.ops = append(r.ops, "write "+key)
	return r.inner.Write(ctx, bucket, key, data)
}

func (r *recordingStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	r.ops = append(r.ops, "copy "+dstKey)
	if r.failCopy {
		return errors.New("copy refused")
	}
	return r.inner.Copy(ctx, bucket, srcKey, dstKey)
}

// newRecordingService seeds a store with the fixture table and builds a
// Service around a recording wrapper, with the clock pinned.
func newRecordingService(t *testing.T, at time.Time) (*Service, *recordingStore, *storage.MemoryStore) {
	t.Helper()
	cfg := testConfig()
	mem := storage.NewMemoryStore()

	data, err := table.Encode(fixtureTable(t))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := mem.Write(context.Background(), cfg.Storage.Bucket, cfg.Storage.Key, data); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	rec := &recordingStore{inner: mem}
	svc := NewService(rec, cfg)
	svc.now = func() time.Time { return at }
	return svc, rec, mem
}

func TestSaveRemote_BackupBeforeWrite(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc, rec, mem := newRecordingService(t, at)
	id := loadSession(t, svc)

	if err := svc.UpdateCell(id, 0, "name", "edited"); err != nil {
		t.Fatalf("UpdateCell() error = %v", err)
	}

	res, err := svc.SaveRemote(context.Background(), id)
	if err != nil {
		t.Fatalf("SaveRemote() error = %v", err)
	}

	wantBackup := "backups/Controle_de_Processos_20260314.parquet"
	if res.Backup == nil || res.Backup.Key != wantBackup {
		t.Errorf("Backup = %+v, want key %s", res.Backup, wantBackup)
	}
	if res.Destination != "remote" || res.Rows != 3 {
		t.Errorf("result = %+v", res)
	}

	wantOps := []string{"copy " + wantBackup, "write data/Controle_de_Processos.parquet"}
	if len(rec.ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", rec.ops, wantOps)
	}
	for i := range wantOps {
		if rec.ops[i] != wantOps[i] {
			t.Errorf("ops[%d] = %q, want %q", i, rec.ops[i], wantOps[i])
		}
	}

	// The backup holds the pre-save version, the primary the edited one.
	backupData, err := mem.Read(context.Background(), "controle-de-processos", wantBackup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	backupTbl, err := table.Decode(backupData)
	if err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if !backupTbl.Equal(fixtureTable(t)) {
		t.Error("backup does not match the pre-save table")
	}

	primaryData, err := mem.Read(context.Background(), "controle-de-processos", "data/Controle_de_Processos.parquet")
	if err != nil {
		t.Fatalf("read primary: %v", err)
	}
	primaryTbl, err := table.Decode(primaryData)
	if err != nil {
		t.Fatalf("decode primary: %v", err)
	}
	v, _ := primaryTbl.Cell(0, primaryTbl.ColumnIndex("name"))
	if v != "edited" {
		t.Errorf("primary cell = %v, want edited", v)
	}
}

func TestSaveRemote_CopyFailureAbortsWrite(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc, rec, mem := newRecordingService(t, at)
	rec.failCopy = true
	id := loadSession(t, svc)

	if err := svc.UpdateCell(id, 0, "name", "edited"); err != nil {
		t.Fatalf("UpdateCell() error = %v", err)
	}

	_, err := svc.SaveRemote(context.Background(), id)
	var backupErr *BackupError
	if !errors.As(err, &backupErr) {
		t.Fatalf("SaveRemote() error = %v, want *BackupError", err)
	}

	for _, op := range rec.ops {
		if op == "write data/Controle_de_Processos.parquet" {
			t.Error("primary was written after the backup copy failed")
		}
	}

	// The stored object is untouched and the edit survives in memory.
	data, err := mem.Read(context.Background(), "controle-de-processos", "data/Controle_de_Processos.parquet")
	if err != nil {
		t.Fatalf("read primary: %v", err)
	}
	stored, err := table.Decode(data)
	if err != nil {
		t.Fatalf("decode primary: %v", err)
	}
	if !stored.Equal(fixtureTable(t)) {
		t.Error("primary object changed after an aborted save")
	}

	tbl, _ := svc.TableSnapshot(id)
	v, _ := tbl.Cell(0, tbl.ColumnIndex("name"))
	if v != "edited" {
		t.Errorf("in-memory cell = %v, want the edit retained for retry", v)
	}
}

func TestSaveRemote_BackupKeyFollowsDate(t *testing.T) {
	svc, _, mem := newRecordingService(t, time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	id := loadSession(t, svc)

	if _, err := svc.SaveRemote(context.Background(), id); err != nil {
		t.Fatalf("SaveRemote() error = %v", err)
	}
	if !mem.Exists("controle-de-processos", "backups/Controle_de_Processos_20260314.parquet") {
		t.Error("missing backup for the first day")
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }
	if _, err := svc.SaveRemote(context.Background(), id); err != nil {
		t.Fatalf("SaveRemote() error = %v", err)
	}
	if !mem.Exists("controle-de-processos", "backups/Controle_de_Processos_20260315.parquet") {
		t.Error("missing backup for the second day")
	}
}

func TestBackupKey(t *testing.T) {
	now := time.Date(2024, 12, 5, 23, 59, 0, 0, time.UTC)
	tests := []struct {
		key  string
		want string
	}{
		{"data/Controle_de_Processos.parquet", "backups/Controle_de_Processos_20241205.parquet"},
		{"plain.parquet", "backups/plain_20241205.parquet"},
		{"deep/nested/path/report", "backups/report_20241205"},
	}
	for _, tt := range tests {
		if got := backupKey("backups/", tt.key, now); got != tt.want {
			t.Errorf("backupKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSaveLocal(t *testing.T) {
	svc, _ := newTestService(t)
	id := loadSession(t, svc)

	if err := svc.UpdateCell(id, 2, "status", "done"); err != nil {
		t.Fatalf("UpdateCell() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "out.parquet")
	res, err := svc.SaveLocal(context.Background(), id, dest)
	if err != nil {
		t.Fatalf("SaveLocal() error = %v", err)
	}
	if res.Destination != "local" || res.LocalPath != dest || res.Rows != 3 {
		t.Errorf("result = %+v", res)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	tbl, err := table.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	v, _ := tbl.Cell(2, tbl.ColumnIndex("status"))
	if v != "done" {
		t.Errorf("saved cell = %v, want done", v)
	}
}

func TestSaveLocal_DefaultPath(t *testing.T) {
	cfg := testConfig()
	cfg.Edit.DefaultLocalPath = filepath.Join(t.TempDir(), "Controle_de_Processos_edited.parquet")

	mem := storage.NewMemoryStore()
	data, err := table.Encode(fixtureTable(t))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := mem.Write(context.Background(), cfg.Storage.Bucket, cfg.Storage.Key, data); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	svc := NewService(mem, cfg)
	id := loadSession(t, svc)

	res, err := svc.SaveLocal(context.Background(), id, "")
	if err != nil {
		t.Fatalf("SaveLocal() error = %v", err)
	}
	if res.LocalPath != cfg.LocalPath() {
		t.Errorf("LocalPath = %q, want %q", res.LocalPath, cfg.LocalPath())
	}
	if _, err := os.Stat(res.LocalPath); err != nil {
		t.Errorf("stat default path: %v", err)
	}
}

func TestExport(t *testing.T) {
	svc, _ := newTestService(t)
	id := loadSession(t, svc)

	data, name, err := svc.Export(id)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "Controle_de_Processos.parquet" {
		t.Errorf("name = %q", name)
	}
	tbl, err := table.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !tbl.Equal(fixtureTable(t)) {
		t.Error("exported table differs from the session table")
	}
}

func TestSaveRemote_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.SaveRemote(context.Background(), "nope"); err != ErrSessionNotFound {
		t.Errorf("SaveRemote() error = %v, want ErrSessionNotFound", err)
	}
}
