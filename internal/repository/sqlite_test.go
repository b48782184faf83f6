package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveUpsertsPodAndInsertsResult(t *testing.T) {
	repo := newTestRepository(t)
	record := pod.NewRecord("pod-1", 0xABCD)
	record.LastStatus = &pod.Status{Progress: pod.Running, BolusState: pod.BolusInactive}
	result := &pod.Result{
		ID:          "result-1",
		RequestTime: time.Now().UTC(),
		ResultTime:  time.Now().UTC(),
		Success:     true,
	}

	if err := repo.Save(context.Background(), record, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	var count int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM pods WHERE id = ?`, record.ID).Scan(&count); err != nil {
		t.Fatalf("query pods: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one pod row, got %d", count)
	}
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM exchange_results WHERE pod_id = ?`, record.ID).Scan(&count); err != nil {
		t.Fatalf("query results: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one result row, got %d", count)
	}
}

func TestSaveUpdatesExistingPodOnConflict(t *testing.T) {
	repo := newTestRepository(t)
	record := pod.NewRecord("pod-1", 1)
	if err := repo.Save(context.Background(), record, nil); err != nil {
		t.Fatalf("first save: %v", err)
	}

	record.RadioAddress = 2
	if err := repo.Save(context.Background(), record, nil); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var count int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM pods`).Scan(&count); err != nil {
		t.Fatalf("query pods: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected upsert to keep a single row, got %d", count)
	}

	var radioAddress int64
	if err := repo.db.QueryRow(`SELECT radio_address FROM pods WHERE id = ?`, record.ID).Scan(&radioAddress); err != nil {
		t.Fatalf("query radio_address: %v", err)
	}
	if radioAddress != 2 {
		t.Fatalf("expected updated radio_address 2, got %d", radioAddress)
	}
}

func TestSaveRecordsFaultKindFromException(t *testing.T) {
	repo := newTestRepository(t)
	record := pod.NewRecord("pod-1", 1)
	result := &pod.Result{
		ID:          "result-1",
		RequestTime: time.Now().UTC(),
		ResultTime:  time.Now().UTC(),
		Success:     false,
		Exception:   podfault.PodResponseUnexpected("unexpected status"),
	}

	if err := repo.Save(context.Background(), record, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	var errKind string
	if err := repo.db.QueryRow(`SELECT error_kind FROM exchange_results WHERE id = ?`, result.ID).Scan(&errKind); err != nil {
		t.Fatalf("query error_kind: %v", err)
	}
	if errKind != podfault.ErrPodResponseUnexpected.Error() {
		t.Fatalf("expected error_kind %q, got %q", podfault.ErrPodResponseUnexpected.Error(), errKind)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	if err := Migrate(repo.db); err != nil {
		t.Fatalf("expected re-running Migrate on an already-current db to be a no-op, got %v", err)
	}
}
