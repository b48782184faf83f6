package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pod-control/pcm/internal/manager"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/podfault"
)

// SQLiteRepository persists pod records and exchange results to a SQLite
// database via modernc.org/sqlite, a pure-Go driver requiring no cgo.
type SQLiteRepository struct {
	db *sql.DB
}

var _ manager.Repository = (*SQLiteRepository)(nil)

// Open opens path as a SQLite database and migrates it to the current
// schema.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open %s: %w", path, err)
	}
	// modernc.org/sqlite gives :memory: databases connection-local scope;
	// a pool of more than one open connection would each see an empty db.
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

// New wraps an already-open, already-migrated database handle.
func New(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("repository: db is nil")
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Save upserts podRecord's current state and inserts result as a new
// exchange_results row, in a single transaction.
func (r *SQLiteRepository) Save(ctx context.Context, podRecord *pod.Record, result *pod.Result) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("save: repository is nil")
	}
	if podRecord == nil {
		return fmt.Errorf("save: podRecord is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := savePod(ctx, tx, podRecord); err != nil {
		return err
	}
	if result != nil {
		if err := saveResult(ctx, tx, podRecord.ID, result); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}

func savePod(ctx context.Context, tx *sql.Tx, r *pod.Record) error {
	var statusJSON sql.NullString
	if r.LastStatus != nil {
		b, err := json.Marshal(r.LastStatus)
		if err != nil {
			return fmt.Errorf("save: marshal status: %w", err)
		}
		statusJSON = sql.NullString{String: string(b), Valid: true}
	}

	var lastTempBasalResultID sql.NullString
	if r.LastTempBasalResult != nil {
		lastTempBasalResultID = sql.NullString{String: r.LastTempBasalResult.ID, Valid: true}
	}

	lot := nullableUint32(r.Lot)
	serial := nullableUint32(r.Serial)
	activation := nullableTime(r.ActivationDate)
	insertion := nullableTime(r.InsertionDate)
	reservoir := nullableFloat(r.ReservoirUsedForPriming)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO pods (id, radio_address, lot, serial, activation_date, insertion_date, reservoir_used_for_priming, last_status_json, last_temp_basal_result_id, active_conversation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			radio_address = excluded.radio_address,
			lot = excluded.lot,
			serial = excluded.serial,
			activation_date = excluded.activation_date,
			insertion_date = excluded.insertion_date,
			reservoir_used_for_priming = excluded.reservoir_used_for_priming,
			last_status_json = excluded.last_status_json,
			last_temp_basal_result_id = excluded.last_temp_basal_result_id,
			active_conversation_id = excluded.active_conversation_id;
	`, r.ID, r.RadioAddress, lot, serial, activation, insertion, reservoir, statusJSON, lastTempBasalResultID, r.ActiveConversationID)
	if err != nil {
		return fmt.Errorf("save: upsert pod: %w", err)
	}
	return nil
}

func saveResult(ctx context.Context, tx *sql.Tx, podID string, result *pod.Result) error {
	var errKind, errMessage sql.NullString
	if result.Exception != nil {
		errMessage = sql.NullString{String: result.Exception.Error(), Valid: true}
		var fault *podfault.Fault
		if errors.As(result.Exception, &fault) {
			errKind = sql.NullString{String: fault.Kind.Error(), Valid: true}
		}
	}

	var scheduleJSON sql.NullString
	if result.BasalSchedule != nil {
		b, err := json.Marshal(result.BasalSchedule)
		if err != nil {
			return fmt.Errorf("save: marshal basal schedule: %w", err)
		}
		scheduleJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO exchange_results (id, pod_id, request_time, result_time, success, error_kind, error_message, basal_schedule_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING;
	`, result.ID, podID, result.RequestTime.Format(time.RFC3339Nano), result.ResultTime.Format(time.RFC3339Nano), boolToInt(result.Success), errKind, errMessage, scheduleJSON)
	if err != nil {
		return fmt.Errorf("save: insert exchange result: %w", err)
	}
	return nil
}

func nullableUint32(v *uint32) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
