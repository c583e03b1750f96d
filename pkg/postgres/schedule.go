package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/call-rota/pkg/db"
)

const blockColumns = `id, academic_year, number, start_date, end_date, seed, trial_index, fairness, violations, generated_at`

func scanBlock(row pgx.Row) (db.Block, error) {
	var b db.Block
	var start, end, generatedAt time.Time
	var seed int64
	if err := row.Scan(&b.ID, &b.AcademicYear, &b.Number, &start, &end, &seed, &b.TrialIndex, &b.Fairness, &b.Violations, &generatedAt); err != nil {
		return db.Block{}, err
	}
	b.Start = start.Format("2006-01-02")
	b.End = end.Format("2006-01-02")
	// BIGINT holds the seed's bit pattern
	b.Seed = uint64(seed)
	b.GeneratedAt = generatedAt.UTC().Format(time.RFC3339)
	return b, nil
}

// GetBlock retrieves one generated block
func (d *DB) GetBlock(ctx context.Context, academicYear, number int) (*db.Block, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+blockColumns+`
		FROM block
		WHERE academic_year = $1 AND number = $2
	`, academicYear, number)

	b, err := scanBlock(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("block %d of %d: %w", number, academicYear, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan block: %w", err)
	}
	return &b, nil
}

// GetBlocks retrieves every generated block of an academic year in block order
func (d *DB) GetBlocks(ctx context.Context, academicYear int) ([]db.Block, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+blockColumns+`
		FROM block
		WHERE academic_year = $1
		ORDER BY number
	`, academicYear)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []db.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}

	return blocks, nil
}

// SaveBlockSchedule stores a block, its rows and its statistics in one transaction.
// An earlier generation of the same block is deleted along with its rows.
func (d *DB) SaveBlockSchedule(ctx context.Context, block *db.Block, entries []db.ScheduleEntry, stats []db.CallStatistic) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM block WHERE academic_year = $1 AND number = $2
	`, block.AcademicYear, block.Number)
	if err != nil {
		return fmt.Errorf("failed to delete previous block: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO block (id, academic_year, number, start_date, end_date, seed, trial_index, fairness, violations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, block.ID, block.AcademicYear, block.Number, block.Start, block.End, int64(block.Seed), block.TrialIndex, block.Fairness, block.Violations)
	if err != nil {
		return fmt.Errorf("failed to insert block: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		var intern, supervisor *string
		if e.Intern != "" {
			intern = &e.Intern
		}
		if e.Supervisor != "" {
			supervisor = &e.Supervisor
		}
		batch.Queue(`
			INSERT INTO schedule_entry (id, block_id, date, call, backup, intern, supervisor, fixed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, e.ID, block.ID, e.Date, e.Call, e.Backup, intern, supervisor, e.Fixed)
	}
	for _, s := range stats {
		batch.Queue(`
			INSERT INTO call_statistic (id, block_id, resident, pgy, weekday, fridays, saturday, sunday, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, s.ID, block.ID, s.Resident, s.PGY, s.Weekday, s.Fridays, s.Saturday, s.Sunday, s.Total)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert schedule rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetScheduleEntries retrieves a block's rows in date order
func (d *DB) GetScheduleEntries(ctx context.Context, blockID string) ([]db.ScheduleEntry, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, block_id, date, call, backup, intern, supervisor, fixed
		FROM schedule_entry
		WHERE block_id = $1
		ORDER BY date
	`, blockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []db.ScheduleEntry
	for rows.Next() {
		var e db.ScheduleEntry
		var date time.Time
		var intern, supervisor *string
		if err := rows.Scan(&e.ID, &e.BlockID, &date, &e.Call, &e.Backup, &intern, &supervisor, &e.Fixed); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		e.Date = date.Format("2006-01-02")
		if intern != nil {
			e.Intern = *intern
		}
		if supervisor != nil {
			e.Supervisor = *supervisor
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule entries: %w", err)
	}

	return entries, nil
}

// GetCallStatistics retrieves a block's per-resident counts
func (d *DB) GetCallStatistics(ctx context.Context, blockID string) ([]db.CallStatistic, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, block_id, resident, pgy, weekday, fridays, saturday, sunday, total
		FROM call_statistic
		WHERE block_id = $1
		ORDER BY resident
	`, blockID)
	if err != nil {
		return nil, fmt.Errorf("failed to query call statistics: %w", err)
	}
	defer rows.Close()

	var stats []db.CallStatistic
	for rows.Next() {
		var s db.CallStatistic
		if err := rows.Scan(&s.ID, &s.BlockID, &s.Resident, &s.PGY, &s.Weekday, &s.Fridays, &s.Saturday, &s.Sunday, &s.Total); err != nil {
			return nil, fmt.Errorf("failed to scan call statistic: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating call statistics: %w", err)
	}

	return stats, nil
}
