package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/call-rota/pkg/db"
)

// GetRoster retrieves the roster for an academic year in the order it was saved
func (d *DB) GetRoster(ctx context.Context, academicYear int) ([]db.Resident, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, academic_year, name, pgy, transition_date, transition_pgy
		FROM resident
		WHERE academic_year = $1
		ORDER BY position
	`, academicYear)
	if err != nil {
		return nil, fmt.Errorf("failed to query residents: %w", err)
	}
	defer rows.Close()

	var residents []db.Resident
	for rows.Next() {
		var r db.Resident
		var transitionDate *time.Time
		var transitionPGY *int
		if err := rows.Scan(&r.ID, &r.AcademicYear, &r.Name, &r.PGY, &transitionDate, &transitionPGY); err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		if transitionDate != nil {
			r.TransitionDate = transitionDate.Format("2006-01-02")
		}
		if transitionPGY != nil {
			r.TransitionPGY = *transitionPGY
		}
		residents = append(residents, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating residents: %w", err)
	}

	return residents, nil
}

// ReplaceRoster swaps the academic year's roster for residents in one transaction
func (d *DB) ReplaceRoster(ctx context.Context, academicYear int, residents []db.Resident) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM resident WHERE academic_year = $1`, academicYear); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	for i, r := range residents {
		var transitionDate *string
		var transitionPGY *int
		if r.TransitionDate != "" {
			transitionDate = &r.TransitionDate
			transitionPGY = &r.TransitionPGY
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO resident (id, academic_year, name, pgy, transition_date, transition_pgy, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, r.ID, academicYear, r.Name, r.PGY, transitionDate, transitionPGY, i)
		if err != nil {
			return fmt.Errorf("failed to insert resident %s: %w", r.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
