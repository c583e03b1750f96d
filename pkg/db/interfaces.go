package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// RosterStore defines the interface for roster database operations
type RosterStore interface {
	GetRoster(ctx context.Context, academicYear int) ([]Resident, error)
	ReplaceRoster(ctx context.Context, academicYear int, residents []Resident) error
}

// ScheduleStore defines the interface for generated schedule operations
type ScheduleStore interface {
	// GetBlock returns ErrNotFound if the block has not been generated
	GetBlock(ctx context.Context, academicYear, number int) (*Block, error)
	GetBlocks(ctx context.Context, academicYear int) ([]Block, error)
	// SaveBlockSchedule stores a block with its rows and statistics, replacing any earlier
	// generation of the same block
	SaveBlockSchedule(ctx context.Context, block *Block, entries []ScheduleEntry, stats []CallStatistic) error
	GetScheduleEntries(ctx context.Context, blockID string) ([]ScheduleEntry, error)
	GetCallStatistics(ctx context.Context, blockID string) ([]CallStatistic, error)
}

// Database defines the interface for all database operations
type Database interface {
	RosterStore
	ScheduleStore
}
