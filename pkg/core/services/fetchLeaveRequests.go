package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/core/leaverequests"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

// MessageReader is the Gmail access needed to read leave requests
type MessageReader interface {
	ListMessageIDs(ctx context.Context, userID, label string, maxResults int64) ([]string, error)
	GetRaw(ctx context.Context, userID, id string) ([]byte, error)
}

// FetchLeaveRequestsResult contains the requests matched against the roster
type FetchLeaveRequestsResult struct {
	leaverequests.Matched

	MessagesRead int
	// Skipped holds per-message and per-date problems; none of them stop the import
	Skipped []error
}

// FetchLeaveRequests reads leave-request emails, parses them and matches the names to the
// roster. Messages that cannot be parsed are skipped and reported.
func FetchLeaveRequests(
	ctx context.Context,
	reader MessageReader,
	residents []model.Resident,
	cfg *config.Config,
	logger *zap.Logger,
) (*FetchLeaveRequestsResult, error) {
	logger.Debug("Listing leave request messages",
		zap.String("user", cfg.GmailUserID),
		zap.String("label", cfg.LeaveLabel),
		zap.Int64("max", cfg.LeaveMaxMessages))

	ids, err := reader.ListMessageIDs(ctx, cfg.GmailUserID, cfg.LeaveLabel, cfg.LeaveMaxMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave request messages: %w", err)
	}
	logger.Debug("Found messages", zap.Int("count", len(ids)))

	result := &FetchLeaveRequestsResult{}
	var requests []leaverequests.Request

	for _, id := range ids {
		raw, err := reader.GetRaw(ctx, cfg.GmailUserID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
		}
		result.MessagesRead++

		parsed, dateErrs, err := leaverequests.ParseMessage(raw)
		if err != nil {
			logger.Warn("Skipping unreadable message", zap.String("id", id), zap.Error(err))
			result.Skipped = append(result.Skipped, fmt.Errorf("message %s: %w", id, err))
			continue
		}
		for _, e := range dateErrs {
			logger.Warn("Skipping date range", zap.String("id", id), zap.Error(e))
			result.Skipped = append(result.Skipped, fmt.Errorf("message %s: %w", id, e))
		}
		requests = append(requests, parsed...)
	}

	result.Matched = leaverequests.MatchRoster(requests, residents)
	for _, name := range result.Unmatched {
		logger.Warn("Leave request names a resident not on the roster", zap.String("name", name))
	}

	logger.Info("Fetched leave requests",
		zap.Int("messages", result.MessagesRead),
		zap.Int("leave", len(result.Leave)),
		zap.Int("soft_constraints", len(result.SoftConstraints)),
		zap.Int("unmatched", len(result.Unmatched)))

	return result, nil
}
