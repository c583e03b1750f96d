package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// mockMessageReader implements MessageReader for testing
type mockMessageReader struct {
	messages map[string]string
	order    []string
	listErr  error

	listedLabel string
	listedMax   int64
}

func (m *mockMessageReader) ListMessageIDs(ctx context.Context, userID, label string, maxResults int64) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.listedLabel = label
	m.listedMax = maxResults
	return m.order, nil
}

func (m *mockMessageReader) GetRaw(ctx context.Context, userID, id string) ([]byte, error) {
	raw, ok := m.messages[id]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return []byte(raw), nil
}

func TestFetchLeaveRequests(t *testing.T) {
	reader := &mockMessageReader{
		order: []string{"m1", "m2", "m3"},
		messages: map[string]string{
			"m1": "Subject: r2_1\r\n\r\nPTO:\r\nStart Date: 7/1/24 End Date: 7/3/24\r\n\r\n" +
				"Non-call:\r\nStart Date: 7/10/24 End Date: 7/10/24\r\nStart Date: 7/12/24 End Date: someday\r\n",
			"m2": "Subject: Dr Nobody\r\n\r\nPTO:\r\nStart Date: 7/1/24 End Date: 7/3/24\r\n",
			"m3": "this is not a message",
		},
	}

	result, err := FetchLeaveRequests(context.Background(), reader, testRoster(), testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Leave", reader.listedLabel)
	assert.Equal(t, int64(10), reader.listedMax)
	assert.Equal(t, 3, result.MessagesRead)

	require.Len(t, result.Leave, 1)
	assert.Equal(t, model.LeaveRequest{
		Resident: "R2_1",
		Dates:    model.DateRange{Start: model.MustParseDate("2024-07-01"), End: model.MustParseDate("2024-07-03")},
	}, result.Leave[0])

	require.Len(t, result.SoftConstraints, 1)
	assert.Equal(t, "R2_1", result.SoftConstraints[0].Resident)

	assert.Equal(t, []string{"Dr Nobody"}, result.Unmatched)
	assert.Len(t, result.Skipped, 2, "one bad date range and one unreadable message")
}

func TestFetchLeaveRequests_Errors(t *testing.T) {
	_, err := FetchLeaveRequests(context.Background(), &mockMessageReader{listErr: errors.New("unauthorized")}, testRoster(), testConfig(), zap.NewNop())
	assert.ErrorContains(t, err, "unauthorized")

	_, err = FetchLeaveRequests(context.Background(), &mockMessageReader{order: []string{"gone"}}, testRoster(), testConfig(), zap.NewNop())
	assert.ErrorContains(t, err, "gone")
}
