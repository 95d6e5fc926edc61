package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

func TestWriteTimeline(t *testing.T) {
	checking := uuid.New()
	orphan := uuid.New()
	note := "card fee"

	entries := []*domain.TimelineEntry{
		{
			Checkpoint: domain.Checkpoint{
				AccountID:       checking,
				Date:            time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
				ActualBalance:   decimal.NewFromInt(950),
				ExpectedBalance: decimal.NewFromInt(1050),
				Gap:             decimal.NewFromInt(-100),
				Status:          domain.CheckpointStatusOpen,
				Notes:           &note,
			},
			DaysSincePrevious: 30,
			TransactionCount:  4,
		},
		{
			Checkpoint: domain.Checkpoint{
				AccountID:       orphan,
				Date:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				ActualBalance:   decimal.Zero,
				ExpectedBalance: decimal.Zero,
				Gap:             decimal.Zero,
				Status:          domain.CheckpointStatusResolved,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTimeline(&buf, entries, map[uuid.UUID]string{checking: "Checking"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TimelineSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, timelineHeadings, rows[0])
	assert.Equal(t, []string{"2024-01-31", "Checking", "950", "1050", "-100", "open", "30", "4", "card fee"}, rows[1])
	assert.Equal(t, "2024-01-01", rows[2][0])
	assert.Equal(t, orphan.String(), rows[2][1])
	assert.Equal(t, "resolved", rows[2][5])
}

func TestWriteTimeline_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTimeline(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(TimelineSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
