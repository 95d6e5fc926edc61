// Package export renders reconciliation data as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

// TimelineSheet is the sheet name of the timeline workbook
const TimelineSheet = "Timeline"

// ContentType is the MIME type of the produced workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var timelineHeadings = []string{
	"Date", "Account", "Actual balance", "Expected balance", "Gap",
	"Status", "Days since previous", "Transactions", "Notes",
}

// WriteTimeline writes the entries, in the given order, as an xlsx workbook.
// accountNames maps account IDs to display names; unknown accounts show their ID.
func WriteTimeline(w io.Writer, entries []*domain.TimelineEntry, accountNames map[uuid.UUID]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TimelineSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, heading := range timelineHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(TimelineSheet, cell, heading); err != nil {
			return fmt.Errorf("failed to write heading: %w", err)
		}
	}

	for i, entry := range entries {
		name, ok := accountNames[entry.AccountID]
		if !ok {
			name = entry.AccountID.String()
		}
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}

		row := []any{
			entry.Date.Format(domain.DateLayout),
			name,
			entry.ActualBalance.InexactFloat64(),
			entry.ExpectedBalance.InexactFloat64(),
			entry.Gap.InexactFloat64(),
			string(entry.Status),
			entry.DaysSincePrevious,
			entry.TransactionCount,
			notes,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(TimelineSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write timeline row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
