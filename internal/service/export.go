package service

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{"ID", "Item", "Booker", "Start", "End", "Status"}

// ExportForOwner renders the owner's bookings in state as an XLSX workbook, newest first.
func (s *BookingService) ExportForOwner(ctx context.Context, ownerID int64, state string) ([]byte, error) {
	parsed, err := parseState(state)
	if err != nil {
		return nil, err
	}
	if _, err := requireUser(ctx, s.store, ownerID); err != nil {
		return nil, err
	}

	bookings, err := s.store.ListBookings(ctx, domain.BookingFilter{
		OwnerID: ownerID,
		State:   parsed,
		Now:     s.now(),
	})
	if err != nil {
		return nil, err
	}

	raw, err := renderBookings(bookings)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("owner_id", ownerID).Int("rows", len(bookings)).Msg("bookings exported")
	return raw, nil
}

func renderBookings(bookings []models.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, title)
		_ = f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := []interface{}{
			b.ID,
			b.Item.Name,
			b.Booker.Name,
			b.Start.Format(models.DateTimeLayout),
			b.End.Format(models.DateTimeLayout),
			string(b.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "C", 25)
	_ = f.SetColWidth(exportSheet, "D", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
