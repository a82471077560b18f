// Package export renders reservations as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"hotelbook/internal/models"
)

const SheetName = "Bookings"

var headers = []string{
	"ID", "Hotel", "Room", "Guest", "Email", "Phone",
	"Check-in", "Check-out", "Nights", "Guests", "Total", "Paid", "Status", "Created",
}

// BookingsXLSX writes one row per booking under a bold header row.
// The caller owns the returned file and must Close it.
func BookingsXLSX(bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle)
	}

	for i, b := range bookings {
		row := []interface{}{
			b.ID,
			b.HotelID,
			b.RoomID,
			b.GuestName,
			b.GuestEmail,
			b.GuestPhone,
			b.CheckIn.Format(models.DateLayout),
			b.CheckOut.Format(models.DateLayout),
			b.Nights(),
			b.Guests,
			b.TotalAmount,
			b.PaidAmount,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "F", 20)
	_ = f.SetColWidth(SheetName, "G", "N", 14)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	return f, nil
}
