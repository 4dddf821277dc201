package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/d999ss/haevn/internal/model"
	"github.com/d999ss/haevn/internal/repository"
)

// ── export business errors ──

var (
	ErrExportNoReservations = errors.New("no reservations on that date")
	ErrExportGenerateFail   = errors.New("generating manifest failed")
)

// ExportService renders operational exports for the front desk.
//
// One export for now: the daily check-in manifest, an .xlsx listing every
// reservation on a date so staff can check guests in against their
// confirmation numbers. Returned as a buffer; the handler owns the HTTP
// headers.
type ExportService interface {
	DailyManifest(ctx context.Context, date string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── DailyManifest ──────────────────────

func (s *exportService) DailyManifest(ctx context.Context, date string) (*bytes.Buffer, string, error) {
	day, err := time.Parse(model.DateOnly, date)
	if err != nil {
		return nil, "", ErrUnknownDate
	}

	list, err := s.repo.Reservation.ListByDate(ctx, day)
	if err != nil {
		s.logger.Error("listing reservations for manifest failed", zap.String("date", date), zap.Error(err))
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", ErrExportNoReservations
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Manifest"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Confirmation #", "Time", "Tier", "Equipment", "Status", "Total"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, col+"1", h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1D6F9E"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

	for i, res := range list {
		row := i + 2
		startTime := ""
		if res.Slot != nil {
			startTime = res.Slot.StartTime
		}
		equipment := "No"
		if res.EquipmentRental {
			equipment = "Yes"
		}

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), res.ReservationID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), startTime)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), res.TierName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), equipment)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), res.Status)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), res.Total.StringFixed(2))
	}

	f.SetColWidth(sheet, "A", "A", 22)
	f.SetColWidth(sheet, "B", lastCol, 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("writing manifest workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("haevn-manifest-%s.xlsx", date)
	return buf, filename, nil
}
