// Package export renders discharge bills as downloadable files.
package export

import (
	"bytes"
	"fmt"

	"hospital-app-server/internal/models"

	"github.com/xuri/excelize/v2"
)

// BillSheet is the worksheet holding the bill.
const BillSheet = "Bill"

const dateLayout = "2006-01-02"

// BillWorkbook renders d as a two-column Item/Value workbook.
func BillWorkbook(d *models.DischargeDetails, patientName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(BillSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(BillSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to find sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	rows := [][]interface{}{
		{"Item", "Value"},
		{"Patient", patientName},
		{"Assigned Doctor", d.AssignedDoctorName},
		{"Address", d.Address},
		{"Mobile", d.Mobile},
		{"Symptoms", d.Symptoms},
		{"Admit Date", d.AdmitDate.Format(dateLayout)},
		{"Release Date", d.ReleaseDate.Format(dateLayout)},
		{"Days Spent", d.DaySpent},
		{"Room Charge (per day)", d.RoomCharge},
		{"Doctor Fee", d.DoctorFee},
		{"Medicine Cost", d.MedicineCost},
		{"Other Charge", d.OtherCharge},
		{"Total", d.Total},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(BillSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	last := fmt.Sprintf("B%d", len(rows))
	if err := f.SetCellStyle(BillSheet, "A1", "B1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetCellStyle(BillSheet, fmt.Sprintf("A%d", len(rows)), last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style total: %w", err)
	}
	if err := f.SetColWidth(BillSheet, "A", "A", 24); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(BillSheet, "B", "B", 32); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BillFilename is the download name for a patient's bill.
func BillFilename(d *models.DischargeDetails) string {
	return fmt.Sprintf("bill-%s-%s.xlsx", d.PatientID, d.ReleaseDate.Format(dateLayout))
}
