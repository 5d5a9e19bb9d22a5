package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/beesaferoot/imobipro/internal/period"
)

const pendingSheet = "Pending expenses"

var pendingHeader = []interface{}{"ID", "Property", "Type", "Description", "Due date", "Amount", "Situation"}

// FileName is the suggested download name of the workbook.
func (r *PendingExpenses) FileName(now time.Time) string {
	return fmt.Sprintf("pending_expenses_%s.xlsx", now.Format("20060102_150405"))
}

// WriteXLSX renders the report as a workbook with a title row, a styled
// header on row 3, one row per expense and a total row.
func (r *PendingExpenses) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", pendingSheet); err != nil {
		return err
	}

	styles, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	generated := r.GeneratedOn
	if t, err := period.ParseISO(r.GeneratedOn); err == nil {
		generated = t.Format("02/01/2006")
	}
	if err := f.MergeCell(pendingSheet, "A1", "G1"); err != nil {
		return err
	}
	if err := f.SetCellValue(pendingSheet, "A1", "PENDING EXPENSES - generated on "+generated); err != nil {
		return err
	}
	if err := f.SetCellStyle(pendingSheet, "A1", "A1", styles.title); err != nil {
		return err
	}

	if err := f.SetSheetRow(pendingSheet, "A3", &pendingHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(pendingSheet, "A3", "G3", styles.header); err != nil {
		return err
	}

	row := 4
	for _, line := range r.Lines {
		situation := "Upcoming"
		if line.Overdue {
			situation = "OVERDUE"
		}
		due := line.DueDate
		if t, err := period.ParseISO(line.DueDate); err == nil {
			due = t.Format("02/01/2006")
		}

		values := []interface{}{line.ExpenseID, line.Property, string(line.Type), line.Motive, due, line.Amount.InexactFloat64(), situation}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(pendingSheet, cell, &values); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(7, row)
		if err := f.SetCellStyle(pendingSheet, cell, last, styles.cell); err != nil {
			return err
		}
		amount, _ := excelize.CoordinatesToCellName(6, row)
		if err := f.SetCellStyle(pendingSheet, amount, amount, styles.money); err != nil {
			return err
		}
		row++
	}

	label, _ := excelize.CoordinatesToCellName(5, row)
	total, _ := excelize.CoordinatesToCellName(6, row)
	if err := f.SetCellValue(pendingSheet, label, "TOTAL:"); err != nil {
		return err
	}
	if err := f.SetCellValue(pendingSheet, total, r.Total.InexactFloat64()); err != nil {
		return err
	}
	if err := f.SetCellStyle(pendingSheet, label, label, styles.bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(pendingSheet, total, total, styles.boldMoney); err != nil {
		return err
	}

	for col, width := range map[string]float64{"A": 8, "B": 35, "C": 15, "D": 25, "E": 15, "F": 15, "G": 12} {
		if err := f.SetColWidth(pendingSheet, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

type styleSet struct {
	title, header, cell, money, bold, boldMoney int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	moneyFmt := `"R$" #,##0.00`
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 14},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    border,
		}},
		{&s.cell, &excelize.Style{Border: border}},
		{&s.money, &excelize.Style{Border: border, CustomNumFmt: &moneyFmt}},
		{&s.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.boldMoney, &excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &moneyFmt}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, err
		}
		*d.dst = id
	}
	return s, nil
}
