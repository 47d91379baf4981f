// Package taskreport renders a task collection as a flat Excel sheet. It is
// the export surface behind GET /export/tasks.
package taskreport

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/taskpocket/taskpocket/internal/domain"
)

const sheetName = "Tasks"

var headers = []string{"ID", "Title", "Due Date", "Completed", "Owner", "Pending Sync"}

// ToBytes builds the workbook and returns the serialized xlsx content.
func ToBytes(tasks []domain.Task) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1565C0"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", h, err)
		}
	}
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", endCell, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	for i, t := range tasks {
		row := i + 2
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		values := []interface{}{t.ID, t.Title, due, t.Completed, t.Owner.Username, t.NeedsSync}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 40); err != nil {
		return nil, fmt.Errorf("failed to size title column: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
