package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExcelReporter writes scan results to a multi-sheet workbook.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

type excelStyles struct {
	header  int
	number  int
	percent int
}

// WriteWorkbook writes a Signals sheet and a Summary sheet to path,
// creating parent directories as needed.
func (r *ExcelReporter) WriteWorkbook(report *ScanReport, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const signalsSheet = "Signals"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), signalsSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := r.createStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSignalsSheet(fx, signalsSheet, report, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, report, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.number, err = fx.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.percent, err = fx.NewStyle(&excelize.Style{
		NumFmt: 9, // 0%
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeSignalsSheet(fx *excelize.File, sheet string, report *ScanReport, styles excelStyles) error {
	headers := []string{"Asset", "Type", "Strategy", "Timestamp", "Price", "Strength", "Confidence", "Reason"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return err
		}
	}

	row := 2
	for _, sig := range collectSignals(report.Results) {
		values := []interface{}{
			sig.signal.AssetID,
			string(sig.signal.Type),
			sig.strategy,
			sig.signal.Timestamp.Format("2006-01-02 15:04:05"),
			sig.signal.Price,
			sig.signal.Strength,
			sig.signal.Confidence,
			sig.signal.Reason,
		}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		priceCell, _ := excelize.CoordinatesToCellName(5, row)
		if err := fx.SetCellStyle(sheet, priceCell, priceCell, styles.number); err != nil {
			return err
		}
		strengthCell, _ := excelize.CoordinatesToCellName(6, row)
		confCell, _ := excelize.CoordinatesToCellName(7, row)
		if err := fx.SetCellStyle(sheet, strengthCell, confCell, styles.percent); err != nil {
			return err
		}
		row++
	}

	return fx.SetColWidth(sheet, "A", "H", 18)
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, report *ScanReport, styles excelStyles) error {
	headers := []string{"Strategy", "Success", "Signals", "Error"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return err
		}
	}

	for i, res := range report.Results {
		values := []interface{}{
			res.Strategy,
			res.Success,
			len(res.Signals),
			res.Error,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return fx.SetColWidth(sheet, "A", "D", 20)
}
