package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"meeting-etl/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	minColWidth = 12.0
	maxColWidth = 60.0
)

// ExcelWriter 把输出表写入工作簿，每张表一个工作表
type ExcelWriter struct {
	path   string
	logger *zap.Logger
}

// NewExcelWriter 创建工作簿输出
func NewExcelWriter(path string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{path: path, logger: logger}
}

// WriteTables 生成工作簿并保存到 path（目录不存在时自动创建）
func (w *ExcelWriter) WriteTables(ctx context.Context, tables []models.Table) error {
	f, err := BuildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}

	w.logger.Info("Workbook written", zap.String("path", w.path), zap.Int("sheets", len(tables)))
	return nil
}

// WriteTo 生成工作簿并写入 io.Writer
func WriteTo(out io.Writer, tables []models.Table) error {
	f, err := BuildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook 按顺序为每张表创建工作表：加粗表头、冻结首行、按内容设置列宽。
// 调用方负责 Close。
func BuildWorkbook(tables []models.Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to write")
	}
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		if i == 0 {
			// 复用默认的 Sheet1
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", table.Name, err)
		}
		if err := writeSheet(f, table, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", table.Name, err)
		}
	}
	f.SetActiveSheet(0)

	return f, nil
}

func writeSheet(f *excelize.File, table models.Table, headerStyle int) error {
	sheet := table.Name
	widths := make([]float64, len(table.Columns))

	for col, c := range table.Columns {
		if err := setCellValue(f, sheet, col+1, 1, c.Name); err != nil {
			return err
		}
		widths[col] = float64(len(c.Name)) + 2
	}
	last, err := excelize.CoordinatesToCellName(len(table.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for rowIdx, row := range table.Rows {
		for col, value := range row {
			if value == nil {
				continue
			}
			if err := setCellValue(f, sheet, col+1, rowIdx+2, value); err != nil {
				return fmt.Errorf("row %d, col %d: %w", rowIdx+2, col+1, err)
			}
			if s, ok := value.(string); ok && float64(len(s))+2 > widths[col] {
				widths[col] = float64(len(s)) + 2
			}
		}
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width = max(minColWidth, min(width, maxColWidth))
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}

	// 冻结表头
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// setCellValue 设置单元格值
func setCellValue(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
