package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"meeting-etl/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ErrInputNotFound 输入文件不存在
var ErrInputNotFound = errors.New("input file not found")

// RequiredColumns 源表必需的列
var RequiredColumns = []string{
	"id",
	"source_id",
	"comm_type",
	"ingested_at",
	"processed_at",
	"is_processed",
	"subject",
	"raw_content",
}

// ExcelLoader 从工作簿读取通讯记录
type ExcelLoader struct {
	logger *zap.Logger
}

// NewExcelLoader 创建工作簿读取器
func NewExcelLoader(logger *zap.Logger) *ExcelLoader {
	return &ExcelLoader{logger: logger}
}

// LoadFile 读取文件；sheet 为空时读取第一个工作表
func (l *ExcelLoader) LoadFile(path string, sheet string) ([]models.CommunicationRecord, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat input %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	return l.load(f, sheet)
}

// LoadReader 从 io.Reader 读取工作簿
func (l *ExcelLoader) LoadReader(r io.Reader, sheet string) ([]models.CommunicationRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer f.Close()

	return l.load(f, sheet)
}

func (l *ExcelLoader) load(f *excelize.File, sheet string) ([]models.CommunicationRecord, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}

	// 表头 -> 列索引
	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		headerMap[strings.TrimSpace(h)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := headerMap[col]; !ok {
			return nil, fmt.Errorf("sheet %s is missing required column %q", sheet, col)
		}
	}

	records := make([]models.CommunicationRecord, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isBlankRow(row) {
			continue
		}
		cell := func(col string) string {
			idx := headerMap[col]
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		rowNumber := rowIdx + 1
		raw := cell("raw_content")
		if raw == "" {
			return nil, &models.DataFormatError{Row: rowNumber, Column: "raw_content", Message: "empty document"}
		}
		content, err := models.ParseContent(raw)
		if err != nil {
			return nil, &models.DataFormatError{Row: rowNumber, Column: "raw_content", Message: "invalid JSON", Err: err}
		}

		records = append(records, models.CommunicationRecord{
			RowNumber:   rowNumber,
			ID:          cell("id"),
			SourceID:    cell("source_id"),
			CommType:    models.StringPtr(cell("comm_type")),
			IngestedAt:  models.StringPtr(cell("ingested_at")),
			ProcessedAt: models.StringPtr(cell("processed_at")),
			IsProcessed: parseBool(cell("is_processed")),
			Subject:     models.StringPtr(cell("subject")),
			Content:     content,
		})
	}

	l.logger.Info("Loaded communication records",
		zap.String("sheet", sheet),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseBool 解析 TRUE/FALSE/1/0，无法识别时为 nil
func parseBool(v string) *bool {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		switch strings.ToLower(v) {
		case "yes":
			b = true
		case "no":
			b = false
		default:
			return nil
		}
	}
	return &b
}
