package dimension

import (
	"time"

	"meeting-etl/internal/models"
)

// dateLayouts dateString 支持的格式（RFC3339 解析时允许小数秒）
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// DatetimeDimension dim_datetime：dateString 去重后拆分年月日时分（UTC）
type DatetimeDimension struct {
	rows     []models.DatetimeRow
	ids      map[string]int
	unparsed int
}

// BuildDatetime 构建 dim_datetime；无法解析的 dateString 仍保留一行，拆分字段为 null
func BuildDatetime(values []*string) *DatetimeDimension {
	d := &DatetimeDimension{ids: make(map[string]int)}
	for _, v := range values {
		if v == nil {
			continue
		}
		if _, ok := d.ids[*v]; ok {
			continue
		}
		row := models.DatetimeRow{DatetimeID: len(d.rows) + 1, DateString: *v}
		if ts, ok := parseDate(*v); ok {
			year, month, day := ts.Date()
			m, hour, minute := int(month), ts.Hour(), ts.Minute()
			row.Date = &ts
			row.Year = &year
			row.Month = &m
			row.Day = &day
			row.Hour = &hour
			row.Minute = &minute
		} else {
			d.unparsed++
		}
		d.rows = append(d.rows, row)
		d.ids[*v] = row.DatetimeID
	}
	return d
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// Rows 返回全部行
func (d *DatetimeDimension) Rows() []models.DatetimeRow { return d.rows }

// Unparsed 无法解析的 dateString 数量
func (d *DatetimeDimension) Unparsed() int { return d.unparsed }

// ID 按 dateString 查找代理键
func (d *DatetimeDimension) ID(v *string) *int {
	if v == nil {
		return nil
	}
	id, ok := d.ids[*v]
	if !ok {
		return nil
	}
	return &id
}

// Table 输出表
func (d *DatetimeDimension) Table() models.Table {
	t := models.Table{
		Name: "dim_datetime",
		Columns: []models.Column{
			{Name: "datetime_id", Type: models.ColInt},
			{Name: "dateString", Type: models.ColText},
			{Name: "date", Type: models.ColTime},
			{Name: "year", Type: models.ColInt},
			{Name: "month", Type: models.ColInt},
			{Name: "day", Type: models.ColInt},
			{Name: "hour", Type: models.ColInt},
			{Name: "minute", Type: models.ColInt},
		},
		Rows: make([][]any, 0, len(d.rows)),
	}
	for _, r := range d.rows {
		t.Rows = append(t.Rows, []any{
			r.DatetimeID,
			r.DateString,
			models.Cell(r.Date),
			models.Cell(r.Year),
			models.Cell(r.Month),
			models.Cell(r.Day),
			models.Cell(r.Hour),
			models.Cell(r.Minute),
		})
	}
	return t
}
