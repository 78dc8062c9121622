package models

import "time"

// User 规范化后的用户（dim_user 的一行）
type User struct {
	UserID      string
	Email       *string
	Name        *string
	Location    *string
	DisplayName *string
	PhoneNumber *string
}

// FactCommunication fact_communication 的一行
type FactCommunication struct {
	CommID       string
	RawID        *string
	SourceID     string
	CommTypeID   *int
	SubjectID    *int
	CalendarID   *int
	AudioID      *int
	VideoID      *int
	TranscriptID *int
	DatetimeID   *int
	IngestedAt   *string
	ProcessedAt  *string
	IsProcessed  *bool
	RawTitle     *string
	RawDuration  *float64
}

// BridgeCommUser bridge_comm_user 的一行
type BridgeCommUser struct {
	CommID        string
	UserID        *string
	IsAttendee    bool
	IsParticipant bool
	IsSpeaker     bool
	IsOrganiser   bool
}

// DatetimeRow dim_datetime 的一行
type DatetimeRow struct {
	DatetimeID int
	DateString string
	Date       *time.Time // UTC，去掉时区
	Year       *int
	Month      *int
	Day        *int
	Hour       *int
	Minute     *int
}

// ColumnType 输出列类型（用于工作簿和数据库建表）
type ColumnType int

const (
	ColText ColumnType = iota
	ColInt
	ColFloat
	ColBool
	ColTime
)

// Column 输出列
type Column struct {
	Name string
	Type ColumnType
}

// Table 通用输出表，Rows 中 nil 表示 null
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames 返回列名列表
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NullCount 统计某列的 null 数量，列不存在返回 -1
func (t *Table) NullCount(column string) int {
	idx := -1
	for i, c := range t.Columns {
		if c.Name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return -1
	}
	n := 0
	for _, row := range t.Rows {
		if row[idx] == nil {
			n++
		}
	}
	return n
}

// Cell 把可空指针转换为单元格值（nil 指针 -> nil）
func Cell[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
