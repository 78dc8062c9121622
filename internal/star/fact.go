package star

import (
	"meeting-etl/internal/dimension"
	"meeting-etl/internal/models"
)

// FactKeyColumns 事实表外键列（诊断输出顺序）
var FactKeyColumns = []string{
	"comm_type_id",
	"subject_id",
	"calendar_id",
	"datetime_id",
	"audio_id",
	"transcript_id",
	"video_id",
}

// FactResult 事实表及各外键的 null 计数
type FactResult struct {
	Rows     []models.FactCommunication
	NullKeys map[string]int
}

// BuildFact 每条记录一行，按自然键左连接各维度；取不到的外键留空并计数，不丢弃记录
func BuildFact(records []models.CommunicationRecord, dims *dimension.Set) FactResult {
	res := FactResult{
		Rows:     make([]models.FactCommunication, 0, len(records)),
		NullKeys: make(map[string]int, len(FactKeyColumns)),
	}
	for _, col := range FactKeyColumns {
		res.NullKeys[col] = 0
	}

	for _, rec := range records {
		c := rec.Content
		row := models.FactCommunication{
			CommID:       rec.ID,
			RawID:        c.ID,
			SourceID:     rec.SourceID,
			CommTypeID:   dims.CommType.ID(rec.CommType),
			SubjectID:    dims.Subject.ID(rec.Subject),
			CalendarID:   dims.Calendar.ID(c.CalendarID),
			AudioID:      dims.Audio.ID(c.AudioURL),
			VideoID:      dims.Video.ID(c.VideoURL),
			TranscriptID: dims.Transcript.ID(c.TranscriptURL),
			DatetimeID:   dims.Datetime.ID(c.DateString),
			IngestedAt:   rec.IngestedAt,
			ProcessedAt:  rec.ProcessedAt,
			IsProcessed:  rec.IsProcessed,
			RawTitle:     c.Title,
			RawDuration:  c.DurationValue(),
		}

		for col, id := range map[string]*int{
			"comm_type_id":  row.CommTypeID,
			"subject_id":    row.SubjectID,
			"calendar_id":   row.CalendarID,
			"datetime_id":   row.DatetimeID,
			"audio_id":      row.AudioID,
			"transcript_id": row.TranscriptID,
			"video_id":      row.VideoID,
		} {
			if id == nil {
				res.NullKeys[col]++
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// Table 输出 fact_communication
func (r FactResult) Table() models.Table {
	t := models.Table{
		Name: "fact_communication",
		Columns: []models.Column{
			{Name: "comm_id", Type: models.ColText},
			{Name: "raw_id", Type: models.ColText},
			{Name: "source_id", Type: models.ColText},
			{Name: "comm_type_id", Type: models.ColInt},
			{Name: "subject_id", Type: models.ColInt},
			{Name: "calendar_id", Type: models.ColInt},
			{Name: "audio_id", Type: models.ColInt},
			{Name: "video_id", Type: models.ColInt},
			{Name: "transcript_id", Type: models.ColInt},
			{Name: "datetime_id", Type: models.ColInt},
			{Name: "ingested_at", Type: models.ColText},
			{Name: "processed_at", Type: models.ColText},
			{Name: "is_processed", Type: models.ColBool},
			{Name: "raw_title", Type: models.ColText},
			{Name: "raw_duration", Type: models.ColFloat},
		},
		Rows: make([][]any, 0, len(r.Rows)),
	}
	for _, f := range r.Rows {
		t.Rows = append(t.Rows, []any{
			f.CommID,
			models.Cell(f.RawID),
			f.SourceID,
			models.Cell(f.CommTypeID),
			models.Cell(f.SubjectID),
			models.Cell(f.CalendarID),
			models.Cell(f.AudioID),
			models.Cell(f.VideoID),
			models.Cell(f.TranscriptID),
			models.Cell(f.DatetimeID),
			models.Cell(f.IngestedAt),
			models.Cell(f.ProcessedAt),
			models.Cell(f.IsProcessed),
			models.Cell(f.RawTitle),
			models.Cell(f.RawDuration),
		})
	}
	return t
}
