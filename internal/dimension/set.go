package dimension

import "meeting-etl/internal/models"

// Set 事实表引用的全部简单维度
type Set struct {
	CommType   *Dimension
	Subject    *Dimension
	Calendar   *Dimension
	Audio      *Dimension
	Video      *Dimension
	Transcript *Dimension
	Datetime   *DatetimeDimension
}

// BuildAll 从通讯记录构建全部简单维度
func BuildAll(records []models.CommunicationRecord) *Set {
	n := len(records)
	commTypes := make([]*string, 0, n)
	subjects := make([]*string, 0, n)
	calendars := make([]*string, 0, n)
	audios := make([]*string, 0, n)
	videos := make([]*string, 0, n)
	transcripts := make([]*string, 0, n)
	dates := make([]*string, 0, n)
	for _, rec := range records {
		commTypes = append(commTypes, rec.CommType)
		subjects = append(subjects, rec.Subject)
		calendars = append(calendars, rec.Content.CalendarID)
		audios = append(audios, rec.Content.AudioURL)
		videos = append(videos, rec.Content.VideoURL)
		transcripts = append(transcripts, rec.Content.TranscriptURL)
		dates = append(dates, rec.Content.DateString)
	}

	return &Set{
		CommType:   Build("dim_comm_type", "comm_type", "comm_type_id", commTypes),
		Subject:    Build("dim_subject", "subject", "subject_id", subjects),
		Calendar:   Build("dim_calendar", "raw_calendar_id", "calendar_id", calendars),
		Audio:      Build("dim_audio", "raw_audio_url", "audio_id", audios),
		Video:      Build("dim_video", "raw_video_url", "video_id", videos),
		Transcript: Build("dim_transcript", "raw_transcript_url", "transcript_id", transcripts),
		Datetime:   BuildDatetime(dates),
	}
}
