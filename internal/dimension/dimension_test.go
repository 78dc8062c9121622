package dimension

import (
	"testing"
	"time"

	"meeting-etl/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestBuild_DistinctDenseIDs(t *testing.T) {
	d := Build("dim_comm_type", "comm_type", "comm_type_id",
		[]*string{str("meeting"), nil, str("call"), str("meeting")})

	assert.Equal(t, 2, d.Len())
	require.NotNil(t, d.ID(str("meeting")))
	assert.Equal(t, 1, *d.ID(str("meeting")))
	assert.Equal(t, 2, *d.ID(str("call")))
	assert.Nil(t, d.ID(nil))
	assert.Nil(t, d.ID(str("sms")))

	tbl := d.Table()
	assert.Equal(t, "dim_comm_type", tbl.Name)
	assert.Equal(t, []string{"comm_type", "comm_type_id"}, tbl.ColumnNames())
	assert.Equal(t, [][]any{{"meeting", 1}, {"call", 2}}, tbl.Rows)
}

func TestBuild_Empty(t *testing.T) {
	d := Build("dim_video", "raw_video_url", "video_id", []*string{nil, nil})
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Table().Rows)
}

func TestBuildDatetime(t *testing.T) {
	d := BuildDatetime([]*string{
		str("2024-03-05T14:30:00.000Z"),
		str("2024-03-05T16:45:10+02:00"),
		str("2024-03-05T14:30:00.000Z"),
		str("not a date"),
		nil,
	})

	rows := d.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 1, d.Unparsed())

	first := rows[0]
	assert.Equal(t, 1, first.DatetimeID)
	require.NotNil(t, first.Date)
	assert.True(t, first.Date.Equal(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, 2024, *first.Year)
	assert.Equal(t, 3, *first.Month)
	assert.Equal(t, 5, *first.Day)
	assert.Equal(t, 14, *first.Hour)
	assert.Equal(t, 30, *first.Minute)

	// 转换为 UTC
	assert.Equal(t, 14, *rows[1].Hour)
	assert.Equal(t, 45, *rows[1].Minute)

	assert.Nil(t, rows[2].Date)
	assert.Nil(t, rows[2].Year)
	assert.Equal(t, 3, *d.ID(str("not a date")))

	tbl := d.Table()
	assert.Equal(t, []string{"datetime_id", "dateString", "date", "year", "month", "day", "hour", "minute"}, tbl.ColumnNames())
	assert.Nil(t, tbl.Rows[2][2])
}

func TestBuildAll(t *testing.T) {
	records := []models.CommunicationRecord{
		{ID: "c-1", CommType: str("meeting"), Subject: str("Sync"), Content: models.ParsedContent{
			CalendarID: str("cal-1"), AudioURL: str("https://a/1"), DateString: str("2024-01-01T10:00:00Z"),
		}},
		{ID: "c-2", CommType: str("meeting"), Content: models.ParsedContent{
			CalendarID: str("cal-2"), TranscriptURL: str("https://t/2"),
		}},
	}

	set := BuildAll(records)
	assert.Equal(t, 1, set.CommType.Len())
	assert.Equal(t, 1, set.Subject.Len())
	assert.Equal(t, 2, set.Calendar.Len())
	assert.Equal(t, 1, set.Audio.Len())
	assert.Equal(t, 0, set.Video.Len())
	assert.Equal(t, 1, set.Transcript.Len())
	assert.Len(t, set.Datetime.Rows(), 1)
	assert.Equal(t, "calendar_id", set.Calendar.IDColumn())
	assert.Equal(t, "dim_calendar", set.Calendar.Name())
}
