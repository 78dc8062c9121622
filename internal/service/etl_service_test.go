package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"meeting-etl/internal/config"
	"meeting-etl/internal/identity"
	"meeting-etl/internal/models"
	"meeting-etl/internal/sink"
	"meeting-etl/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	rawMeeting1 = `{
		"id": "ff-1", "title": "Kickoff", "duration": 45.5, "calendar_id": "cal-1",
		"dateString": "2024-05-01T09:30:00.000Z",
		"audio_url": "https://cdn/a1.mp3", "video_url": null, "transcript_url": "https://app/t1",
		"host_email": "host@corp.com", "organizer_email": "host@corp.com",
		"participants": ["host@corp.com", "jd.doe@corp.com", "alice@corp.com"],
		"meeting_attendees": [
			{"email": "alice@corp.com", "name": "Alice Martin", "location": "Paris", "displayName": "Alice", "phoneNumber": "+33 1"},
			{"email": null, "name": "Dial-in User", "location": null, "displayName": null, "phoneNumber": null}
		],
		"speakers": [{"name": "Alice Martin"}, {"name": "Jane Doe"}, {"name": "Quentin Zhao"}]
	}`
	rawMeeting2 = `{
		"id": "ff-2", "title": "Follow-up", "duration": 30, "calendar_id": "cal-2",
		"dateString": "2024-05-02T14:00:00.000Z",
		"audio_url": "https://cdn/a2.mp3", "transcript_url": "https://app/t2",
		"host_email": "", "organizer_email": "alice@corp.com",
		"participants": [],
		"meeting_attendees": [{"email": "alice@corp.com", "name": null}],
		"speakers": []
	}`
)

func sampleRecords(t *testing.T) []models.CommunicationRecord {
	t.Helper()
	c1, err := models.ParseContent(rawMeeting1)
	require.NoError(t, err)
	c2, err := models.ParseContent(rawMeeting2)
	require.NoError(t, err)
	meeting := "meeting"
	subject := "Kickoff"
	return []models.CommunicationRecord{
		{ID: "c-1", SourceID: "1", CommType: &meeting, Subject: &subject, Content: c1},
		{ID: "c-2", SourceID: "1", CommType: &meeting, Content: c2},
	}
}

func tableByName(t *testing.T, tables []models.Table, name string) models.Table {
	t.Helper()
	for _, tbl := range tables {
		if tbl.Name == name {
			return tbl
		}
	}
	t.Fatalf("table %s not found", name)
	return models.Table{}
}

func TestTransform_TablesInOrder(t *testing.T) {
	result, err := Transform(sampleRecords(t), Options{}, zap.NewNop())
	require.NoError(t, err)

	names := make([]string, len(result.Tables))
	for i, tbl := range result.Tables {
		names[i] = tbl.Name
	}
	assert.Equal(t, []string{
		"fact_communication", "dim_comm_type", "dim_subject", "dim_calendar", "dim_datetime",
		"dim_user", "dim_audio", "dim_transcript", "dim_video", "bridge_comm_user",
	}, names)
}

func TestTransform_IdentityResolution(t *testing.T) {
	result, err := Transform(sampleRecords(t), Options{}, zap.NewNop())
	require.NoError(t, err)
	report := result.Report

	// c-1: host, organizer, 3 participants, 2 attendees (1 dropped), 3 speakers; c-2: organizer, 1 attendee
	assert.Equal(t, 12, report.References)
	assert.Equal(t, 11, report.Resolved)
	assert.Equal(t, 1, report.Dropped["attendee"])
	assert.Equal(t, 1, report.Methods[string(identity.MethodExactName)])
	assert.Equal(t, 1, report.Methods[string(identity.MethodInitialsSurname)])
	assert.Equal(t, 1, report.RejectedSpeakers)
	assert.Equal(t, 0, report.ArbitrarySpeakers)

	// host@corp.com(null name), jd.doe(null name), alice+Alice Martin, Jane Doe+jd.doe, Quentin Zhao(null email)
	assert.Equal(t, 5, report.Users)
	assert.Equal(t, 1, report.UserNullEmails)
	assert.Equal(t, 2, report.UserNullNames)

	assert.Equal(t, report.Resolved, report.BridgeRows)
	assert.Equal(t, 1, report.BridgeUnresolvedAfterEmail)
	assert.Equal(t, 0, report.BridgeUnresolved)

	bridge := tableByName(t, result.Tables, "bridge_comm_user")
	assert.Len(t, bridge.Rows, 11)
	assert.Equal(t, 0, bridge.NullCount("user_id"))

	// 每个桥表 user_id 都能在 dim_user 中找到
	users := tableByName(t, result.Tables, "dim_user")
	ids := make(map[any]bool)
	for _, row := range users.Rows {
		ids[row[0]] = true
	}
	for _, row := range bridge.Rows {
		assert.True(t, ids[row[1]], "bridge user_id %v not in dim_user", row[1])
	}
}

func TestTransform_FactForeignKeys(t *testing.T) {
	result, err := Transform(sampleRecords(t), Options{}, zap.NewNop())
	require.NoError(t, err)
	report := result.Report

	assert.Equal(t, 0, report.FactNullKeys["calendar_id"])
	assert.Equal(t, 0, report.FactNullKeys["datetime_id"])
	assert.Equal(t, 1, report.FactNullKeys["subject_id"])
	assert.Equal(t, 2, report.FactNullKeys["video_id"])
	assert.Equal(t, 2, report.TableRows["dim_calendar"])
	assert.Equal(t, 0, report.TableRows["dim_video"])
	assert.Equal(t, 2, report.TableRows["fact_communication"])
}

func TestTransform_ArbitraryFallbackIsFlagged(t *testing.T) {
	result, err := Transform(sampleRecords(t), Options{SpeakerFallback: identity.FallbackArbitrary}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Report.ArbitrarySpeakers)
	assert.Equal(t, 0, result.Report.RejectedSpeakers)
	assert.Equal(t, 0, result.Report.UserNullEmails)
	assert.Equal(t, "arbitrary", result.Report.SpeakerFallback)
}

func TestTransform_EmailOnlyKeyPolicy(t *testing.T) {
	result, err := Transform(sampleRecords(t), Options{KeyPolicy: identity.EmailOnlyKey{}}, zap.NewNop())
	require.NoError(t, err)

	// host, jd.doe, alice, Quentin Zhao(按姓名)
	assert.Equal(t, 4, result.Report.Users)
	assert.Equal(t, "email", result.Report.KeyPolicy)
	assert.Equal(t, result.Report.Resolved, result.Report.BridgeRows)
}

type fakeWriter struct {
	calls  int
	tables []models.Table
	err    error
}

func (f *fakeWriter) WriteTables(ctx context.Context, tables []models.Table) error {
	f.calls++
	f.tables = tables
	return f.err
}

type fakePublisher struct {
	reports []interface{}
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, report interface{}) error {
	f.reports = append(f.reports, report)
	return f.err
}

func writeInput(t *testing.T, dir string, rawContents ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(source.RequiredColumns))
	for i, c := range source.RequiredColumns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, raw := range rawContents {
		row := []any{"c-" + string(rune('1'+i)), 1, "meeting", "2024-05-01", "2024-05-01", true, "Subject", raw}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(dir, "raw_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func testConfig(input, output string) *config.Config {
	cfg := &config.Config{}
	cfg.Input.Path = input
	cfg.Output.Path = output
	cfg.Identity.SpeakerFallback = "reject"
	cfg.Identity.KeyPolicy = "email_name"
	cfg.Identity.FuzzyThreshold = 0.7
	return cfg
}

func TestRun_WritesWorkbookAndPublishesReport(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, rawMeeting1, rawMeeting2)
	output := filepath.Join(dir, "output", "final_data.xlsx")

	extra := &fakeWriter{}
	publisher := &fakePublisher{err: errors.New("redis down")}
	s, err := New(testConfig(input, output), zap.NewNop(),
		[]TableWriter{sink.NewExcelWriter(output, zap.NewNop()), extra}, publisher)
	require.NoError(t, err)

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, input, report.Input)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	assert.Equal(t, 1, extra.calls)
	assert.Len(t, extra.tables, 10)
	require.Len(t, publisher.reports, 1)

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{
		"fact_communication", "dim_comm_type", "dim_subject", "dim_calendar", "dim_datetime",
		"dim_user", "dim_audio", "dim_transcript", "dim_video", "bridge_comm_user",
	}, f.GetSheetList())
}

func TestRun_InputNotFoundWritesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "final_data.xlsx")
	writer := &fakeWriter{}

	s, err := New(testConfig(filepath.Join(dir, "missing.xlsx"), output), zap.NewNop(), []TableWriter{writer}, nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrInputNotFound)
	assert.Equal(t, 0, writer.calls)
}

func TestRun_InvalidDocumentAborts(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, rawMeeting1, `{"id": "broken"`)
	output := filepath.Join(dir, "out", "final_data.xlsx")

	s, err := New(testConfig(input, output), zap.NewNop(),
		[]TableWriter{sink.NewExcelWriter(output, zap.NewNop())}, nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	var formatErr *models.DataFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, 3, formatErr.Row)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNew_InvalidKeyPolicy(t *testing.T) {
	cfg := testConfig("in.xlsx", "out.xlsx")
	cfg.Identity.KeyPolicy = "name"
	_, err := New(cfg, zap.NewNop(), nil, nil)
	assert.Error(t, err)
}
