package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// CommunicationRecord 源表中的一行通讯记录（会议、通话）
type CommunicationRecord struct {
	RowNumber   int // 源工作表中的行号（从 1 开始，含表头）
	ID          string
	SourceID    string
	CommType    *string
	IngestedAt  *string
	ProcessedAt *string
	IsProcessed *bool
	Subject     *string
	Content     ParsedContent
}

// ParsedContent raw_content 列解析后的嵌套文档。
// 顶层标量字段按文本保存，数字、布尔等类型不一致的取值不会导致解析失败。
type ParsedContent struct {
	ID             *string    `json:"id"`
	Title          *string    `json:"title"`
	Duration       *string    `json:"duration"`
	CalendarID     *string    `json:"calendar_id"`
	DateString     *string    `json:"dateString"`
	AudioURL       *string    `json:"audio_url"`
	VideoURL       *string    `json:"video_url"`
	TranscriptURL  *string    `json:"transcript_url"`
	HostEmail      *string    `json:"host_email"`
	OrganizerEmail *string    `json:"organizer_email"`
	Participants   []*string  `json:"participants"`
	Attendees      []Attendee `json:"meeting_attendees"`
	Speakers       []Speaker  `json:"speakers"`
}

// Scalar 宽松标量：字符串取其内容，null 为 nil，其余取值（数字、布尔、对象、数组）保存原始 JSON 文本
type Scalar struct {
	Text *string
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		s.Text = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Text = &v
		return nil
	}
	v := string(data)
	s.Text = &v
	return nil
}

func (pc *ParsedContent) UnmarshalJSON(data []byte) error {
	type plain ParsedContent
	aux := struct {
		*plain
		ID             Scalar `json:"id"`
		Title          Scalar `json:"title"`
		Duration       Scalar `json:"duration"`
		CalendarID     Scalar `json:"calendar_id"`
		DateString     Scalar `json:"dateString"`
		AudioURL       Scalar `json:"audio_url"`
		VideoURL       Scalar `json:"video_url"`
		TranscriptURL  Scalar `json:"transcript_url"`
		HostEmail      Scalar `json:"host_email"`
		OrganizerEmail Scalar `json:"organizer_email"`
	}{plain: (*plain)(pc)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	pc.ID = aux.ID.Text
	pc.Title = aux.Title.Text
	pc.Duration = aux.Duration.Text
	pc.CalendarID = aux.CalendarID.Text
	pc.DateString = aux.DateString.Text
	pc.AudioURL = aux.AudioURL.Text
	pc.VideoURL = aux.VideoURL.Text
	pc.TranscriptURL = aux.TranscriptURL.Text
	pc.HostEmail = aux.HostEmail.Text
	pc.OrganizerEmail = aux.OrganizerEmail.Text
	return nil
}

// Attendee 会议参会人（唯一同时携带姓名和邮箱的角色）
type Attendee struct {
	Email       *string `json:"email"`
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	DisplayName *string `json:"displayName"`
	PhoneNumber *string `json:"phoneNumber"`
}

// Speaker 发言人，只有姓名
type Speaker struct {
	Name *string `json:"name"`
}

// ParseContent 解析 raw_content JSON，并把空字符串统一视为 null
func ParseContent(raw string) (ParsedContent, error) {
	var pc ParsedContent
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		return ParsedContent{}, err
	}
	pc.normalize()
	return pc, nil
}

func (pc *ParsedContent) normalize() {
	for _, p := range []**string{
		&pc.ID, &pc.Title, &pc.Duration, &pc.CalendarID, &pc.DateString,
		&pc.AudioURL, &pc.VideoURL, &pc.TranscriptURL,
		&pc.HostEmail, &pc.OrganizerEmail,
	} {
		*p = NullIfEmpty(*p)
	}
	for i := range pc.Participants {
		pc.Participants[i] = NullIfEmpty(pc.Participants[i])
	}
	for i := range pc.Attendees {
		a := &pc.Attendees[i]
		a.Email = NullIfEmpty(a.Email)
		a.Name = NullIfEmpty(a.Name)
		a.Location = NullIfEmpty(a.Location)
		a.DisplayName = NullIfEmpty(a.DisplayName)
		a.PhoneNumber = NullIfEmpty(a.PhoneNumber)
	}
	for i := range pc.Speakers {
		pc.Speakers[i].Name = NullIfEmpty(pc.Speakers[i].Name)
	}
}

// DurationValue 返回时长数值，缺失或不是数字（如 "45 min"）时为 nil
func (pc ParsedContent) DurationValue() *float64 {
	if pc.Duration == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*pc.Duration), 64)
	if err != nil {
		return nil
	}
	return &v
}

// NullIfEmpty 空白字符串视为 null
func NullIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// StringPtr 返回字符串指针，空字符串返回 nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref 取值，nil 返回空字符串
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
