package identity

import "meeting-etl/internal/models"

// Role 人员在一次通讯中的角色
type Role int

const (
	RoleHost Role = iota
	RoleOrganizer
	RoleParticipant
	RoleAttendee
	RoleSpeaker
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleOrganizer:
		return "organizer"
	case RoleParticipant:
		return "participant"
	case RoleAttendee:
		return "attendee"
	case RoleSpeaker:
		return "speaker"
	default:
		return "unknown"
	}
}

// PersonReference 某条通讯记录声明"某人以某角色出现"
// host/organizer/participant 只有 Email；attendee 可带全部字段；speaker 只有 Name
type PersonReference struct {
	CommID      string
	Role        Role
	Email       *string
	Name        *string
	Location    *string
	DisplayName *string
	PhoneNumber *string
}

// EnumerateReferences 按记录顺序展开所有人员引用：
// host, organizer, participants, attendees, speakers。
// 缺失的 host/organizer/participant 字段不产生引用；attendee 与 speaker 条目总会产生引用，
// 是否可解析由 Resolver 决定。
func EnumerateReferences(records []models.CommunicationRecord) []PersonReference {
	var refs []PersonReference
	for _, rec := range records {
		c := rec.Content
		if c.HostEmail != nil {
			refs = append(refs, PersonReference{CommID: rec.ID, Role: RoleHost, Email: c.HostEmail})
		}
		if c.OrganizerEmail != nil {
			refs = append(refs, PersonReference{CommID: rec.ID, Role: RoleOrganizer, Email: c.OrganizerEmail})
		}
		for _, p := range c.Participants {
			if p != nil {
				refs = append(refs, PersonReference{CommID: rec.ID, Role: RoleParticipant, Email: p})
			}
		}
		for _, a := range c.Attendees {
			refs = append(refs, PersonReference{
				CommID:      rec.ID,
				Role:        RoleAttendee,
				Email:       a.Email,
				Name:        a.Name,
				Location:    a.Location,
				DisplayName: a.DisplayName,
				PhoneNumber: a.PhoneNumber,
			})
		}
		for _, s := range c.Speakers {
			refs = append(refs, PersonReference{CommID: rec.ID, Role: RoleSpeaker, Name: s.Name})
		}
	}
	return refs
}
