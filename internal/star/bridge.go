package star

import (
	"meeting-etl/internal/identity"
	"meeting-etl/internal/models"
)

// BridgeResult 桥表及用户关联诊断
type BridgeResult struct {
	Rows                 []models.BridgeCommUser
	UnresolvedAfterEmail int // 邮箱关联后仍为空的行数
	Unresolved           int // 姓名补关联后仍为空的行数
}

// BuildBridge 每个已解析的引用一行；先按邮箱关联用户，失败再按姓名关联
func BuildBridge(resolutions []identity.Resolution, reg *identity.Registry) BridgeResult {
	res := BridgeResult{Rows: make([]models.BridgeCommUser, 0, len(resolutions))}

	for _, r := range resolutions {
		row := models.BridgeCommUser{CommID: r.Ref.CommID}
		switch r.Ref.Role {
		case identity.RoleAttendee:
			row.IsAttendee = true
		case identity.RoleParticipant:
			row.IsParticipant = true
		case identity.RoleSpeaker:
			row.IsSpeaker = true
		case identity.RoleHost, identity.RoleOrganizer:
			row.IsOrganiser = true
		}

		if userID, ok := reg.LookupByEmail(r.Identity); ok {
			row.UserID = &userID
		} else {
			res.UnresolvedAfterEmail++
			if userID, ok := reg.LookupByName(r.Identity.Name); ok {
				row.UserID = &userID
			} else {
				res.Unresolved++
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// Table 输出 bridge_comm_user
func (r BridgeResult) Table() models.Table {
	t := models.Table{
		Name: "bridge_comm_user",
		Columns: []models.Column{
			{Name: "comm_id", Type: models.ColText},
			{Name: "user_id", Type: models.ColText},
			{Name: "isAttendee", Type: models.ColBool},
			{Name: "isParticipant", Type: models.ColBool},
			{Name: "isSpeaker", Type: models.ColBool},
			{Name: "isOrganiser", Type: models.ColBool},
		},
		Rows: make([][]any, 0, len(r.Rows)),
	}
	for _, b := range r.Rows {
		t.Rows = append(t.Rows, []any{
			b.CommID,
			models.Cell(b.UserID),
			b.IsAttendee,
			b.IsParticipant,
			b.IsSpeaker,
			b.IsOrganiser,
		})
	}
	return t
}
