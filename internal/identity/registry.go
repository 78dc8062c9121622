package identity

import (
	"meeting-etl/internal/models"

	"github.com/google/uuid"
)

// Registry 规范化用户注册表（dim_user）
type Registry struct {
	policy  KeyPolicy
	users   []models.User
	byKey   map[string]int
	byEmail map[string][]int
	byName  map[string][]int
	skipped int
}

// NewUUID 默认的代理键生成器
func NewUUID() string {
	return uuid.NewString()
}

// BuildRegistry 追加全部候选身份，按 policy 去重（保留首次出现），并为每个保留行生成代理键。
// 邮箱和姓名都为空的候选不会进入注册表。
func BuildRegistry(resolutions []Resolution, policy KeyPolicy, newID func() string) *Registry {
	if newID == nil {
		newID = NewUUID
	}
	reg := &Registry{
		policy:  policy,
		byKey:   make(map[string]int),
		byEmail: make(map[string][]int),
		byName:  make(map[string][]int),
	}

	for _, res := range resolutions {
		id := res.Identity
		if id.Email == nil && id.Name == nil {
			reg.skipped++
			continue
		}
		key := policy.Key(id)
		if _, ok := reg.byKey[key]; ok {
			continue
		}

		pos := len(reg.users)
		reg.users = append(reg.users, models.User{
			UserID:      newID(),
			Email:       id.Email,
			Name:        id.Name,
			Location:    id.Location,
			DisplayName: id.DisplayName,
			PhoneNumber: id.PhoneNumber,
		})
		reg.byKey[key] = pos
		if id.Email != nil {
			reg.byEmail[*id.Email] = append(reg.byEmail[*id.Email], pos)
		}
		if id.Name != nil {
			reg.byName[*id.Name] = append(reg.byName[*id.Name], pos)
		}
	}
	return reg
}

// Users 返回注册表全部用户
func (r *Registry) Users() []models.User {
	return r.users
}

// Skipped 邮箱和姓名都为空而被跳过的候选数
func (r *Registry) Skipped() int {
	return r.skipped
}

// NullEmails 邮箱为空的用户数
func (r *Registry) NullEmails() int {
	n := 0
	for _, u := range r.users {
		if u.Email == nil {
			n++
		}
	}
	return n
}

// NullNames 姓名为空的用户数
func (r *Registry) NullNames() int {
	n := 0
	for _, u := range r.users {
		if u.Name == nil {
			n++
		}
	}
	return n
}

// LookupByEmail 按邮箱关联用户。一个邮箱对应多行时优先取与 id 同键的行，否则取第一行。
func (r *Registry) LookupByEmail(id Identity) (string, bool) {
	if id.Email == nil {
		return "", false
	}
	positions := r.byEmail[*id.Email]
	if len(positions) == 0 {
		return "", false
	}
	if pos, ok := r.byKey[r.policy.Key(id)]; ok {
		for _, p := range positions {
			if p == pos {
				return r.users[pos].UserID, true
			}
		}
	}
	return r.users[positions[0]].UserID, true
}

// LookupByName 按姓名关联用户（取第一行）
func (r *Registry) LookupByName(name *string) (string, bool) {
	if name == nil {
		return "", false
	}
	positions := r.byName[*name]
	if len(positions) == 0 {
		return "", false
	}
	return r.users[positions[0]].UserID, true
}

// Table 转换为 dim_user 输出表
func (r *Registry) Table() models.Table {
	t := models.Table{
		Name: "dim_user",
		Columns: []models.Column{
			{Name: "user_id", Type: models.ColText},
			{Name: "email", Type: models.ColText},
			{Name: "name", Type: models.ColText},
			{Name: "location", Type: models.ColText},
			{Name: "displayName", Type: models.ColText},
			{Name: "phoneNumber", Type: models.ColText},
		},
		Rows: make([][]any, 0, len(r.users)),
	}
	for _, u := range r.users {
		t.Rows = append(t.Rows, []any{
			u.UserID,
			models.Cell(u.Email),
			models.Cell(u.Name),
			models.Cell(u.Location),
			models.Cell(u.DisplayName),
			models.Cell(u.PhoneNumber),
		})
	}
	return t
}
