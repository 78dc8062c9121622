package identity

import "sort"

// Index 全局邮箱/姓名索引。必须在解析任何 speaker 之前由完整的引用列表一次性构建。
type Index struct {
	emails      []string // 已排序
	emailSet    map[string]struct{}
	nameToEmail map[string]string
	emailToName map[string]string
}

// BuildIndex 扫描全部引用：
//   - host/organizer/participant/attendee 的非空邮箱进入 EmailSet
//   - 同时带姓名和邮箱的 attendee 建立 name<->email 映射（后出现的覆盖先出现的）
func BuildIndex(refs []PersonReference) *Index {
	idx := &Index{
		emailSet:    make(map[string]struct{}),
		nameToEmail: make(map[string]string),
		emailToName: make(map[string]string),
	}
	for _, ref := range refs {
		if ref.Role == RoleSpeaker || ref.Email == nil {
			continue
		}
		email := *ref.Email
		if _, ok := idx.emailSet[email]; !ok {
			idx.emailSet[email] = struct{}{}
			idx.emails = append(idx.emails, email)
		}
		if ref.Role == RoleAttendee && ref.Name != nil {
			idx.nameToEmail[*ref.Name] = email
			idx.emailToName[email] = *ref.Name
		}
	}
	sort.Strings(idx.emails)
	return idx
}

// Emails 返回排序后的邮箱集合
func (i *Index) Emails() []string {
	return i.emails
}

// HasEmail 邮箱是否出现过
func (i *Index) HasEmail(email string) bool {
	_, ok := i.emailSet[email]
	return ok
}

// EmailForName 按姓名精确查找邮箱
func (i *Index) EmailForName(name string) (string, bool) {
	email, ok := i.nameToEmail[name]
	return email, ok
}

// NameForEmail 按邮箱查找姓名
func (i *Index) NameForEmail(email string) (string, bool) {
	name, ok := i.emailToName[email]
	return name, ok
}
