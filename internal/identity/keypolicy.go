package identity

import "fmt"

// KeyPolicy 决定两条候选身份是否视为同一用户：Key 相同即去重
type KeyPolicy interface {
	Name() string
	Key(id Identity) string
}

// EmailNameKey (email, name) 完全相同才视为同一用户，null 与任何值都不同
type EmailNameKey struct{}

func (EmailNameKey) Name() string { return "email_name" }

func (EmailNameKey) Key(id Identity) string {
	return keyPart(id.Email) + "\x1f" + keyPart(id.Name)
}

// EmailOnlyKey 按邮箱去重；邮箱为空时退回按姓名
type EmailOnlyKey struct{}

func (EmailOnlyKey) Name() string { return "email" }

func (EmailOnlyKey) Key(id Identity) string {
	if id.Email != nil {
		return "e" + keyPart(id.Email)
	}
	return "n" + keyPart(id.Name)
}

func keyPart(s *string) string {
	if s == nil {
		return "\x00"
	}
	return "=" + *s
}

// NewKeyPolicy 按名称创建去重策略
func NewKeyPolicy(name string) (KeyPolicy, error) {
	switch name {
	case "", "email_name":
		return EmailNameKey{}, nil
	case "email":
		return EmailOnlyKey{}, nil
	default:
		return nil, fmt.Errorf("unknown identity key policy %q", name)
	}
}
