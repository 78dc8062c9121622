package identity

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MatchMethod 标记一次解析的依据
type MatchMethod string

const (
	MethodDirect          MatchMethod = "direct"           // 邮箱、姓名都来自源字段
	MethodEmailLookup     MatchMethod = "email_lookup"     // 姓名通过 emailToName 补全
	MethodExactName       MatchMethod = "exact_name"       // speaker 姓名精确命中 nameToEmail
	MethodInitialsSurname MatchMethod = "initials_surname" // speaker 首字母+姓氏规则
	MethodFuzzy           MatchMethod = "fuzzy"            // speaker 编辑距离相似度
	MethodArbitrary       MatchMethod = "arbitrary_fallback"
	MethodRejected        MatchMethod = "rejected_low_confidence"
	MethodUnmatched       MatchMethod = "unmatched"
)

// SpeakerFallback 所有规则均未命中时 speaker 的处理策略
type SpeakerFallback string

const (
	// FallbackReject 保持邮箱为空并标记为低置信度拒绝
	FallbackReject SpeakerFallback = "reject"
	// FallbackArbitrary 兼容旧行为：指派邮箱集合中的第一个邮箱
	FallbackArbitrary SpeakerFallback = "arbitrary"
)

// DefaultFuzzyThreshold 模糊匹配阈值（严格大于）
const DefaultFuzzyThreshold = 0.7

// Identity 解析后的身份
type Identity struct {
	Email       *string
	Name        *string
	Location    *string
	DisplayName *string
	PhoneNumber *string
}

// Resolution 一次引用解析的结果
type Resolution struct {
	Ref      PersonReference
	Identity Identity
	Method   MatchMethod
}

// ResolveStats 解析统计
type ResolveStats struct {
	Resolved int
	Dropped  map[Role]int
	Methods  map[MatchMethod]int
}

// Resolver 身份解析器
type Resolver struct {
	index     *Index
	fallback  SpeakerFallback
	threshold float64
	logger    *zap.Logger
}

// NewResolver 创建身份解析器
func NewResolver(index *Index, fallback SpeakerFallback, threshold float64, logger *zap.Logger) (*Resolver, error) {
	switch fallback {
	case FallbackReject, FallbackArbitrary:
	default:
		return nil, fmt.Errorf("unknown speaker fallback %q", fallback)
	}
	return &Resolver{
		index:     index,
		fallback:  fallback,
		threshold: threshold,
		logger:    logger,
	}, nil
}

// Resolve 解析单个引用；第二个返回值为 false 表示该引用不可解析，应丢弃
func (r *Resolver) Resolve(ref PersonReference) (Resolution, bool) {
	res := Resolution{Ref: ref}

	switch ref.Role {
	case RoleHost, RoleOrganizer, RoleParticipant:
		if ref.Email == nil {
			return res, false
		}
		res.Identity.Email = ref.Email
		res.Method = MethodDirect
		if name, ok := r.index.NameForEmail(*ref.Email); ok {
			res.Identity.Name = &name
			res.Method = MethodEmailLookup
		}

	case RoleAttendee:
		if ref.Email == nil {
			return res, false
		}
		res.Identity = Identity{
			Email:       ref.Email,
			Name:        ref.Name,
			Location:    ref.Location,
			DisplayName: ref.DisplayName,
			PhoneNumber: ref.PhoneNumber,
		}
		res.Method = MethodDirect
		if ref.Name == nil {
			if name, ok := r.index.NameForEmail(*ref.Email); ok {
				res.Identity.Name = &name
				res.Method = MethodEmailLookup
			}
		}

	case RoleSpeaker:
		if ref.Name == nil {
			return res, false
		}
		email, method := r.speakerEmail(*ref.Name)
		res.Identity.Name = ref.Name
		res.Identity.Email = email
		res.Method = method
		if method == MethodArbitrary {
			r.logger.Warn("Speaker assigned arbitrary email",
				zap.String("comm_id", ref.CommID),
				zap.String("speaker", *ref.Name),
				zap.String("email", *email),
			)
		}

	default:
		return res, false
	}

	return res, true
}

// speakerEmail 只有姓名的 speaker 的邮箱解析：
// 精确姓名 -> 首字母+姓氏 -> 模糊相似度 -> 兜底策略
func (r *Resolver) speakerEmail(name string) (*string, MatchMethod) {
	if email, ok := r.index.EmailForName(name); ok {
		return &email, MethodExactName
	}

	emails := r.index.Emails()
	if len(emails) == 0 {
		return nil, MethodUnmatched
	}

	if initials, surname, ok := initialsAndSurname(name); ok {
		for _, email := range emails {
			local := localPart(email)
			if strings.Contains(local, initials) && strings.HasSuffix(local, surname) {
				return &email, MethodInitialsSurname
			}
		}
	}

	nameLower := lower(name)
	var best string
	bestScore := 0.0
	for _, email := range emails {
		score := Similarity(nameLower, localPart(email))
		if score > r.threshold && score > bestScore {
			best, bestScore = email, score
		}
	}
	if best != "" {
		return &best, MethodFuzzy
	}

	if r.fallback == FallbackArbitrary {
		email := emails[0]
		return &email, MethodArbitrary
	}
	return nil, MethodRejected
}

// ResolveAll 依次解析全部引用并统计
func (r *Resolver) ResolveAll(refs []PersonReference) ([]Resolution, ResolveStats) {
	stats := ResolveStats{
		Dropped: make(map[Role]int),
		Methods: make(map[MatchMethod]int),
	}
	resolutions := make([]Resolution, 0, len(refs))
	for _, ref := range refs {
		res, ok := r.Resolve(ref)
		if !ok {
			stats.Dropped[ref.Role]++
			continue
		}
		stats.Resolved++
		stats.Methods[res.Method]++
		resolutions = append(resolutions, res)
	}
	return resolutions, stats
}
