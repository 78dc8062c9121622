package service

import "time"

// Report 一次运行的诊断报告（软失败只计数，不中断运行）
type Report struct {
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Input           string    `json:"input"`
	KeyPolicy       string    `json:"key_policy"`
	SpeakerFallback string    `json:"speaker_fallback"`

	Records    int            `json:"records"`
	References int            `json:"references"`
	Resolved   int            `json:"resolved"`
	Dropped    map[string]int `json:"dropped"`
	Methods    map[string]int `json:"methods"`

	// 兜底随意指派邮箱的 speaker 数（身份可能错误）
	ArbitrarySpeakers int `json:"arbitrary_speakers"`
	// 被拒绝的低置信度 speaker 数（邮箱保持为空）
	RejectedSpeakers int `json:"rejected_speakers"`

	Users           int `json:"users"`
	UserNullEmails  int `json:"user_null_emails"`
	UserNullNames   int `json:"user_null_names"`
	RegistrySkipped int `json:"registry_skipped"`

	UnparsedDates int            `json:"unparsed_dates"`
	FactNullKeys  map[string]int `json:"fact_null_keys"`

	BridgeRows                 int `json:"bridge_rows"`
	BridgeUnresolvedAfterEmail int `json:"bridge_unresolved_after_email"`
	BridgeUnresolved           int `json:"bridge_unresolved"`

	TableRows map[string]int `json:"table_rows"`
}
