package service

import (
	"meeting-etl/internal/dimension"
	"meeting-etl/internal/identity"
	"meeting-etl/internal/models"
	"meeting-etl/internal/star"

	"go.uber.org/zap"
)

// Options 身份解析相关选项
type Options struct {
	SpeakerFallback identity.SpeakerFallback
	KeyPolicy       identity.KeyPolicy
	FuzzyThreshold  float64       // 0 表示使用默认阈值；config.Load 不接受 0
	NewID           func() string // 用户代理键生成器，nil 时使用 UUID
}

// Result 转换结果：按输出顺序排列的十张表及诊断报告
type Result struct {
	Tables []models.Table
	Report *Report
}

// Transform 严格按阶段顺序执行：
// 展开引用 -> 构建全局索引 -> 逐个解析 -> 用户注册表 -> 维度 -> 事实表与桥表
func Transform(records []models.CommunicationRecord, opts Options, logger *zap.Logger) (*Result, error) {
	if opts.KeyPolicy == nil {
		opts.KeyPolicy = identity.EmailNameKey{}
	}
	if opts.SpeakerFallback == "" {
		opts.SpeakerFallback = identity.FallbackReject
	}
	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = identity.DefaultFuzzyThreshold
	}

	report := &Report{
		KeyPolicy:       opts.KeyPolicy.Name(),
		SpeakerFallback: string(opts.SpeakerFallback),
		Records:         len(records),
		Dropped:         make(map[string]int),
		Methods:         make(map[string]int),
		TableRows:       make(map[string]int),
	}

	refs := identity.EnumerateReferences(records)
	report.References = len(refs)

	// speaker 解析依赖全部邮箱/姓名观测，索引必须先完整构建
	index := identity.BuildIndex(refs)
	resolver, err := identity.NewResolver(index, opts.SpeakerFallback, opts.FuzzyThreshold, logger)
	if err != nil {
		return nil, err
	}
	resolutions, stats := resolver.ResolveAll(refs)
	report.Resolved = stats.Resolved
	for role, n := range stats.Dropped {
		report.Dropped[role.String()] = n
	}
	for method, n := range stats.Methods {
		report.Methods[string(method)] = n
	}
	report.ArbitrarySpeakers = stats.Methods[identity.MethodArbitrary]
	report.RejectedSpeakers = stats.Methods[identity.MethodRejected]
	logger.Info("References resolved",
		zap.Int("references", report.References),
		zap.Int("resolved", report.Resolved),
		zap.Any("dropped", report.Dropped),
		zap.Any("methods", report.Methods),
	)
	if report.ArbitrarySpeakers > 0 {
		logger.Warn("Speakers assigned arbitrary emails", zap.Int("count", report.ArbitrarySpeakers))
	}

	registry := identity.BuildRegistry(resolutions, opts.KeyPolicy, opts.NewID)
	report.Users = len(registry.Users())
	report.UserNullEmails = registry.NullEmails()
	report.UserNullNames = registry.NullNames()
	report.RegistrySkipped = registry.Skipped()
	logger.Info("dim_user built",
		zap.Int("rows", report.Users),
		zap.Int("null_emails", report.UserNullEmails),
		zap.Int("null_names", report.UserNullNames),
	)

	dims := dimension.BuildAll(records)
	report.UnparsedDates = dims.Datetime.Unparsed()
	if report.UnparsedDates > 0 {
		logger.Warn("Unparsed dateString values in dim_datetime", zap.Int("count", report.UnparsedDates))
	}

	fact := star.BuildFact(records, dims)
	report.FactNullKeys = fact.NullKeys
	fields := make([]zap.Field, 0, len(star.FactKeyColumns)+1)
	fields = append(fields, zap.Int("rows", len(fact.Rows)))
	for _, col := range star.FactKeyColumns {
		fields = append(fields, zap.Int("null_"+col, fact.NullKeys[col]))
	}
	logger.Info("fact_communication built", fields...)

	bridge := star.BuildBridge(resolutions, registry)
	report.BridgeRows = len(bridge.Rows)
	report.BridgeUnresolvedAfterEmail = bridge.UnresolvedAfterEmail
	report.BridgeUnresolved = bridge.Unresolved
	logger.Info("bridge_comm_user built",
		zap.Int("rows", report.BridgeRows),
		zap.Int("null_user_id_after_email_join", report.BridgeUnresolvedAfterEmail),
		zap.Int("null_user_id", report.BridgeUnresolved),
	)

	tables := []models.Table{
		fact.Table(),
		dims.CommType.Table(),
		dims.Subject.Table(),
		dims.Calendar.Table(),
		dims.Datetime.Table(),
		registry.Table(),
		dims.Audio.Table(),
		dims.Transcript.Table(),
		dims.Video.Table(),
		bridge.Table(),
	}
	for _, t := range tables {
		report.TableRows[t.Name] = len(t.Rows)
		logger.Debug("Table built", zap.String("table", t.Name), zap.Int("rows", len(t.Rows)))
	}

	return &Result{Tables: tables, Report: report}, nil
}
