package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Session 错误：CONFLICT（乐观并发写入失败，调用方可重试）
//   - Quality 错误：INVARIANT（评分数据非法，仅剔除单个物品）
//   - 输入错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CONFLICT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "session", "quality"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 按 Module + Code 比较，使 Wrap 出来的错误与哨兵错误等价。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// Wrap 基于当前错误派生一个携带底层原因的新错误，保留 Module 与 Code。
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{Module: e.Module, Code: e.Code, Message: e.Message, Err: err}
}

// IsDomainError 检查错误链中是否包含 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 协作方不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
	ErrorCodeConflict      = "CONFLICT"       // 并发写冲突（可重试）
	ErrorCodeInvariant     = "INVARIANT"      // 计算不变量被破坏
)

// 模块名称常量
const (
	ModuleStore      = "store"
	ModuleQuality    = "quality"
	ModulePreference = "preference"
	ModuleSession    = "session"
	ModuleCatalog    = "catalog"
	ModuleEvents     = "events"
	ModuleSelector   = "selector"
)

var (
	// ErrStateConflict 表示会话状态在读取后被其他写入者修改，调用方应重试。
	ErrStateConflict = NewDomainError(ModuleSession, ErrorCodeConflict, "session: state modified concurrently")

	// ErrInvalidRating 表示评分数据不满足 rating_count >= 0 且 rating_average ∈ [0,5]。
	ErrInvalidRating = NewDomainError(ModuleQuality, ErrorCodeInvariant, "quality: rating out of range")

	// ErrUnknownTag 表示标签不在词表中。
	ErrUnknownTag = NewDomainError(ModuleCatalog, ErrorCodeInvalidInput, "catalog: unknown tag")

	// ErrCatalogUnavailable 表示物品目录读取失败。
	ErrCatalogUnavailable = NewDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: unavailable")

	// ErrEventsUnavailable 表示事件日志读取失败。
	ErrEventsUnavailable = NewDomainError(ModuleEvents, ErrorCodeUnavailable, "events: unavailable")

	// ErrInvalidDecision 表示滑动决策既不是 accept 也不是 reject。
	ErrInvalidDecision = NewDomainError(ModuleSession, ErrorCodeInvalidInput, "session: invalid decision")
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsStateConflict 检查错误是否为会话并发冲突（可重试）
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrStateConflict)
}

// IsInvariant 检查错误是否为计算不变量错误
func IsInvariant(err error) bool {
	return hasCode(err, ErrorCodeInvariant)
}
