package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind 错误类别
type Kind string

const (
	KindMissingInput Kind = "MISSING_INPUT"
	KindSchema       Kind = "SCHEMA"
	KindDataQuality  Kind = "DATA_QUALITY"
	KindBackend      Kind = "BACKEND"
	KindRender       Kind = "RENDER"
	KindUnknown      Kind = "UNKNOWN"
)

// DomainError 按失败类别标记错误，并保留出错点的堆栈
type DomainError struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

// New 构造带调用点堆栈的领域错误。
// 构造函数禁止内联，保证堆栈从真实调用方开始。
//
//go:noinline
func New(kind Kind, message string, err error) *DomainError {
	return newError(kind, message, err, 1)
}

//go:noinline
func MissingInput(message string, err error) *DomainError {
	return newError(KindMissingInput, message, err, 1)
}

//go:noinline
func Schema(message string, err error) *DomainError {
	return newError(KindSchema, message, err, 1)
}

//go:noinline
func DataQuality(message string, err error) *DomainError {
	return newError(KindDataQuality, message, err, 1)
}

//go:noinline
func Backend(message string, err error) *DomainError {
	return newError(KindBackend, message, err, 1)
}

//go:noinline
func Render(message string, err error) *DomainError {
	return newError(KindRender, message, err, 1)
}

// newError 中 skip 为调用 newError 的导出构造函数层数
//
//go:noinline
func newError(kind Kind, message string, err error, skip int) *DomainError {
	var stack []byte
	var stackErr *goerrors.Error
	if err != nil && stderrors.As(err, &stackErr) {
		stack = stackErr.Stack()
	} else {
		cause := err
		if cause == nil {
			cause = stderrors.New(message)
		}
		// Wrap -> newError -> 构造函数 -> 调用方
		stack = goerrors.Wrap(cause, skip+1).Stack()
	}

	return &DomainError{
		Kind:    kind,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// KindOf 返回错误链中最外层 DomainError 的类别
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// StackOf 返回记录的堆栈，没有时返回 nil
func StackOf(err error) []byte {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Stack
	}
	var ge *goerrors.Error
	if stderrors.As(err, &ge) {
		return ge.Stack()
	}
	return nil
}
