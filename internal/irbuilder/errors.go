package irbuilder

import "fmt"

// ErrorKind classifies builder usage errors.
type ErrorKind uint8

const (
	KindInvalidIndex ErrorKind = iota + 1
	KindUnresolvedCallTarget
	KindOperandMismatch
	KindUnknownValue
	KindUnsupportedType
	KindArityMismatch
	KindInvalidName
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidIndex:
		return "invalid index"
	case KindUnresolvedCallTarget:
		return "unresolved call target"
	case KindOperandMismatch:
		return "operand mismatch"
	case KindUnknownValue:
		return "unknown value"
	case KindUnsupportedType:
		return "unsupported type"
	case KindArityMismatch:
		return "arity mismatch"
	case KindInvalidName:
		return "invalid name"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Sentinels for errors.Is.
var (
	ErrInvalidIndex         = &BuildError{Kind: KindInvalidIndex}
	ErrUnresolvedCallTarget = &BuildError{Kind: KindUnresolvedCallTarget}
	ErrOperandMismatch      = &BuildError{Kind: KindOperandMismatch}
	ErrUnknownValue         = &BuildError{Kind: KindUnknownValue}
	ErrUnsupportedType      = &BuildError{Kind: KindUnsupportedType}
	ErrArityMismatch        = &BuildError{Kind: KindArityMismatch}
	ErrInvalidName          = &BuildError{Kind: KindInvalidName}
)

// BuildError is a usage error raised by an emission call. Nothing is
// appended to the current block when one is returned.
type BuildError struct {
	Kind   ErrorKind
	Op     string
	Detail string
	Err    error
}

func (e *BuildError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Kind so that errors.Is(err, ErrInvalidIndex) works.
func (e *BuildError) Is(target error) bool {
	be, ok := target.(*BuildError)
	return ok && be != nil && be.Kind == e.Kind
}

func buildErr(kind ErrorKind, op, format string, args ...any) *BuildError {
	return &BuildError{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}
