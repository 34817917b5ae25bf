package vm

import "github.com/pkg/errors"

// Fatal runtime error kinds. Every VM failure
// halts execution; none are recoverable mid-run.
var (
	ErrStackUnderflow     = errors.New("StackUnderflow")
	ErrIndexOutOfBounds   = errors.New("IndexOutOfBounds")
	ErrOverflow           = errors.New("Overflow")
	ErrDivisionByZero     = errors.New("DivisionByZero")
	ErrTypeMismatch       = errors.New("TypeMismatch")
	ErrInvalidInstruction = errors.New("InvalidInstruction")
	ErrBranchMalformed    = errors.New("BranchMalformed")
)

// RuntimeError pairs one of the sentinel kinds above with the
// instruction pointer where it was detected and a human-readable
// detail, the same shape `github.com/pkg/errors` wrapping gives the
// rest of the toolchain.
type RuntimeError struct {
	Kind   error
	IP     int
	Detail string
}

func (e *RuntimeError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

func fault(ip int, kind error, detail string) *RuntimeError {
	return &RuntimeError{Kind: kind, IP: ip, Detail: detail}
}
