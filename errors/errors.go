package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the execution pipeline the error occurred
type Phase string

const (
	PhaseParse   Phase = "parse"   // serialized-object decoding
	PhaseState   Phase = "state"   // hook-state cache / write-back
	PhaseKeylet  Phase = "keylet"  // keylet construction
	PhaseEmit    Phase = "emit"    // emitted-txn validation / insertion
	PhaseLedger  Phase = "ledger"  // ledger view / store access
	PhaseExecute Phase = "execute" // guest instantiation and run
	PhaseCommit  Phase = "commit"  // post-run application of effects
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed     Kind = "malformed"
	KindNotFound      Kind = "not_found"
	KindTooLarge      Kind = "too_large"
	KindDirFull       Kind = "dir_full"
	KindReserve       Kind = "insufficient_reserve"
	KindBadLedger     Kind = "bad_ledger"
	KindInternal      Kind = "internal"
	KindStore         Kind = "store"
	KindInstantiation Kind = "instantiation"
	KindMissingExport Kind = "missing_export"
)

// Error is the structured error type used on the host side of the core.
// Guest-visible failures are int64 sentinels, never this type.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by phase and kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the object path (eg. account, state key)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common patterns

// Internal wraps an unexpected host-side failure
func Internal(phase Phase, what string, cause error) *Error {
	return &Error{Phase: phase, Kind: KindInternal, Detail: what, Cause: cause}
}

// Malformed reports undecodable serialized input
func Malformed(phase Phase, what string) *Error {
	return &Error{Phase: phase, Kind: KindMalformed, Detail: what}
}

// NotFound reports a missing ledger object
func NotFound(phase Phase, what string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Detail: what}
}

// Store wraps a failure of the backing key-value store
func Store(what string, cause error) *Error {
	return &Error{Phase: PhaseLedger, Kind: KindStore, Detail: what, Cause: cause}
}

// Execute wraps a guest instantiation or invocation failure
func Execute(what string, cause error) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindInstantiation, Detail: what, Cause: cause}
}
