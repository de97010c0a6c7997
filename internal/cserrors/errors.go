// Package cserrors implements the error taxonomy of the search service:
// every expected failure is a sentinel value wrappable with context and,
// optionally, a recovery hint a caller can surface to a user.
package cserrors

import (
	"errors"
	"fmt"
)

// Kind groups sentinels the way the design groups failures: Input, Resource,
// State, Transient, Internal.
type Kind string

const (
	KindInput     Kind = "input"
	KindResource  Kind = "resource"
	KindState     Kind = "state"
	KindTransient Kind = "transient"
	KindInternal  Kind = "internal"
)

// Sentinel is a taxonomy entry: a stable code, a kind, and a default message.
type Sentinel struct {
	kind Kind
	code string
	msg  string
}

func (s *Sentinel) Error() string { return s.msg }
func (s *Sentinel) Code() string  { return s.code }
func (s *Sentinel) Kind() Kind    { return s.kind }

func newSentinel(kind Kind, code, msg string) *Sentinel {
	return &Sentinel{kind: kind, code: code, msg: msg}
}

var (
	ErrInvalidPath     = newSentinel(KindInput, "InvalidPath", "invalid workspace path")
	ErrInvalidPattern  = newSentinel(KindInput, "InvalidPattern", "invalid search pattern")
	ErrQueryTooComplex = newSentinel(KindInput, "QueryTooComplex", "query is too complex to execute safely")
	ErrOutOfRange      = newSentinel(KindInput, "ParameterOutOfRange", "parameter out of range")

	ErrNotFound        = newSentinel(KindResource, "NotFound", "path not found")
	ErrPermissionDenied = newSentinel(KindResource, "PermissionDenied", "permission denied")
	ErrDiskFull        = newSentinel(KindResource, "DiskFull", "disk full")
	ErrOutOfBudget     = newSentinel(KindResource, "OutOfBudget", "operation exceeds memory budget")

	ErrIndexLocked      = newSentinel(KindState, "IndexLocked", "index is locked by another writer")
	ErrIndexCorrupt     = newSentinel(KindState, "IndexCorrupt", "index is corrupt")
	ErrWorkspaceNotIndexed = newSentinel(KindState, "WorkspaceNotIndexed", "workspace has not been indexed")
	ErrBreakerOpen      = newSentinel(KindState, "BreakerOpen", "workspace indexing circuit breaker is open")
	ErrLockHeldByLiveHolder = newSentinel(KindState, "LockHeldByLiveHolder", "lock is held by a live process")

	ErrTimeout   = newSentinel(KindTransient, "Timeout", "operation timed out")
	ErrCancelled = newSentinel(KindTransient, "Cancelled", "operation was cancelled")
	ErrFileBusy  = newSentinel(KindTransient, "FileBusy", "file is busy")

	ErrInvariant = newSentinel(KindInternal, "InvariantViolated", "internal invariant violated")

	ErrTooManyResults = newSentinel(KindInput, "TooManyResults", "result set exceeds the maximum allowed")
)

// RecoveryHint carries user-facing remediation advice for the envelope's
// "recovery" field.
type RecoveryHint struct {
	Steps            []string `json:"steps,omitempty"`
	SuggestedActions []string `json:"suggestedActions,omitempty"`
}

type withRecovery struct {
	err    error
	hint   RecoveryHint
}

func (w *withRecovery) Error() string { return w.err.Error() }
func (w *withRecovery) Unwrap() error { return w.err }

// WithRecovery attaches a recovery hint to an error without losing errors.Is/As.
func WithRecovery(err error, hint RecoveryHint) error {
	if err == nil {
		return nil
	}
	return &withRecovery{err: err, hint: hint}
}

// Recovery extracts a recovery hint if one was attached anywhere in the chain.
func Recovery(err error) (RecoveryHint, bool) {
	var wr *withRecovery
	if errors.As(err, &wr) {
		return wr.hint, true
	}
	return RecoveryHint{}, false
}

// Code returns the machine-readable taxonomy code for an error, or "" if the
// error does not wrap a known Sentinel.
func Code(err error) string {
	var s *Sentinel
	if errors.As(err, &s) {
		return s.code
	}
	return ""
}

// KindOf returns the taxonomy kind for an error, or "" if unknown.
func KindOf(err error) Kind {
	var s *Sentinel
	if errors.As(err, &s) {
		return s.kind
	}
	return ""
}

// Wrap annotates err with a layer-specific message without swallowing it,
// following the teacher's fmt.Errorf("...: %w", err) convention throughout.
func Wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
