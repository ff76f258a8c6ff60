// Package aerr defines the error kinds shared across the Adaptrix
// preprocessor and runtime so callers can distinguish failure modes
// with errors.Is instead of matching on message text.
package aerr

import "errors"

// Kind identifies one of the named Adaptrix error conditions.
type Kind int

const (
	_ Kind = iota
	KindBadMagic
	KindUnsupported
	KindTruncated
	KindMisaligned
	KindOversize
	KindNonManifold
	KindBuildAborted
	KindDeviceLost
)

func (k Kind) String() string {
	switch k {
	case KindBadMagic:
		return "BadMagic"
	case KindUnsupported:
		return "Unsupported"
	case KindTruncated:
		return "Truncated"
	case KindMisaligned:
		return "Misaligned"
	case KindOversize:
		return "Oversize"
	case KindNonManifold:
		return "NonManifold"
	case KindBuildAborted:
		return "BuildAborted"
	case KindDeviceLost:
		return "DeviceLost"
	default:
		return "Unknown"
	}
}

// Error is a typed sentinel carrying one of the Kind values plus a
// human-readable message. Use errors.Is against the exported Err*
// values below to branch on kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is makes errors.Is(err, ErrOversize) etc. work by comparing kinds
// rather than pointer identity, so a wrapped *Error with a different
// message still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error for the given kind with a formatted message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Sentinels for errors.Is comparisons: errors.Is(err, aerr.ErrOversize).
var (
	ErrBadMagic     = &Error{Kind: KindBadMagic}
	ErrUnsupported  = &Error{Kind: KindUnsupported}
	ErrTruncated    = &Error{Kind: KindTruncated}
	ErrMisaligned   = &Error{Kind: KindMisaligned}
	ErrOversize     = &Error{Kind: KindOversize}
	ErrNonManifold  = &Error{Kind: KindNonManifold}
	ErrBuildAborted = &Error{Kind: KindBuildAborted}
	ErrDeviceLost   = &Error{Kind: KindDeviceLost}
)

// As is a small helper mirroring errors.As for the common case of
// wanting the Kind out of an arbitrary error chain.
func As(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
