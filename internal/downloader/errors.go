package downloader

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindHTTP ErrorKind = iota + 1
	KindIO
	KindRangeNotSatisfiable
	KindUnsupportedServer
	KindInvalidRange
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "http error"
	case KindIO:
		return "io error"
	case KindRangeNotSatisfiable:
		return "range not satisfiable"
	case KindUnsupportedServer:
		return "server reported no usable size"
	case KindInvalidRange:
		return "invalid range header"
	default:
		return "unknown error"
	}
}

// Error is the failure of one download attempt. Kind decides whether the
// attempt loop retries it.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare kind sentinels below, so errors.Is(err, ErrIO) holds
// for every IO failure regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrHTTP                = &Error{Kind: KindHTTP}
	ErrIO                  = &Error{Kind: KindIO}
	ErrRangeNotSatisfiable = &Error{Kind: KindRangeNotSatisfiable}
	ErrUnsupportedServer   = &Error{Kind: KindUnsupportedServer}
	ErrInvalidRange        = &Error{Kind: KindInvalidRange}
)

// ErrLocked is returned by FileSystem.TryLock when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

func httpError(op string, err error) error {
	return &Error{Kind: KindHTTP, Op: op, Err: err}
}

func ioError(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}

// retryable reports whether the attempt loop should sleep and try again.
func retryable(err error) bool {
	return !errors.Is(err, ErrRangeNotSatisfiable) && !errors.Is(err, ErrUnsupportedServer)
}
