package types

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectivity marks a fetch refused before any I/O because the host
	// has no eligible network.
	ErrConnectivity = errors.New("no network connectivity")
	// ErrTransport marks HTTP, timeout and empty-content failures.
	ErrTransport = errors.New("transport error")
	// ErrParse marks any failure to decode the response document.
	ErrParse = errors.New("parse error")
	// ErrStructural marks a document that is malformed or has the wrong shape.
	ErrStructural = errors.New("structural error")
	// ErrNoContent is returned when the document held no records.
	ErrNoContent = errors.New("no response received")
	// ErrReadTimeout is returned when the body stalls past the read timeout.
	ErrReadTimeout = errors.New("read timed out")
)

// ConnectivityError records the network snapshot that failed the precondition.
type ConnectivityError struct {
	Info NetworkInfo
}

func (e *ConnectivityError) Error() string {
	if !e.Info.Connected {
		return ErrConnectivity.Error()
	}
	return fmt.Sprintf("%s: ineligible transport %s", ErrConnectivity, e.Info.Type)
}

func (e *ConnectivityError) Unwrap() error { return ErrConnectivity }

// TransportError is a failure talking to the endpoint. StatusCode is set for
// non-200 responses.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP error code: %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrTransport.Error()
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// Timeout reports whether the failure was a connect or read timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, ErrReadTimeout) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// StructuralError is a malformed or wrongly shaped document. It matches both
// ErrParse and ErrStructural.
type StructuralError struct {
	Line int // 0 when unknown
	Msg  string
	Err  error
}

func (e *StructuralError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Line > 0 {
		return fmt.Sprintf("malformed document (line %d): %s", e.Line, msg)
	}
	return "malformed document: " + msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

func (e *StructuralError) Is(target error) bool {
	return target == ErrParse || target == ErrStructural
}

// ErrorKind is the coarse class of a fetch failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConnectivity
	KindTransport
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrConnectivity):
		return KindConnectivity
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}
