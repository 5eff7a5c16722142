package faults

import (
	goerrors "errors"
	"fmt"

	"github.com/pkg/errors"
	"github.com/simplelauncher/sml/pkg/static"
)

// Kind classifies a failure so that the top-level command loop can map it to
// an exit code. Everything below the top level passes errors up unchanged.
type Kind int

const (
	Runtime Kind = iota
	Syntax
	Config
	InstanceBusy
	InstanceIO
	Container
	Crypto
	Transport
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case Config:
		return "configuration error"
	case InstanceBusy:
		return "instance busy"
	case InstanceIO:
		return "instance I/O error"
	case Container:
		return "container fault"
	case Crypto:
		return "crypto unavailable"
	case Transport:
		return "transport error"
	case Cancelled:
		return "cancelled"
	default:
		return "runtime fault"
	}
}

type fault struct {
	kind Kind
	err  error
}

func (f *fault) Error() string {
	return f.err.Error()
}

func (f *fault) Unwrap() error {
	return f.err
}

func New(kind Kind, message string) error {
	return &fault{kind: kind, err: goerrors.New(message)}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &fault{kind: kind, err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind and a message to an existing error. A nil error stays
// nil. The innermost kind wins during classification, so wrapping an already
// classified error does not reclassify it.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}

	return &fault{kind: kind, err: errors.Wrap(err, message)}
}

func Classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}

	return &fault{kind: kind, err: err}
}

// Of reports the kind of an error, unwrapping as needed. The innermost
// classified error determines the result.
func Of(err error) Kind {
	result := Runtime

	for err != nil {
		var f *fault
		if goerrors.As(err, &f) {
			result = f.kind
			err = f.err
			continue
		}

		break
	}

	return result
}

func Is(err error, kind Kind) bool {
	return err != nil && Of(err) == kind
}

// ExitCode maps an error to the launcher exit code contract.
func ExitCode(err error) int {
	if err == nil {
		return static.EXIT_SUCCESS
	}

	switch Of(err) {
	case Syntax:
		return static.EXIT_SYNTAX
	case Config, Crypto:
		return static.EXIT_CONFIG
	case InstanceBusy, InstanceIO, Container, Transport:
		return static.EXIT_EXECUTION
	case Cancelled:
		return static.EXIT_SUCCESS
	default:
		return static.EXIT_RUNTIME
	}
}
