// Package transform defines the input transformer abstraction used to turn
// encoded documents into metacards.
package transform

import (
	"bytes"
	"io"

	"github.com/eluv-io/errors-go"

	"github.com/eluv-io/catalog-go/format/metacard"
)

// InputTransformer transforms an input document into a metacard.
type InputTransformer interface {
	Transform(r io.Reader) (*metacard.Metacard, error)
}

// InputTransformerFunc adapts an ordinary function to the InputTransformer
// interface.
type InputTransformerFunc func(r io.Reader) (*metacard.Metacard, error)

func (f InputTransformerFunc) Transform(r io.Reader) (*metacard.Metacard, error) {
	return f(r)
}

// Result is the outcome of a best-effort transformation: either a metacard or
// the reason why none was produced.
type Result struct {
	Metacard *metacard.Metacard
	Err      error
}

// Ok returns true if the transformation produced a metacard.
func (r Result) Ok() bool {
	return r.Err == nil && r.Metacard != nil
}

// Try runs the given transformer on the input and captures its outcome in a
// Result. Panics raised by the transformer are recovered and reported as
// errors of kind Internal. A nil metacard without error is reported as error
// of kind NotExist.
func Try(t InputTransformer, input []byte) (res Result) {
	e := errors.Template("transform.Try")
	if t == nil {
		return Result{Err: e(errors.K.Invalid, "reason", "no transformer")}
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: e(errors.K.Internal, "reason", "transformer panicked", "panic", r)}
		}
	}()

	mc, err := t.Transform(bytes.NewReader(input))
	switch {
	case err != nil:
		return Result{Err: e(err)}
	case mc == nil:
		return Result{Err: e(errors.K.NotExist, "reason", "transformer returned no metacard")}
	}
	return Result{Metacard: mc}
}
