package wdmigrate

import "github.com/pkg/errors"

// Handler consumes one typed value per row. Handle is called exactly once
// per row with the row buffer and the decoded value; neither may be
// retained past the call, so aggregating handlers copy what they keep.
// Summary is called once after the stream ends.
type Handler interface {
	Handle(cols *Columns, v Value) error
	Summary() error
}

// Stack fans a value out to every handler in declaration order. All
// handlers observe one row's value before the next row is read.
type Stack []Handler

// Handle implements Handler.
func (s Stack) Handle(cols *Columns, v Value) error {
	for _, h := range s {
		if err := h.Handle(cols, v); err != nil {
			return err
		}
	}
	return nil
}

// Summary implements Handler, invoking each element in order.
func (s Stack) Summary() error {
	for _, h := range s {
		if err := h.Summary(); err != nil {
			return err
		}
	}
	return nil
}

// FailUnhandled is the embeddable default for handlers that must account
// for every variant: any delivery the embedding handler does not intercept
// itself, and instead delegates here, is an error.
type FailUnhandled struct{}

// Handle implements Handler by rejecting the delivery.
func (FailUnhandled) Handle(cols *Columns, v Value) error {
	return errors.Errorf("handler failed to handle %T value (kind %v)", v, v.Kind())
}

// Summary implements Handler.
func (FailUnhandled) Summary() error { return nil }

// SkipMeta is the embeddable default for handlers that only observe
// well-formed values: NoValue and Invalid deliveries delegated here are
// dropped silently, anything else still fails.
type SkipMeta struct {
	FailUnhandled
}

// Handle implements Handler.
func (s SkipMeta) Handle(cols *Columns, v Value) error {
	if IsMeta(v) {
		return nil
	}
	return s.FailUnhandled.Handle(cols, v)
}
