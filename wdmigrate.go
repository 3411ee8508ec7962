package wdmigrate

import "io"

// RowReader is the interface for the delimited-record tokenizer. ReadRow
// returns one record as its raw fields, io.EOF at clean end of input, or an
// error for a structurally broken record. The returned slice may be reused
// by the next call.
type RowReader interface {
	ReadRow() ([]string, error)
}

// NamedReadCloser is a byte stream that knows where it came from, so
// diagnostics and progress output can name the file being parsed.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
}

// RawSource yields successive named byte streams, one per dump part, and
// io.EOF when there are no more. Implementations should be safe for use by
// a single reader.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}
