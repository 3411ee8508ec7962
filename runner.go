package wdmigrate

import (
	"io"
	"os"

	"github.com/pilosa/wdmigrate/termstat"
	"github.com/pilosa/wdmigrate/tsv"
	"github.com/pkg/errors"
)

// Runner drives one migration: it streams records from a source, binds
// them to the variant's column schema, dispatches each row through the
// parser chain into the handler stack, and triggers the handlers'
// summaries once the stream ends cleanly. Everything is strictly serial;
// the row buffer and each value are owned by one Handle call at a time.
type Runner struct {
	Variant FileVariant
	Handler Handler

	// Parsers defaults to Primitives.
	Parsers []ValueParser

	// ProgressOut is where the progress meter draws; nil means stderr.
	ProgressOut io.Writer
}

// Run streams all records from rows into the handler stack, then runs the
// summaries. The label names the stream in progress output.
func (r *Runner) Run(rows RowReader, label string) error {
	if err := r.stream(rows, label); err != nil {
		return err
	}
	return errors.Wrap(r.Handler.Summary(), "running summaries")
}

// RunSource streams every reader the source yields, in order, through one
// shared handler stack, summarizing once at the end.
func (r *Runner) RunSource(rs RawSource) error {
	cols := NewColumns(r.Variant)
	for {
		reader, err := rs.NextReader()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "getting next reader")
		}
		err = r.streamCols(cols, tsv.NewReader(reader, cols.Arity()), "parsing "+reader.Name())
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", reader.Name())
		}
		if err != nil {
			return err
		}
	}
	return errors.Wrap(r.Handler.Summary(), "running summaries")
}

func (r *Runner) stream(rows RowReader, label string) error {
	return r.streamCols(NewColumns(r.Variant), rows, label)
}

func (r *Runner) streamCols(cols *Columns, rows RowReader, label string) error {
	parsers := r.Parsers
	if parsers == nil {
		parsers = Primitives
	}
	out := r.ProgressOut
	if out == nil {
		out = os.Stderr
	}
	progress := termstat.NewProgress(out, label)
	progress.Start()
	for {
		ok, err := cols.ReadNext(rows)
		if err != nil {
			return errors.Wrap(err, label)
		}
		if !ok {
			break
		}
		if err := ParseRow(parsers, cols, r.Handler); err != nil {
			return errors.Wrap(err, label)
		}
		progress.Update()
	}
	progress.Done()
	return nil
}
