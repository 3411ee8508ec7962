// Package pgload copies normalized rows straight into Postgres, skipping
// the intermediate TSV file. It buffers the same rows the TSV emitter
// writes and flushes them with COPY in fixed-size batches.
package pgload

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pilosa/wdmigrate"
	"github.com/pkg/errors"
)

// batchSize is how many rows are buffered between COPYs; the
// latency/throughput tradeoff is mild since COPY dominates either way.
const batchSize = 10000

type flushFunc func(ctx context.Context, rows [][]interface{}) (int64, error)

// Loader is a wdmigrate.Handler that COPYs every emitted row into one
// table. The connection is opened at construction and closed by Summary.
type Loader struct {
	wdmigrate.SkipMeta

	variant wdmigrate.FileVariant
	columns []string
	ctx     context.Context
	conn    *pgx.Conn
	flush   flushFunc
	rows    [][]interface{}
}

// NewLoader connects to dsn and returns a Loader targeting table, whose
// columns must match wdmigrate.EmitColumns for the variant.
func NewLoader(ctx context.Context, dsn, table string, variant wdmigrate.FileVariant) (*Loader, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	l := newLoader(ctx, variant, nil)
	l.conn = conn
	l.flush = func(ctx context.Context, rows [][]interface{}) (int64, error) {
		return conn.CopyFrom(ctx, pgx.Identifier{table}, l.columns, pgx.CopyFromRows(rows))
	}
	return l, nil
}

func newLoader(ctx context.Context, variant wdmigrate.FileVariant, flush flushFunc) *Loader {
	return &Loader{
		variant: variant,
		columns: wdmigrate.EmitColumns(variant),
		ctx:     ctx,
		flush:   flush,
		rows:    make([][]interface{}, 0, batchSize),
	}
}

// Handle implements wdmigrate.Handler, buffering the normalized row if the
// emit rules keep it.
func (l *Loader) Handle(cols *wdmigrate.Columns, v wdmigrate.Value) error {
	if wdmigrate.IsMeta(v) {
		return l.SkipMeta.Handle(cols, v)
	}
	rec, ok := wdmigrate.NormalizedRow(l.variant, cols, v)
	if !ok {
		return nil
	}
	row := make([]interface{}, len(rec))
	for i, field := range rec {
		row[i] = field
	}
	l.rows = append(l.rows, row)
	if len(l.rows) >= batchSize {
		return l.flushRows()
	}
	return nil
}

func (l *Loader) flushRows() error {
	if len(l.rows) == 0 {
		return nil
	}
	n, err := l.flush(l.ctx, l.rows)
	if err != nil {
		return errors.Wrap(err, "copying rows")
	}
	if n != int64(len(l.rows)) {
		return errors.Errorf("copied %d of %d rows", n, len(l.rows))
	}
	l.rows = l.rows[:0]
	return nil
}

// Summary implements wdmigrate.Handler, flushing the tail batch and
// closing the connection.
func (l *Loader) Summary() error {
	if err := l.flushRows(); err != nil {
		return err
	}
	if l.conn != nil {
		return errors.Wrap(l.conn.Close(l.ctx), "closing postgres connection")
	}
	return nil
}
