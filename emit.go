package wdmigrate

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// The target SQL timestamp range. Rows whose year is at or below
// minEmitYear, or at or above maxEmitYear, are dropped by the emitters;
// they still count as parsed.
const (
	minEmitYear = -4713
	maxEmitYear = 294276
)

// timestampLayout renders an ISO-8601 timestamp with a numeric zone
// offset; instants are always UTC so the offset is +0000.
const timestampLayout = "2006-01-02T15:04:05-0700"

var claimsEmitColumns = []string{
	"entity_id", "claim_id", "property", "datavalue_datatype",
	"datavalue_string", "datavalue_entity_id", "datavalue_time", "datavalue_numeric",
}

var qualifiersEmitColumns = []string{
	"claim_id", "qualifier_property", "datavalue_datatype",
	"datavalue_string", "datavalue_entity_id", "datavalue_time", "datavalue_numeric",
}

// EmitColumns returns the output column names for the variant, in order.
func EmitColumns(variant FileVariant) []string {
	if variant == Claims {
		return claimsEmitColumns
	}
	return qualifiersEmitColumns
}

// NormalizedRow renders the output row for one delivery, or false when the
// emitters drop it: NoValue and Invalid deliveries, coordinates,
// non-English monolingual text, and timestamps outside the target SQL
// range. Unpopulated columns are empty strings.
func NormalizedRow(variant FileVariant, cols *Columns, v Value) ([]string, bool) {
	var str, entityID, timestamp, numeric string
	switch v := v.(type) {
	case String:
		str = v.Value
	case EntityID:
		entityID = v.Value
	case Text:
		if v.Language != "en" {
			return nil, false
		}
		str = v.Text
	case Time:
		year := v.Instant.Year()
		if year <= minEmitYear || year >= maxEmitYear {
			return nil, false
		}
		timestamp = v.Instant.UTC().Format(timestampLayout)
		entityID = v.CalendarModel
	case Quantity:
		numeric = v.Amount
		if v.Unit != "" {
			entityID = v.Unit
		}
	default:
		// Coordinates have no relational shape yet; meta deliveries carry
		// nothing to write.
		return nil, false
	}
	if variant == Claims {
		return []string{cols.EntityID, cols.ClaimID, cols.Property, cols.DatavalueType,
			str, entityID, timestamp, numeric}, true
	}
	return []string{cols.ClaimID, cols.QualifierProperty, cols.DatavalueType,
		str, entityID, timestamp, numeric}, true
}

// Emitter writes one tab-separated line per parsed value that NormalizedRow
// keeps, in the claims or qualifiers output shape. The destination is opened at construction and
// closed by Summary; an aborted run leaves a truncated file behind, which
// is fine for a batch tool re-run from scratch.
type Emitter struct {
	SkipMeta

	variant FileVariant
	f       *os.File
	w       *bufio.Writer
}

// NewEmitter creates (truncating) the destination file.
func NewEmitter(variant FileVariant, path string) (*Emitter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return &Emitter{variant: variant, f: f, w: bufio.NewWriter(f)}, nil
}

// Handle implements Handler.
func (e *Emitter) Handle(cols *Columns, v Value) error {
	if IsMeta(v) {
		return e.SkipMeta.Handle(cols, v)
	}
	row, ok := NormalizedRow(e.variant, cols, v)
	if !ok {
		return nil
	}
	if _, err := e.w.WriteString(strings.Join(row, "\t")); err != nil {
		return errors.Wrap(err, "writing row")
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "writing row")
	}
	return nil
}

// Summary implements Handler, flushing and closing the destination.
func (e *Emitter) Summary() error {
	if err := e.w.Flush(); err != nil {
		return errors.Wrap(err, "flushing output")
	}
	return errors.Wrap(e.f.Close(), "closing output")
}
