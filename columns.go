package wdmigrate

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Column names as they appear in the dump schemas. The set is closed; a
// schema may only be built from these.
const (
	ColEntityID          = "entity_id"
	ColClaimID           = "claim_id"
	ColType              = "type"
	ColRank              = "rank"
	ColSnaktype          = "snaktype"
	ColProperty          = "property"
	ColHash              = "hash"
	ColQualifierProperty = "qualifier_property"
	ColDatavalueString   = "datavalue_string"
	ColDatavalueEntity   = "datavalue_entity"
	ColDatavalueDate     = "datavalue_date"
	ColNil               = "nil"
	ColDatavalueType     = "datavalue_type"
	ColDatatype          = "datatype"
	ColCounter           = "counter"
	ColOrderHash         = "order_hash"
)

// ColScalarType is the scalar type of a column.
type ColScalarType int

// The two scalar types the dumps use.
const (
	ColText ColScalarType = iota
	ColUint64
)

// Column is one immutable (name, type) pair of a schema.
type Column struct {
	Name string
	Type ColScalarType
}

// FileVariant selects which dump file layout a stream uses.
type FileVariant int

// The two file variants.
const (
	Claims FileVariant = iota
	Qualifiers
)

func (v FileVariant) String() string {
	switch v {
	case Claims:
		return "claims"
	case Qualifiers:
		return "qualifiers"
	}
	return "unknown"
}

// ParseVariant maps the CLI spelling of a file variant to its tag.
func ParseVariant(s string) (FileVariant, error) {
	switch s {
	case "claims":
		return Claims, nil
	case "qualifiers":
		return Qualifiers, nil
	}
	return 0, errors.Errorf("unknown file variant %q (want claims or qualifiers)", s)
}

var claimsSchema = []Column{
	{ColEntityID, ColText},
	{ColClaimID, ColText},
	{ColType, ColText},
	{ColRank, ColText},
	{ColSnaktype, ColText},
	{ColProperty, ColText},
	{ColDatavalueString, ColText},
	{ColDatavalueEntity, ColText},
	{ColDatavalueDate, ColText},
	{ColDatavalueType, ColText},
	{ColDatatype, ColText},
}

var qualifiersSchema = []Column{
	{ColClaimID, ColText},
	{ColProperty, ColText},
	{ColHash, ColText},
	{ColSnaktype, ColText},
	{ColQualifierProperty, ColText},
	{ColDatavalueString, ColText},
	{ColDatavalueEntity, ColText},
	{ColDatavalueDate, ColText},
	{ColNil, ColText},
	{ColDatavalueType, ColText},
	{ColDatatype, ColText},
	{ColCounter, ColUint64},
	{ColOrderHash, ColUint64},
}

// Schema returns the ordered column layout of the variant. The order and
// arity must match the input file exactly.
func (v FileVariant) Schema() []Column {
	switch v {
	case Claims:
		return claimsSchema
	case Qualifiers:
		return qualifiersSchema
	}
	return nil
}

// Columns is the reusable row buffer. The bound schema decides which fields
// are populated by ReadNext; the rest stay zero. Fields are valid until the
// next ReadNext call, so handlers that aggregate must copy what they keep.
type Columns struct {
	EntityID          string
	ClaimID           string
	Type              string
	Rank              string
	Snaktype          string
	Property          string
	Hash              string
	QualifierProperty string
	DatavalueString   string
	DatavalueEntity   string
	DatavalueDate     string
	Nil               string
	DatavalueType     string
	Datatype          string
	Counter           uint64
	OrderHash         uint64

	schema  []Column
	setters []func(*Columns, string) error
}

// NewColumns returns a row buffer bound to the variant's schema.
func NewColumns(variant FileVariant) *Columns {
	return NewColumnsFor(variant.Schema())
}

// NewColumnsFor returns a row buffer bound to an arbitrary schema built
// from the closed column-name set, e.g. the emitters' output shape when
// re-reading a normalized file.
func NewColumnsFor(schema []Column) *Columns {
	c := &Columns{
		schema:  schema,
		setters: make([]func(*Columns, string) error, len(schema)),
	}
	for i, col := range schema {
		c.setters[i] = fieldSetter(col)
	}
	return c
}

// Arity returns the number of columns the bound schema declares.
func (c *Columns) Arity() int { return len(c.schema) }

// ReadNext decodes one record into the buffer. It returns false at clean
// end of input. A short record, an extra field, or an integer column that
// does not parse is an error; this tool does not skip broken rows.
func (c *Columns) ReadNext(r RowReader) (bool, error) {
	fields, err := r.ReadRow()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "reading record")
	}
	if len(fields) != len(c.schema) {
		return false, errors.Errorf("record has %d fields, schema declares %d", len(fields), len(c.schema))
	}
	for i, field := range fields {
		if err := c.setters[i](c, field); err != nil {
			return false, errors.Wrapf(err, "decoding column %s", c.schema[i].Name)
		}
	}
	return true, nil
}

func fieldSetter(col Column) func(*Columns, string) error {
	switch col.Type {
	case ColText:
		dst := textField(col.Name)
		return func(c *Columns, s string) error {
			*dst(c) = s
			return nil
		}
	case ColUint64:
		dst := uint64Field(col.Name)
		return func(c *Columns, s string) error {
			v, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "parsing %q as uint64", s)
			}
			*dst(c) = v
			return nil
		}
	}
	panic(errors.Errorf("unknown column type %d for %s", col.Type, col.Name))
}

func textField(name string) func(*Columns) *string {
	switch name {
	case ColEntityID:
		return func(c *Columns) *string { return &c.EntityID }
	case ColClaimID:
		return func(c *Columns) *string { return &c.ClaimID }
	case ColType:
		return func(c *Columns) *string { return &c.Type }
	case ColRank:
		return func(c *Columns) *string { return &c.Rank }
	case ColSnaktype:
		return func(c *Columns) *string { return &c.Snaktype }
	case ColProperty:
		return func(c *Columns) *string { return &c.Property }
	case ColHash:
		return func(c *Columns) *string { return &c.Hash }
	case ColQualifierProperty:
		return func(c *Columns) *string { return &c.QualifierProperty }
	case ColDatavalueString:
		return func(c *Columns) *string { return &c.DatavalueString }
	case ColDatavalueEntity:
		return func(c *Columns) *string { return &c.DatavalueEntity }
	case ColDatavalueDate:
		return func(c *Columns) *string { return &c.DatavalueDate }
	case ColNil:
		return func(c *Columns) *string { return &c.Nil }
	case ColDatavalueType:
		return func(c *Columns) *string { return &c.DatavalueType }
	case ColDatatype:
		return func(c *Columns) *string { return &c.Datatype }
	}
	panic(errors.Errorf("unknown text column %q", name))
}

func uint64Field(name string) func(*Columns) *uint64 {
	switch name {
	case ColCounter:
		return func(c *Columns) *uint64 { return &c.Counter }
	case ColOrderHash:
		return func(c *Columns) *uint64 { return &c.OrderHash }
	}
	panic(errors.Errorf("unknown uint64 column %q", name))
}
