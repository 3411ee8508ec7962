package wdmigrate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// The datavalue_type discriminators.
const (
	datavalueTypeString     = "string"
	datavalueTypeEntityID   = "wikibase-entityid"
	datavalueTypeText       = "monolingualtext"
	datavalueTypeTime       = "time"
	datavalueTypeQuantity   = "quantity"
	datavalueTypeCoordinate = "globecoordinate"
)

// The payload patterns are part of the input contract and must not be
// altered. The unanchored ones mirror full-match semantics via matchWhole.
var (
	// {"text"=>"The Arms of George Washington", "language"=>"en"}
	textRegex = regexp.MustCompile(`^\{"text"=>"(.*?)", "language"=>"([^"]*?)"\}$`)

	// {"time"=>"+2023-09-13T00:00:00Z", "timezone"=>0, "before"=>0, "after"=>0,
	// "precision"=>11, "calendarmodel"=>"http://www.wikidata.org/entity/Q1985727"}
	timeRegex = regexp.MustCompile(`^\{"time"=>"([^"]*?)", "timezone"=>(\d+), "before"=>(\d+), "after"=>(\d+), "precision"=>(\d+).*, "calendarmodel"=>"http://www.wikidata.org/entity/([^"]*?)"\}$`)

	// {"amount"=>"-3.54", "unit"=>"http://www.wikidata.org/entity/Q11573"}
	// {"amount"=>"+57613", "unit"=>"1"}
	quantityRegex     = regexp.MustCompile(`\{"amount"=>"([^"]*?)", "unit"=>"([^"]*?)"(, "upperBound"=>"([^"]*?)")?(, "lowerBound"=>"([^"]*?)")?\}`)
	quantityUnitRegex = regexp.MustCompile(`^http://www.wikidata.org/entity/(.*)$`)

	// {"latitude"=>38.70661, "longitude"=>-77.08723, "altitude"=>nil,
	// "precision"=>0.000277778, "globe"=>"http://www.wikidata.org/entity/Q2"}
	coordinateRegex = regexp.MustCompile(`\{"latitude"=>([^,]*?), "longitude"=>([^,]*?), "altitude"=>([^,]*?), "precision"=>([^,]*?), "globe"=>"([^"]*?)"\}`)
)

// matchWhole returns the submatches of pattern against s only if the match
// covers all of s.
func matchWhole(pattern *regexp.Regexp, s string) []string {
	m := pattern.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return nil
	}
	return m
}

// ValueParser decodes one datavalue encoding. CanParse inspects the row's
// discriminator; Parse decodes the payload and delivers exactly one Value
// to the handler. A Parse error means the payload did not have the shape
// its discriminator promises, which aborts the run.
type ValueParser interface {
	CanParse(cols *Columns) bool
	Parse(cols *Columns, h Handler) error
}

// Primitives is the parser chain for all known datavalue types. The order
// is fixed so diagnostics stay deterministic; the discriminators are
// disjoint, so it does not affect which parser fires.
var Primitives = []ValueParser{
	StringParser{},
	EntityParser{},
	TimeParser{},
	CoordinateParser{},
	QuantityParser{},
	TextParser{},
}

// ParseRow dispatches one row to the first parser in the chain that
// recognizes its discriminator. An unrecognized discriminator is an error:
// it means the dump's schema has drifted and continuing would silently
// miscount.
func ParseRow(parsers []ValueParser, cols *Columns, h Handler) error {
	for _, p := range parsers {
		if p.CanParse(cols) {
			return p.Parse(cols, h)
		}
	}
	return errors.Errorf("unexpected datavalue_type %q (datavalue_string: %q)", cols.DatavalueType, cols.DatavalueString)
}

// StringParser handles the "string" datavalue type.
type StringParser struct{}

func (StringParser) CanParse(cols *Columns) bool {
	return cols.DatavalueType == datavalueTypeString
}

func (StringParser) Parse(cols *Columns, h Handler) error {
	str := cols.DatavalueString
	if str == "novalue" || str == "" {
		return h.Handle(cols, NoValue{KindString})
	}
	return h.Handle(cols, String{Value: str})
}

// EntityParser handles the "wikibase-entityid" datavalue type. Unlike the
// other parsers it reads the datavalue_entity column, where an empty field
// rather than the "novalue" literal marks a missing value.
type EntityParser struct{}

func (EntityParser) CanParse(cols *Columns) bool {
	return cols.DatavalueType == datavalueTypeEntityID
}

func (EntityParser) Parse(cols *Columns, h Handler) error {
	entityID := cols.DatavalueEntity
	if entityID == "" {
		return h.Handle(cols, NoValue{KindEntityID})
	}
	if len(entityID) < 2 || (entityID[0] != 'P' && entityID[0] != 'Q') {
		return h.Handle(cols, Invalid{KindEntityID})
	}
	return h.Handle(cols, EntityID{Value: entityID})
}

// TextParser handles the "monolingualtext" datavalue type.
type TextParser struct{}

func (TextParser) CanParse(cols *Columns) bool {
	return cols.DatavalueType == datavalueTypeText
}

func (TextParser) Parse(cols *Columns, h Handler) error {
	textStr := cols.DatavalueString
	if textStr == "novalue" {
		return h.Handle(cols, NoValue{KindText})
	}
	m := textRegex.FindStringSubmatch(textStr)
	if m == nil {
		return errors.Errorf("unexpected text string: %q", textStr)
	}
	return h.Handle(cols, Text{Text: m[1], Language: m[2]})
}

// TimeParser handles the "time" datavalue type.
type TimeParser struct{}

func (TimeParser) CanParse(cols *Columns) bool {
	return cols.DatavalueType == datavalueTypeTime
}

func (TimeParser) Parse(cols *Columns, h Handler) error {
	timeStr := cols.DatavalueString
	if timeStr == "novalue" {
		return h.Handle(cols, NoValue{KindTime})
	}
	m := timeRegex.FindStringSubmatch(timeStr)
	if m == nil {
		return errors.Errorf("unexpected time string: %q", timeStr)
	}
	raw := m[1]
	instant, ok := parseTimestamp(raw)
	if !ok {
		return h.Handle(cols, Invalid{KindTime})
	}
	timezone, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing timezone in %q", timeStr)
	}
	before, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing before in %q", timeStr)
	}
	after, err := strconv.ParseUint(m[4], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing after in %q", timeStr)
	}
	precision, err := strconv.ParseUint(m[5], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing precision in %q", timeStr)
	}
	return h.Handle(cols, Time{
		Raw:           raw,
		Instant:       instant,
		CalendarModel: m[6],
		Timezone:      timezone,
		Before:        before,
		After:         after,
		Precision:     precision,
	})
}

// parseTimestamp decodes a +YYYY-MM-DDThh:mm:ssZ timestamp. The dumps
// contain month and day parts of "00"; those are rewritten to "01" at the
// byte offsets of a sign-prefixed 4-digit year before decoding, matching
// how the dumps were produced. Years may be negative or wider than four
// digits, which time.Parse cannot represent, so the fields are split by
// hand and fed to time.Date.
func parseTimestamp(raw string) (time.Time, bool) {
	b := []byte(raw)
	if len(b) > 10 {
		if b[6] == '0' && b[7] == '0' {
			b[7] = '1'
		}
		if b[9] == '0' && b[10] == '0' {
			b[10] = '1'
		}
	}
	s := string(b)

	negative := false
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	}
	if !strings.HasSuffix(s, "Z") {
		return time.Time{}, false
	}
	s = s[:len(s)-1]

	datePart, timePart, found := strings.Cut(s, "T")
	if !found {
		return time.Time{}, false
	}
	dateFields := strings.Split(datePart, "-")
	timeFields := strings.Split(timePart, ":")
	if len(dateFields) != 3 || len(timeFields) != 3 {
		return time.Time{}, false
	}

	var nums [6]int
	for i, f := range append(dateFields, timeFields...) {
		if f == "" {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return time.Time{}, false
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]
	hour, minute, second := nums[3], nums[4], nums[5]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	if negative {
		year = -year
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalizes out-of-range days (Feb 30 becomes Mar 2); such
	// inputs are invalid, not normalizable.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// QuantityParser handles the "quantity" datavalue type.
type QuantityParser struct{}

func (QuantityParser) CanParse(cols *Columns) bool {
	return cols.DatavalueType == datavalueTypeQuantity
}

func (QuantityParser) Parse(cols *Columns, h Handler) error {
	quantityStr := cols.DatavalueString
	if quantityStr == "novalue" {
		return h.Handle(cols, NoValue{KindQuantity})
	}
	m := matchWhole(quantityRegex, quantityStr)
	if m == nil {
		return errors.Errorf("unexpected quantity string: %q", quantityStr)
	}
	amount, unitField := m[1], m[2]
	upperBound, lowerBound := m[4], m[6]
	if amount == "" || (amount[0] != '+' && amount[0] != '-') {
		return h.Handle(cols, Invalid{KindQuantity})
	}
	unit := ""
	if unitField != "1" {
		um := quantityUnitRegex.FindStringSubmatch(unitField)
		if um == nil {
			return errors.Errorf("unexpected quantity unit in %q", quantityStr)
		}
		unit = um[1]
	}
	return h.Handle(cols, Quantity{
		Amount:     amount,
		Unit:       unit,
		LowerBound: lowerBound,
		UpperBound: upperBound,
	})
}

// CoordinateParser handles the "globecoordinate" datavalue type.
type CoordinateParser struct{}

func (CoordinateParser) CanParse(cols *Columns) bool {
	return cols.DatavalueType == datavalueTypeCoordinate
}

func (CoordinateParser) Parse(cols *Columns, h Handler) error {
	coordinateStr := cols.DatavalueString
	if coordinateStr == "novalue" {
		return h.Handle(cols, NoValue{KindCoordinate})
	}
	m := matchWhole(coordinateRegex, coordinateStr)
	if m == nil {
		return errors.Errorf("unexpected coordinate string: %q", coordinateStr)
	}
	return h.Handle(cols, Coordinate{
		Latitude:  m[1],
		Longitude: m[2],
		Altitude:  m[3],
		Precision: m[4],
		Globe:     m[5],
	})
}
