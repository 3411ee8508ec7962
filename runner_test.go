package wdmigrate_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/wdmigrate"
	"github.com/pilosa/wdmigrate/file"
	"github.com/pilosa/wdmigrate/mock"
	"github.com/pilosa/wdmigrate/tsv"
)

func mustTempDir(t *testing.T, prefix string) string {
	t.Helper()
	d, err := ioutil.TempDir("", prefix)
	if err != nil {
		t.Fatal("getting temp dir")
	}
	return d
}

func mustWriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func qualifierLine(claimID, qualifierProperty, datavalueString, datavalueEntity, datavalueType string) string {
	return strings.Join([]string{
		claimID, "P31", "h4sh", "value", qualifierProperty,
		datavalueString, datavalueEntity, "", "", datavalueType, "wikibase-item", "1", "1",
	}, "\t")
}

const timePayload = `{"time"=>"+2023-09-13T00:00:00Z", "timezone"=>0, "before"=>0, "after"=>0, "precision"=>11, "calendarmodel"=>"http://www.wikidata.org/entity/Q1985727"}`
const farTimePayload = `{"time"=>"+300000-01-01T00:00:00Z", "timezone"=>0, "before"=>0, "after"=>0, "precision"=>6, "calendarmodel"=>"http://www.wikidata.org/entity/Q1985727"}`

func TestRunnerEndToEnd(t *testing.T) {
	d := mustTempDir(t, "testrunner")
	defer os.RemoveAll(d)

	input := mustWriteFile(t, d, "qualifiers.tsv", strings.Join([]string{
		qualifierLine("C1", "P585", "The Arms", "", "string"),
		qualifierLine("C2", "P585", "", "Q42", "wikibase-entityid"),
		qualifierLine("C3", "P585", "", "XX", "wikibase-entityid"),
		qualifierLine("C4", "P585", timePayload, "", "time"),
		qualifierLine("C5", "P585", farTimePayload, "", "time"),
		qualifierLine("C6", "P1092", `{"amount"=>"-3.54", "unit"=>"http://www.wikidata.org/entity/Q11573"}`, "", "quantity"),
		qualifierLine("C7", "P585", "novalue", "", "string"),
	}, "\n")+"\n")
	output := filepath.Join(d, "out.tsv")

	statsOut := &bytes.Buffer{}
	scaleOut := &bytes.Buffer{}
	stats := wdmigrate.NewStats(statsOut, nil, wdmigrate.StatsOptions{})
	emitter, err := wdmigrate.NewEmitter(wdmigrate.Qualifiers, output)
	if err != nil {
		t.Fatalf("creating emitter: %v", err)
	}
	recorder := &mock.RecordingHandler{}
	runner := &wdmigrate.Runner{
		Variant: wdmigrate.Qualifiers,
		Handler: wdmigrate.Stack{stats, wdmigrate.NewQuantityScale(scaleOut), emitter, recorder},

		ProgressOut: ioutil.Discard,
	}
	src, err := file.NewRawSource(input)
	if err != nil {
		t.Fatalf("getting source: %v", err)
	}
	if err := runner.RunSource(src); err != nil {
		t.Fatalf("running: %v", err)
	}

	if stats.RowCount() != 7 {
		t.Fatalf("row count: %d", stats.RowCount())
	}
	if stats.Parsed(wdmigrate.KindTime) != 2 {
		t.Fatalf("out-of-range times still count as parsed: %d", stats.Parsed(wdmigrate.KindTime))
	}
	if stats.Invalid(wdmigrate.KindEntityID) != 1 || stats.Missing(wdmigrate.KindString) != 1 {
		t.Fatalf("unexpected meta counts: %s", statsOut.String())
	}
	if !strings.Contains(scaleOut.String(), "precision: 3, scale: 2") {
		t.Fatalf("unexpected scale summary: %q", scaleOut.String())
	}

	// Every handler saw every row, in stream order.
	if len(recorder.Values) != 7 {
		t.Fatalf("recorder saw %d deliveries", len(recorder.Values))
	}
	if recorder.ClaimIDs[0] != "C1" || recorder.ClaimIDs[6] != "C7" {
		t.Fatalf("deliveries out of order: %v", recorder.ClaimIDs)
	}
	if recorder.Summaries != 1 {
		t.Fatalf("expected one summary, got %d", recorder.Summaries)
	}

	data, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	want := []string{
		"C1\tP585\tstring\tThe Arms\t\t\t",
		"C2\tP585\twikibase-entityid\t\tQ42\t\t",
		"C4\tP585\ttime\t\tQ1985727\t2023-09-13T00:00:00+0000\t",
		"C6\tP1092\tquantity\t\tQ11573\t\t-3.54",
	}
	if len(lines) != len(want) {
		t.Fatalf("emitted %d rows, want %d:\n%s", len(lines), len(want), string(data))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("row %d:\ngot  %q\nwant %q", i, lines[i], want[i])
		}
	}

	// The accepted-row property: emitted rows = parsed values minus the
	// ones the emit rules drop (here, one out-of-range time).
	var parsed uint64
	for _, k := range []wdmigrate.Kind{wdmigrate.KindString, wdmigrate.KindEntityID, wdmigrate.KindText, wdmigrate.KindTime, wdmigrate.KindQuantity, wdmigrate.KindCoordinate} {
		parsed += stats.Parsed(k)
	}
	if uint64(len(lines)) != parsed-1 {
		t.Fatalf("emitted %d rows, parsed %d", len(lines), parsed)
	}
}

func TestRunnerClaims(t *testing.T) {
	d := mustTempDir(t, "testrunnerclaims")
	defer os.RemoveAll(d)

	input := mustWriteFile(t, d, "claims.tsv", strings.Join([]string{
		"Q1", "C9", "statement", "normal", "value", "P6", "", "Q42", "", "wikibase-entityid", "wikibase-item",
	}, "\t")+"\n")
	output := filepath.Join(d, "out.tsv")

	emitter, err := wdmigrate.NewEmitter(wdmigrate.Claims, output)
	if err != nil {
		t.Fatalf("creating emitter: %v", err)
	}
	runner := &wdmigrate.Runner{
		Variant: wdmigrate.Claims,
		Handler: wdmigrate.Stack{emitter},

		ProgressOut: ioutil.Discard,
	}
	f, err := os.Open(input)
	if err != nil {
		t.Fatalf("opening input: %v", err)
	}
	defer f.Close()
	if err := runner.Run(tsv.NewReader(f, wdmigrate.NewColumns(wdmigrate.Claims).Arity()), "parsing claims.tsv"); err != nil {
		t.Fatalf("running: %v", err)
	}

	data, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "Q1\tC9\tP6\twikibase-entityid\t\tQ42\t\t\n" {
		t.Fatalf("unexpected output: %q", string(data))
	}
}

func TestRunnerEmptyInput(t *testing.T) {
	d := mustTempDir(t, "testrunnerempty")
	defer os.RemoveAll(d)

	input := mustWriteFile(t, d, "empty.tsv", "")
	output := filepath.Join(d, "out.tsv")

	statsOut := &bytes.Buffer{}
	stats := wdmigrate.NewStats(statsOut, nil, wdmigrate.StatsOptions{})
	emitter, err := wdmigrate.NewEmitter(wdmigrate.Qualifiers, output)
	if err != nil {
		t.Fatalf("creating emitter: %v", err)
	}
	runner := &wdmigrate.Runner{
		Variant: wdmigrate.Qualifiers,
		Handler: wdmigrate.Stack{stats, emitter},

		ProgressOut: ioutil.Discard,
	}
	src, err := file.NewRawSource(input)
	if err != nil {
		t.Fatalf("getting source: %v", err)
	}
	if err := runner.RunSource(src); err != nil {
		t.Fatalf("running: %v", err)
	}

	if stats.RowCount() != 0 {
		t.Fatalf("row count: %d", stats.RowCount())
	}
	if !strings.Contains(statsOut.String(), "row count: 0\n") {
		t.Fatalf("summary should still emit:\n%s", statsOut.String())
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty output, got %d bytes", info.Size())
	}
}

// Parsing a file of rows the emitter accepts, then re-parsing the
// emitter's own output with the emit shape supplied as the column schema,
// yields an ok count equal to the input rows that were neither dropped nor
// invalid.
func TestEmitRoundTrip(t *testing.T) {
	d := mustTempDir(t, "testroundtrip")
	defer os.RemoveAll(d)

	input := mustWriteFile(t, d, "qualifiers.tsv", strings.Join([]string{
		qualifierLine("C1", "P585", "The Arms", "", "string"),
		qualifierLine("C2", "P585", "Seal of the President", "", "string"),
		qualifierLine("C3", "P585", "", "Q42", "wikibase-entityid"),
		qualifierLine("C4", "P585", "", "P31", "wikibase-entityid"),
		qualifierLine("C5", "P585", "novalue", "", "string"),
		qualifierLine("C6", "P585", "", "XX", "wikibase-entityid"),
	}, "\n")+"\n")
	output := filepath.Join(d, "out.tsv")

	emitter, err := wdmigrate.NewEmitter(wdmigrate.Qualifiers, output)
	if err != nil {
		t.Fatalf("creating emitter: %v", err)
	}
	firstPass := wdmigrate.NewStats(ioutil.Discard, nil, wdmigrate.StatsOptions{})
	runner := &wdmigrate.Runner{
		Variant: wdmigrate.Qualifiers,
		Handler: wdmigrate.Stack{firstPass, emitter},

		ProgressOut: ioutil.Discard,
	}
	src, err := file.NewRawSource(input)
	if err != nil {
		t.Fatalf("getting source: %v", err)
	}
	if err := runner.RunSource(src); err != nil {
		t.Fatalf("running first pass: %v", err)
	}

	// One NoValue and one Invalid delivery were dropped on the way out.
	accepted := firstPass.RowCount() - firstPass.Missing(wdmigrate.KindString) - firstPass.Invalid(wdmigrate.KindEntityID)
	if accepted != 4 {
		t.Fatalf("expected 4 accepted rows, got %d", accepted)
	}

	emitSchema := []wdmigrate.Column{
		{Name: wdmigrate.ColClaimID, Type: wdmigrate.ColText},
		{Name: wdmigrate.ColQualifierProperty, Type: wdmigrate.ColText},
		{Name: wdmigrate.ColDatavalueType, Type: wdmigrate.ColText},
		{Name: wdmigrate.ColDatavalueString, Type: wdmigrate.ColText},
		{Name: wdmigrate.ColDatavalueEntity, Type: wdmigrate.ColText},
		{Name: wdmigrate.ColDatavalueDate, Type: wdmigrate.ColText},
		{Name: wdmigrate.ColNil, Type: wdmigrate.ColText},
	}
	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("opening emitted file: %v", err)
	}
	defer f.Close()

	cols := wdmigrate.NewColumnsFor(emitSchema)
	rows := tsv.NewReader(f, cols.Arity())
	secondPass := wdmigrate.NewStats(ioutil.Discard, nil, wdmigrate.StatsOptions{})
	for {
		ok, err := cols.ReadNext(rows)
		if err != nil {
			t.Fatalf("re-reading emitted row: %v", err)
		}
		if !ok {
			break
		}
		if err := wdmigrate.ParseRow(wdmigrate.Primitives, cols, secondPass); err != nil {
			t.Fatalf("re-parsing emitted row: %v", err)
		}
	}

	var ok uint64
	for k := wdmigrate.KindString; k <= wdmigrate.KindCoordinate; k++ {
		ok += secondPass.Parsed(k)
	}
	if ok != accepted {
		t.Fatalf("round trip ok count %d, want %d", ok, accepted)
	}
	if secondPass.RowCount() != accepted {
		t.Fatalf("round trip row count %d, want %d", secondPass.RowCount(), accepted)
	}
	if secondPass.Parsed(wdmigrate.KindString) != 2 || secondPass.Parsed(wdmigrate.KindEntityID) != 2 {
		t.Fatalf("unexpected re-parsed kinds: string=%d entity=%d",
			secondPass.Parsed(wdmigrate.KindString), secondPass.Parsed(wdmigrate.KindEntityID))
	}
}

func TestRunnerUnknownDiscriminatorAborts(t *testing.T) {
	d := mustTempDir(t, "testrunnerunknown")
	defer os.RemoveAll(d)

	input := mustWriteFile(t, d, "bad.tsv",
		qualifierLine("C1", "P585", "whatever", "", "commonsMedia")+"\n")

	recorder := &mock.RecordingHandler{}
	runner := &wdmigrate.Runner{
		Variant: wdmigrate.Qualifiers,
		Handler: recorder,

		ProgressOut: ioutil.Discard,
	}
	src, err := file.NewRawSource(input)
	if err != nil {
		t.Fatalf("getting source: %v", err)
	}
	err = runner.RunSource(src)
	if err == nil {
		t.Fatal("expected an error for an unknown discriminator")
	}
	if !strings.Contains(err.Error(), "commonsMedia") {
		t.Fatalf("diagnostic should name the discriminator: %v", err)
	}
	if recorder.Summaries != 0 {
		t.Fatal("summary must not run after an abort")
	}
}
