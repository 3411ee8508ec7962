package wdmigrate

import "testing"

func TestFailUnhandled(t *testing.T) {
	cols := NewColumns(Qualifiers)
	var base FailUnhandled
	if err := base.Handle(cols, String{Value: "x"}); err == nil {
		t.Fatal("expected an error for an unhandled delivery")
	}
	if err := base.Summary(); err != nil {
		t.Fatalf("summary: %v", err)
	}
}

func TestSkipMeta(t *testing.T) {
	cols := NewColumns(Qualifiers)
	var base SkipMeta
	if err := base.Handle(cols, NoValue{KindTime}); err != nil {
		t.Fatalf("novalue should be skipped: %v", err)
	}
	if err := base.Handle(cols, Invalid{KindQuantity}); err != nil {
		t.Fatalf("invalid should be skipped: %v", err)
	}
	if err := base.Handle(cols, String{Value: "x"}); err == nil {
		t.Fatal("an unhandled base value must still fail")
	}
}
