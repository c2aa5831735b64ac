package humastar

import "testing"

func TestParseSignalsNested(t *testing.T) {
	s, err := ParseSignals([]byte(`{"boardid":"b1","wmsurl":"http://x","cards":{"c1":{"description":"main roads","saving":true}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.String("wmsurl"); got != "http://x" {
		t.Errorf("wmsurl=%q", got)
	}
	card := s.Object("cards").Object("c1")
	if got := card.String("description"); got != "main roads" {
		t.Errorf("description=%q", got)
	}
	if !card.Bool("saving") {
		t.Error("saving=false, want true")
	}
	if got := s.Object("cards").Object("missing").String("description"); got != "" {
		t.Errorf("missing card description=%q, want empty", got)
	}
	if s.Object("wmsurl") != nil {
		t.Error("string signal returned as object")
	}
}

func TestMustParseRejectsGarbage(t *testing.T) {
	in := &SignalsInput{RawBody: []byte("{")}
	if _, err := in.MustParse(); err == nil {
		t.Fatal("expected error")
	}
}

func TestJSString(t *testing.T) {
	got := jsString(`it's </script> "x"`)
	want := `"it's \u003c/script\u003e \"x\""`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
