package ui

import (
	"strings"
	"testing"
)

func TestFileLabel(t *testing.T) {
	if got := FileLabel([]string{"a.zip", "b.zip"}); got != "a.zip" {
		t.Errorf("got %q, want a.zip", got)
	}
	if got := FileLabel(nil); got != "No file selected" {
		t.Errorf("got %q, want placeholder", got)
	}
}

func TestDragBindingsSuppressDefaults(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range DragBindings {
		seen[b.Event] = true
		if !strings.HasSuffix(b.Attr(), "__prevent__stop") {
			t.Errorf("%s: attr %q does not prevent and stop", b.Event, b.Attr())
		}
	}
	for _, ev := range []string{"dragenter", "dragover", "dragleave", "drop"} {
		if !seen[ev] {
			t.Errorf("no binding for %s", ev)
		}
	}
}

func TestDragBindingsHighlight(t *testing.T) {
	want := map[string]string{
		"dragenter": "$dropactive = true",
		"dragover":  "$dropactive = true",
		"dragleave": "$dropactive = false",
		"drop":      "$dropactive = false",
	}
	for _, b := range DragBindings {
		if !strings.HasPrefix(b.Expr(), want[b.Event]) {
			t.Errorf("%s: expr %q, want prefix %q", b.Event, b.Expr(), want[b.Event])
		}
	}
}

func TestDropAssignsFirstFile(t *testing.T) {
	var drop DragBinding
	for _, b := range DragBindings {
		if b.Drop {
			drop = b
		}
	}
	if drop.Event != "drop" {
		t.Fatalf("drop binding is %q", drop.Event)
	}
	expr := drop.Expr()
	for _, part := range []string{
		"evt.dataTransfer.files.length > 0",
		"document.getElementById('file-upload').files = evt.dataTransfer.files",
		"$filename = evt.dataTransfer.files[0].name",
	} {
		if !strings.Contains(expr, part) {
			t.Errorf("drop expr missing %q", part)
		}
	}
}

func TestDropZoneAttrsEscaped(t *testing.T) {
	attrs := string(DropZoneAttrs())
	if !strings.Contains(attrs, `data-on:drop__prevent__stop="`) {
		t.Fatalf("attrs=%s", attrs)
	}
	if strings.Contains(attrs, "'file-upload'") || strings.Contains(attrs, "length > 0") {
		t.Error("expression not escaped for attribute context")
	}
	if !strings.Contains(attrs, `data-class:active="$dropactive"`) {
		t.Error("missing active class toggle")
	}
}

func TestCardSaveDisablesBeforePosting(t *testing.T) {
	got := string(CardView{ID: "c1"}.Save())
	want := "$cards.c1.saving = true; @post('/ui/wms/cards/c1/save')"
	if got != want {
		t.Errorf("save=%q, want %q", got, want)
	}
}
