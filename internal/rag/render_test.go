package rag

import (
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("## Question Paper\n\n1. What is **friction**?\n2. Define speed.\nLine two")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<h2>Question Paper</h2>", "<strong>friction</strong>", "<ol>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}
	// hard wraps keep single newlines as line breaks
	if !strings.Contains(out, "<br") {
		t.Errorf("expected hard line break in %s", out)
	}
}
