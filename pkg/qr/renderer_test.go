package qr

import (
	"strings"
	"testing"
)

func TestRenderProducesDataURL(t *testing.T) {
	renderer := NewDataURLRenderer()
	code, err := renderer.Render("From: Pune, To: Mumbai, Duration: 7 Days, Valid Till: Mon Sep 07 2026")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(code, "data:image/png;base64,") {
		t.Fatalf("expected data URL prefix, got %q", code[:32])
	}
	if len(code) <= len("data:image/png;base64,") {
		t.Fatal("expected non-empty encoded image")
	}
}

func TestRenderIsDeterministicForSameInput(t *testing.T) {
	renderer := NewDataURLRenderer(WithSize(128))
	first, err := renderer.Render("payload")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := renderer.Render("payload")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Fatal("expected identical output for identical payload text")
	}
}

func TestRenderRejectsEmptyText(t *testing.T) {
	renderer := NewDataURLRenderer()
	if _, err := renderer.Render("   "); err == nil {
		t.Fatal("expected error for blank payload text")
	}
}
