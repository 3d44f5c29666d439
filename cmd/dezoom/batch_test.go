package main

import (
	"bufio"
	"path/filepath"
	"strings"
	"testing"
)

func scan(s string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(s))
}

func TestParseBatchNumbering(t *testing.T) {
	list := `
http://example.com/a.html
http://example.com/b.html

http://example.com/c.html
`
	entries, err := parseBatch(scan(list), filepath.Join("out", "img.jpg"))
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []string{
		filepath.Join("out", "img001.jpg"),
		filepath.Join("out", "img002.jpg"),
		filepath.Join("out", "img003.jpg"),
	}
	for i, entry := range entries {
		if entry.output != want[i] {
			t.Errorf("entry %d output = %q, want %q", i, entry.output, want[i])
		}
	}
	if entries[1].url != "http://example.com/b.html" {
		t.Errorf("unexpected url: %q", entries[1].url)
	}
}

func TestParseBatchNamedEntries(t *testing.T) {
	list := "http://example.com/a.html castle\nhttp://example.com/b.html moat.jpeg\n"

	entries, err := parseBatch(scan(list), filepath.Join("out", "img.jpg"))
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// A bare name gains .jpg; an explicit extension is kept. Both land in
	// the primary output's directory.
	if got, want := entries[0].output, filepath.Join("out", "castle.jpg"); got != want {
		t.Errorf("entry 0 output = %q, want %q", got, want)
	}
	if got, want := entries[1].output, filepath.Join("out", "moat.jpeg"); got != want {
		t.Errorf("entry 1 output = %q, want %q", got, want)
	}
}

func TestParseBatchPrimaryWithoutExtension(t *testing.T) {
	entries, err := parseBatch(scan("http://example.com/a.html\n"), "img")
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if got, want := entries[0].output, "img001.jpg"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestParseBatchEmpty(t *testing.T) {
	entries, err := parseBatch(scan("\n\n"), "img.jpg")
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestRunInvalidArgs(t *testing.T) {
	if code := run([]string{}); code != ExitInvalidArgs {
		t.Errorf("expected ExitInvalidArgs for missing arguments, got %d", code)
	}
	if code := run([]string{"-z", "-2", "http://example.com", "img.jpg"}); code != ExitInvalidArgs {
		t.Errorf("expected ExitInvalidArgs for bad zoom level, got %d", code)
	}
}
