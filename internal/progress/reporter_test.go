package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestReporterCounts(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(Options{
		TotalTiles:     4,
		Workers:        2,
		Output:         &buf,
		UpdateInterval: 10 * time.Millisecond,
		Source:         "http://example.com/img01",
	})

	r.Start()

	r.TileStarted()
	r.TileCompleted(1024)
	r.TileJoined()
	r.TileStarted()
	r.TileFailed()

	time.Sleep(30 * time.Millisecond)
	r.Stop()
	time.Sleep(30 * time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "http://example.com/img01") {
		t.Error("expected header to contain the source URL")
	}
	if !strings.Contains(out, "1 fetched") {
		t.Errorf("expected final status to report 1 fetched tile, got:\n%s", out)
	}
	if !strings.Contains(out, "1 joined") {
		t.Errorf("expected final status to report 1 joined tile, got:\n%s", out)
	}
	if !strings.Contains(out, "1 failed") {
		t.Errorf("expected final status to report 1 failed tile, got:\n%s", out)
	}
}

func TestReporterStopIdempotent(t *testing.T) {
	r := NewReporter(Options{TotalTiles: 1, Output: &bytes.Buffer{}})
	r.Start()
	r.Stop()
	r.Stop() // must not panic
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{3 * 1024 * 1024, "3.00 MB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "1m 30s"},
		{3930 * time.Second, "1h 5m 30s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
