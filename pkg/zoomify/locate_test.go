package zoomify

import (
	"errors"
	"testing"
)

func TestLocateBase(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "zoomifyImagePath",
			page: `<param name="flashvars" value="zoomifyImagePath=/galleries/img01&zoomifyNavigatorVisible=true">`,
			want: "/galleries/img01",
		},
		{
			name: "ZoomifyCache",
			page: `<img src="ZoomifyCache/img01.2679x4000/TileGroup0/0-0-0.jpg">`,
			want: "ZoomifyCache/img01.2679x4000",
		},
		{
			name: "TileGroup0 double quotes",
			page: `tileSources: "/iiif/img01_files/TileGroup0/0-0-0.jpg"`,
			want: "/iiif/img01_files",
		},
		{
			name: "TileGroup0 single quotes",
			page: `tileSources: '/iiif/img01_files/TileGroup0/0-0-0.jpg'`,
			want: "/iiif/img01_files",
		},
		{
			name: "showImage double quotes",
			page: `Z.showImage("zoomifyContainer", "zoom/img01", "zInitialZoom=40");`,
			want: "zoom/img01",
		},
		{
			name: "showImage single quotes",
			page: `Z.showImage('zoomifyContainer', 'zoom/img01');`,
			want: "zoom/img01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocateBase(tt.page)
			if err != nil {
				t.Fatalf("LocateBase: %v", err)
			}
			if got != tt.want {
				t.Errorf("LocateBase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocateBaseOrder(t *testing.T) {
	// When several conventions match, the earliest matcher in the list wins.
	page := `zoomifyImagePath=/primary/img&x "/secondary/img/TileGroup0"`
	got, err := LocateBase(page)
	if err != nil {
		t.Fatalf("LocateBase: %v", err)
	}
	if got != "/primary/img" {
		t.Errorf("LocateBase = %q, want %q", got, "/primary/img")
	}
}

func TestLocateBaseNotFound(t *testing.T) {
	_, err := LocateBase("<html><body>nothing zoomable here</body></html>")
	if !errors.Is(err, ErrBaseNotFound) {
		t.Errorf("expected ErrBaseNotFound, got %v", err)
	}
}

func TestResolveBase(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		found   string
		want    string
	}{
		{
			name:    "absolute path returned unchanged",
			pageURL: "http://example.com/gallery/view.html",
			found:   "http://cdn.example.com/tiles/img01",
			want:    "http://cdn.example.com/tiles/img01",
		},
		{
			name:    "relative to page with file segment",
			pageURL: "http://example.com/gallery/view.html?id=1",
			found:   "img/tiles",
			want:    "http://example.com/gallery/img/tiles",
		},
		{
			name:    "relative to page directory",
			pageURL: "http://example.com/gallery",
			found:   "/img/tiles",
			want:    "http://example.com/gallery/img/tiles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBase(tt.pageURL, tt.found)
			if err != nil {
				t.Fatalf("ResolveBase: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveBase = %q, want %q", got, tt.want)
			}
		})
	}
}
