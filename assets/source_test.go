package assets

import (
	"context"
	"testing"

	"github.com/Mhdiwe/Viral/timeline"
)

func TestNone(t *testing.T) {
	got, err := None{}.Fetch(context.Background(), Request{Script: "anything", Count: 3})
	if err != nil || len(got) != 0 {
		t.Fatalf("None.Fetch = %v, %v", got, err)
	}
}

func TestStatic(t *testing.T) {
	got, err := Static{}.Fetch(context.Background(), Request{URLs: []string{
		"https://cdn.example.com/a.JPG",
		" ",
		"https://cdn.example.com/b.mp4?token=1",
	}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []timeline.VisualAsset{
		{Kind: timeline.AssetImage, URL: "https://cdn.example.com/a.JPG"},
		{Kind: timeline.AssetVideo, URL: "https://cdn.example.com/b.mp4?token=1"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d assets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("asset %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if _, err := (Static{}).Fetch(context.Background(), Request{URLs: []string{"file:///etc/passwd"}}); err == nil {
		t.Error("expected error for non-http url")
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want string
	}{
		{"The ocean covers most of Earth. The ocean is deep!", 4, "ocean covers most earth"},
		{"Why do cats purr when they're happy?", 3, "cats purr they're"},
		{"a an it", 3, ""},
	}
	for _, tt := range tests {
		if got := Keywords(tt.text, tt.max); got != tt.want {
			t.Errorf("Keywords(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
