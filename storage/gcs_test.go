package storage

import (
	"regexp"
	"testing"
)

func TestVoiceoverName(t *testing.T) {
	re := regexp.MustCompile(`^fish-audio-vo/vo_[0-9a-f-]{36}\.mp3$`)
	a := VoiceoverName("fish-audio-vo/")
	b := VoiceoverName("fish-audio-vo")
	if !re.MatchString(a) || !re.MatchString(b) {
		t.Fatalf("unexpected names %q, %q", a, b)
	}
	if a == b {
		t.Errorf("names should be unique, got %q twice", a)
	}
	if got := ObjectName("", "render", ".mp4"); !regexp.MustCompile(`^render_[0-9a-f-]{36}\.mp4$`).MatchString(got) {
		t.Errorf("ObjectName without prefix = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	obj := Describe("bucket", "vo/clip one.mp3")
	if obj.URI != "gs://bucket/vo/clip one.mp3" {
		t.Errorf("URI = %q", obj.URI)
	}
	if obj.PublicURL != "https://storage.googleapis.com/bucket/vo/clip%20one.mp3" {
		t.Errorf("PublicURL = %q", obj.PublicURL)
	}
	if obj.Name != "vo/clip one.mp3" {
		t.Errorf("Name = %q", obj.Name)
	}
}
