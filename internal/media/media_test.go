package media

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeWAV_Duration(t *testing.T) {
	// Half a second of silence at 16kHz.
	pcm := make([]byte, 16000)
	data, err := EncodeWAV(pcm, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV() failed: %v", err)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("Expected RIFF/WAVE header, got %q", data[:12])
	}

	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Duration(path)
	if err != nil {
		t.Fatalf("Duration() failed: %v", err)
	}
	if math.Abs(d-0.5) > 0.01 {
		t.Errorf("Expected 0.5s, got %v", d)
	}
}

func TestEncodeWAV_InvalidRate(t *testing.T) {
	if _, err := EncodeWAV([]byte{0, 0}, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestDuration_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.m4a")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Duration(path); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

func TestDuration_InvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Duration(path); err == nil {
		t.Error("Expected error for invalid WAV")
	}
}

func TestIsAudio(t *testing.T) {
	tests := map[string]bool{
		"talk.mp3":    true,
		"TALK.WAV":    true,
		"notes.txt":   false,
		"noextension": false,
	}
	for name, want := range tests {
		if got := IsAudio(name); got != want {
			t.Errorf("IsAudio(%q): expected %v, got %v", name, want, got)
		}
	}
}
