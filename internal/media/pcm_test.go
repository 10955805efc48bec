package media

import (
	"math"
	"testing"
)

func TestSamplesPCM(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767, -32768}
	got := Samples(PCM(samples))
	if len(got) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, samples[i], got[i])
		}
	}

	// trailing odd byte is dropped
	if n := len(Samples([]byte{1, 2, 3})); n != 1 {
		t.Errorf("Expected 1 sample from 3 bytes, got %d", n)
	}
}

func TestRMS(t *testing.T) {
	if RMS(nil) != 0 {
		t.Error("Expected 0 for empty samples")
	}
	if got := RMS([]int16{1000, -1000, 1000, -1000}); math.Abs(got-1000) > 0.01 {
		t.Errorf("Expected RMS 1000, got %f", got)
	}
}

func TestTrimSilence(t *testing.T) {
	cfg := DefaultClipConfig()
	rate := 1000 // 10 samples per frame, 50 samples of padding

	samples := make([]int16, 600)
	for i := 200; i < 300; i++ {
		samples[i] = 2000
	}

	got := TrimSilence(samples, rate, cfg)
	if len(got) != 200 {
		t.Errorf("Expected 200 samples after trimming, got %d", len(got))
	}
	if got[49] != 0 || got[50] != 2000 {
		t.Errorf("Expected speech to start after 50 samples of padding")
	}
}

func TestTrimSilence_KeepsSilentAndShortClips(t *testing.T) {
	cfg := DefaultClipConfig()

	silent := make([]int16, 500)
	if got := TrimSilence(silent, 1000, cfg); len(got) != 500 {
		t.Errorf("Expected silent clip untouched, got %d samples", len(got))
	}

	short := []int16{5000, 5000}
	if got := TrimSilence(short, 1000, cfg); len(got) != 2 {
		t.Errorf("Expected clip shorter than a frame untouched, got %d samples", len(got))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		peak    int16
		want    []int16
	}{
		{"scales loud clip", []int16{10000, -20000, 5000}, 10000, []int16{5000, -10000, 2500}},
		{"keeps quiet clip", []int16{100, -200}, 10000, []int16{100, -200}},
		{"empty", nil, 10000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.samples, tt.peak)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d samples, got %d", len(tt.want), len(got))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Sample %d: expected %d, got %d", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestCleanClip(t *testing.T) {
	samples := make([]int16, 600)
	for i := 200; i < 300; i++ {
		samples[i] = 32000
	}

	out := Samples(CleanClip(PCM(samples), 1000, DefaultClipConfig()))
	if len(out) != 200 {
		t.Fatalf("Expected 200 samples, got %d", len(out))
	}
	if out[100] != DefaultClipConfig().Peak {
		t.Errorf("Expected peak %d, got %d", DefaultClipConfig().Peak, out[100])
	}
}
