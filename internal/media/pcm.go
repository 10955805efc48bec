package media

import (
	"encoding/binary"
	"math"
)

// ClipConfig controls how a synthesized clip is cleaned up before encoding.
type ClipConfig struct {
	SilenceThreshold float64 // RMS below which a frame counts as silence
	FrameDuration    float64 // Seconds per analysis frame
	Padding          float64 // Seconds of silence kept around the speech
	Peak             int16   // Loudest allowed sample after normalization
}

// DefaultClipConfig returns settings tuned for single-word TTS clips.
func DefaultClipConfig() ClipConfig {
	return ClipConfig{
		SilenceThreshold: 300,
		FrameDuration:    0.01,
		Padding:          0.05,
		Peak:             29000, // about -1 dBFS
	}
}

// Samples decodes 16-bit little-endian mono PCM.
func Samples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// PCM encodes samples as 16-bit little-endian mono PCM.
func PCM(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// RMS is the root mean square level of samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// TrimSilence drops leading and trailing frames quieter than the threshold,
// keeping cfg.Padding on each side. A clip with no speech is returned as is.
func TrimSilence(samples []int16, sampleRate int, cfg ClipConfig) []int16 {
	frame := int(float64(sampleRate) * cfg.FrameDuration)
	if frame <= 0 || len(samples) < frame {
		return samples
	}

	first, last := -1, -1
	for start := 0; start < len(samples); start += frame {
		end := min(start+frame, len(samples))
		if RMS(samples[start:end]) >= cfg.SilenceThreshold {
			if first < 0 {
				first = start
			}
			last = end
		}
	}
	if first < 0 {
		return samples
	}

	pad := int(float64(sampleRate) * cfg.Padding)
	first = max(first-pad, 0)
	last = min(last+pad, len(samples))
	return samples[first:last]
}

// Normalize scales samples down so the loudest one is at most peak.
// Quieter clips are left untouched.
func Normalize(samples []int16, peak int16) []int16 {
	loudest := 0
	for _, s := range samples {
		loudest = max(loudest, abs(int(s)))
	}
	if loudest <= int(peak) {
		return samples
	}

	ratio := float64(peak) / float64(loudest)
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(float64(s) * ratio)
	}
	return out
}

// CleanClip trims silence and normalizes 16-bit PCM.
func CleanClip(pcm []byte, sampleRate int, cfg ClipConfig) []byte {
	samples := TrimSilence(Samples(pcm), sampleRate, cfg)
	return PCM(Normalize(samples, cfg.Peak))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
