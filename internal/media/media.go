package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupported is returned for containers Duration cannot read.
var ErrUnsupported = errors.New("unsupported audio format")

// Extensions accepted for upload.
var Extensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".flac": true,
	".webm": true,
	".opus": true,
}

// IsAudio reports whether the file name has an accepted audio extension.
func IsAudio(name string) bool {
	return Extensions[strings.ToLower(filepath.Ext(name))]
}

// Duration reports the playable length of an MP3 or WAV file in seconds.
func Duration(path string) (float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3Duration(path)
	case ".wav":
		return wavDuration(path)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

func mp3Duration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode MP3: %w", err)
	}
	if decoder.SampleRate() <= 0 || decoder.Length() < 0 {
		return 0, fmt.Errorf("MP3 length unknown")
	}

	// Decoded output is always 16-bit stereo.
	frames := decoder.Length() / 4
	return float64(frames) / float64(decoder.SampleRate()), nil
}

func wavDuration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, fmt.Errorf("invalid WAV file")
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read WAV duration: %w", err)
	}
	return d.Seconds(), nil
}

// EncodeWAV wraps mono 16-bit little-endian PCM in a WAV container.
func EncodeWAV(pcm []byte, sampleRate int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	file, err := os.CreateTemp("", "echolisten-*.wav")
	if err != nil {
		return nil, err
	}
	defer os.Remove(file.Name())
	defer file.Close()

	buf := &audio.IntBuffer{
		Data:           make([]int, len(pcm)/2),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = int(int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8))
	}

	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return os.ReadFile(file.Name())
}
