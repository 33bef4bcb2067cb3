package assets

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/koscakluka/stage-core/core/audio"
	"github.com/koscakluka/stage-core/core/events"
)

func buildWAV(sampleRate, channels int, samples []int16) []byte {
	dataSize := len(samples) * 2
	out := make([]byte, 0, 44+dataSize)

	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+dataSize))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate*channels*2))
	out = binary.LittleEndian.AppendUint16(out, uint16(channels*2))
	out = binary.LittleEndian.AppendUint16(out, 16)

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dataSize))
	for _, sample := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(sample))
	}
	return out
}

func TestResolveFileDecodesMonoWAV(t *testing.T) {
	resolver := NewResolver()
	resolver.readFile = func(path string) ([]byte, error) {
		if path != "/clips/hello.wav" {
			return nil, fmt.Errorf("unexpected path %q", path)
		}
		return buildWAV(16000, 1, []int16{0, 1000, -1000, 32000}), nil
	}

	clip, err := resolver.Resolve(events.AudioRef{Mode: events.AudioModeFile, Path: "/clips/hello.wav"})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if clip.SampleRate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", clip.SampleRate)
	}
	if len(clip.PCM) != 4 || clip.PCM[3] != 32000 {
		t.Fatalf("unexpected pcm payload: %v", clip.PCM)
	}
}

func TestResolveFileDownmixesStereo(t *testing.T) {
	resolver := NewResolver()
	resolver.readFile = func(string) ([]byte, error) {
		return buildWAV(22050, 2, []int16{1000, 3000, -2000, 2000}), nil
	}

	clip, err := resolver.Resolve(events.AudioRef{Mode: events.AudioModeFile, Path: "stereo.wav"})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if len(clip.PCM) != 2 || clip.PCM[0] != 2000 || clip.PCM[1] != 0 {
		t.Fatalf("unexpected downmixed pcm: %v", clip.PCM)
	}
}

func TestResolveResUsesRegistry(t *testing.T) {
	resolver := NewResolver()
	resolver.Register("chime", audio.Clip{PCM: []int16{1, 2, 3}, SampleRate: 8000})

	clip, err := resolver.Resolve(events.AudioRef{Mode: events.AudioModeRes, Path: "chime"})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if len(clip.PCM) != 3 {
		t.Fatalf("unexpected clip: %v", clip.PCM)
	}

	if _, err := resolver.Resolve(events.AudioRef{Mode: events.AudioModeRes, Path: "gong"}); err == nil {
		t.Fatal("expected an error for an unregistered clip")
	}
}

func TestResolveRejectsUnsupportedInputs(t *testing.T) {
	resolver := NewResolver()
	resolver.readFile = func(string) ([]byte, error) { return []byte("not audio"), nil }

	testCases := []struct {
		name string
		ref  events.AudioRef
	}{
		{name: "unknown mode", ref: events.AudioRef{Mode: "tape"}},
		{name: "synthetic mode", ref: events.AudioRef{Mode: events.AudioModeSynthetic}},
		{name: "empty url", ref: events.AudioRef{Mode: events.AudioModeURL}},
		{name: "unsupported container", ref: events.AudioRef{Mode: events.AudioModeFile, Path: "x.ogg"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := resolver.Resolve(testCase.ref); err == nil {
				t.Fatal("expected a resolve error")
			}
		})
	}
}
