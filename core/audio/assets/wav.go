package assets

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/koscakluka/stage-core/core/audio"
)

func readLocalFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// decodeWAV parses a RIFF/WAVE container holding 16-bit PCM and downmixes it
// to mono. Anything else (float, compressed, odd bit depths) is rejected so
// the caller falls back to synthesis.
func decodeWAV(data []byte) (audio.Clip, error) {
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return audio.Clip{}, fmt.Errorf("not a RIFF/WAVE container")
	}

	var (
		channels   int
		sampleRate int
		bitDepth   int
		pcmBytes   []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			return audio.Clip{}, fmt.Errorf("truncated %q chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return audio.Clip{}, fmt.Errorf("short fmt chunk")
			}
			if format := binary.LittleEndian.Uint16(data[body : body+2]); format != 1 {
				return audio.Clip{}, fmt.Errorf("unsupported wav format %d", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcmBytes = data[body : body+chunkSize]
		}

		// Chunks are word aligned.
		offset = body + chunkSize + chunkSize%2
	}

	if sampleRate == 0 || pcmBytes == nil {
		return audio.Clip{}, fmt.Errorf("missing fmt or data chunk")
	}
	if bitDepth != 16 {
		return audio.Clip{}, fmt.Errorf("unsupported wav bit depth %d", bitDepth)
	}
	if channels < 1 {
		return audio.Clip{}, fmt.Errorf("unsupported channel count %d", channels)
	}

	frameBytes := 2 * channels
	frames := len(pcmBytes) / frameBytes
	pcm := make([]int16, frames)
	for frame := range frames {
		sum := int32(0)
		for channel := range channels {
			at := frame*frameBytes + channel*2
			sum += int32(int16(binary.LittleEndian.Uint16(pcmBytes[at : at+2])))
		}
		pcm[frame] = int16(sum / int32(channels))
	}

	return audio.Clip{PCM: pcm, SampleRate: sampleRate}, nil
}
