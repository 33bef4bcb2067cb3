// Package assets resolves utterance audio references into playable clips.
//
// Resolution is best effort: any failure is returned as an error so the
// engine can fall back to synthetic voice instead of failing the utterance.
package assets

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/koscakluka/stage-core/core/audio"
	"github.com/koscakluka/stage-core/core/events"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultFetchTimeout = 2 * time.Second

// Resolver resolves file, res, and url audio references.
//
// Resolution runs inline on the dispatch path, so url fetches carry a short
// timeout; a slow endpoint degrades to synthetic voice rather than stalling
// the loop indefinitely.
type Resolver struct {
	httpClient *http.Client
	registry   map[string]audio.Clip
	readFile   func(string) ([]byte, error)
}

type ResolverOption func(*Resolver)

// WithFetchTimeout bounds url-mode fetches.
func WithFetchTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.httpClient.Timeout = timeout
		}
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	resolver := &Resolver{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultFetchTimeout,
		},
		registry: map[string]audio.Clip{},
		readFile: readLocalFile,
	}

	for _, opt := range opts {
		opt(resolver)
	}

	return resolver
}

// Register adds an in-process clip addressable through res-mode references.
func (r *Resolver) Register(name string, clip audio.Clip) {
	if r == nil {
		return
	}

	r.registry[name] = clip
}

func (r *Resolver) Resolve(ref events.AudioRef) (audio.Clip, error) {
	if r == nil {
		return audio.Clip{}, fmt.Errorf("no resolver configured")
	}

	switch ref.Mode {
	case events.AudioModeFile:
		data, err := r.readFile(ref.Path)
		if err != nil {
			return audio.Clip{}, fmt.Errorf("failed to read audio file: %w", err)
		}
		return decode(ref.Path, data)
	case events.AudioModeRes:
		clip, ok := r.registry[ref.Path]
		if !ok {
			return audio.Clip{}, fmt.Errorf("no registered clip %q", ref.Path)
		}
		return clip, nil
	case events.AudioModeURL:
		return r.fetch(ref.URL)
	default:
		return audio.Clip{}, fmt.Errorf("unsupported audio mode %q", ref.Mode)
	}
}

func (r *Resolver) fetch(rawURL string) (audio.Clip, error) {
	if rawURL == "" {
		return audio.Clip{}, fmt.Errorf("empty audio url")
	}

	response, err := r.httpClient.Get(rawURL)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return audio.Clip{}, fmt.Errorf("unexpected audio fetch status %d", response.StatusCode)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to read audio response: %w", err)
	}

	return decode(rawURL, data)
}

func decode(name string, data []byte) (audio.Clip, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		return decodeWAV(data)
	case ".mp3":
		return decodeMP3(data)
	default:
		// Container sniffing keeps extension-less urls working.
		if len(data) >= 4 && string(data[:4]) == "RIFF" {
			return decodeWAV(data)
		}
		return audio.Clip{}, fmt.Errorf("unsupported audio container for %q", name)
	}
}

func decodeMP3(data []byte) (audio.Clip, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to open mp3 stream: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to decode mp3 stream: %w", err)
	}

	// go-mp3 always yields 16-bit stereo; average the pairs down to mono.
	pcm := make([]int16, 0, len(raw)/4)
	for i := 0; i+3 < len(raw); i += 4 {
		left := int16(uint16(raw[i]) | uint16(raw[i+1])<<8)
		right := int16(uint16(raw[i+2]) | uint16(raw[i+3])<<8)
		pcm = append(pcm, int16((int32(left)+int32(right))/2))
	}

	return audio.Clip{PCM: pcm, SampleRate: decoder.SampleRate()}, nil
}
