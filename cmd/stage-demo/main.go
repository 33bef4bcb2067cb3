// Command stage-demo renders a conversation stage in the terminal, either
// replaying a recorded timeline or following a live event producer.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	stage "github.com/koscakluka/stage-core/core"
	"github.com/koscakluka/stage-core/core/audio"
	"github.com/koscakluka/stage-core/core/audio/assets"
	"github.com/koscakluka/stage-core/core/audio/miniaudio"
	"github.com/koscakluka/stage-core/core/audio/portaudio"
	"github.com/koscakluka/stage-core/core/ingest"
)

var (
	timelinePath   string
	producerURL    string
	conversationID string
	audioBackend   string
)

var rootCmd = &cobra.Command{
	Use:   "stage-demo",
	Short: "Terminal stage for multi-agent conversations",
	Long: `Render a multi-agent conversation as a terminal stage.

With --timeline the stage replays a recorded script, with seeking and
pausing. With --url it follows a live event producer over a websocket,
reconnecting on its own when the link drops.`,
	RunE: runStage,
}

func init() {
	rootCmd.Flags().StringVar(&timelinePath, "timeline", "", "path to a demo timeline JSON file")
	rootCmd.Flags().StringVar(&producerURL, "url", os.Getenv("STAGE_URL"), "websocket url of the event producer")
	rootCmd.Flags().StringVar(&conversationID, "conversation", os.Getenv("STAGE_CONVERSATION_ID"), "conversation to subscribe to")
	rootCmd.Flags().StringVar(&audioBackend, "audio", "off", "audio output: miniaudio, portaudio or off")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runStage(cmd *cobra.Command, _ []string) error {
	client, err := buildClient()
	if err != nil {
		return err
	}

	engine, closeSink, err := buildEngine()
	if err != nil {
		return err
	}
	if closeSink != nil {
		defer closeSink()
	}

	coordinator := stage.NewCoordinator(
		stage.WithEventSource(client),
		stage.WithAudioEngine(engine),
	)
	defer coordinator.Close()

	program := tea.NewProgram(newModel(coordinator, client), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("stage failed: %w", err)
	}

	return nil
}

func buildClient() (*ingest.Client, error) {
	if timelinePath != "" {
		data, err := os.ReadFile(timelinePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read timeline: %w", err)
		}
		timeline, err := ingest.ParseTimeline(data)
		if err != nil {
			return nil, err
		}
		return ingest.NewClient(ingest.WithTimeline(timeline)), nil
	}

	if producerURL == "" {
		return nil, fmt.Errorf("either --timeline or --url (or STAGE_URL) is required")
	}

	return ingest.NewClient(
		ingest.WithURL(producerURL),
		ingest.WithConversationID(conversationID),
	), nil
}

func buildEngine() (*audio.Engine, func(), error) {
	opts := []audio.EngineOption{audio.WithAssetResolver(assets.NewResolver())}

	switch audioBackend {
	case "miniaudio":
		sink, err := miniaudio.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open miniaudio output: %w", err)
		}
		opts = append(opts, audio.WithSink(sink), audio.WithEncodingInfo(sink.EncodingInfo()))
		return audio.NewEngine(opts...), sink.Close, nil
	case "portaudio":
		sink, err := portaudio.NewClient(1024)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open portaudio output: %w", err)
		}
		opts = append(opts, audio.WithSink(sink), audio.WithEncodingInfo(sink.EncodingInfo()))
		return audio.NewEngine(opts...), sink.Close, nil
	case "off":
		return audio.NewEngine(opts...), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown audio backend %q", audioBackend)
	}
}
