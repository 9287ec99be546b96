// Command orbion runs a voice tutoring session against a realtime
// conversational model and renders it in the terminal.
//
// Environment variables:
//
//	GEMINI_API_KEY - Required for the realtime endpoint
//
// Flags select the audio backend and the tutoring scenario.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	session "github.com/ekokodan/orbion-experience/core"
	"github.com/ekokodan/orbion-experience/core/audio/miniaudio"
	"github.com/ekokodan/orbion-experience/core/audio/portaudio"
	"github.com/ekokodan/orbion-experience/core/realtime/gemini"
	"github.com/ekokodan/orbion-experience/tui"
)

const defaultModel = "models/gemini-2.0-flash-live-001"

const systemPrompt = `You are Orbion, a friendly French tutor guiding a beginner
through ordering at a Parisian café. Speak mostly French, slowly, with short
sentences, and gently correct mistakes. When the learner demonstrates one of
the scenario checkpoints, call markCheckpointComplete with its id.`

func checkpointDefinitions() []session.CheckpointDefinition {
	return []session.CheckpointDefinition{
		{ID: "greet", Title: "Greet the waiter", Hint: `Try "Bonjour !"`},
		{ID: "order", Title: "Order a drink", Hint: `"Je voudrais un café, s'il vous plaît."`},
		{ID: "ask-price", Title: "Ask for the bill", Hint: `"L'addition, s'il vous plaît ?"`},
		{ID: "goodbye", Title: "Say goodbye", Hint: `"Merci, au revoir !"`},
	}
}

func main() {
	_ = godotenv.Load()

	backend := flag.String("backend", "miniaudio", "audio backend: miniaudio or portaudio")
	model := flag.String("model", defaultModel, "realtime model to connect to")
	flag.Parse()

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY required")
	}

	if err := run(*backend, *model); err != nil {
		log.Fatal(err)
	}
}

func run(backend, model string) error {
	source, sink, closeAudio, err := openAudio(backend)
	if err != nil {
		return fmt.Errorf("failed to open audio backend %q: %w", backend, err)
	}
	defer closeAudio()

	definitions := checkpointDefinitions()
	screen := tui.New(definitions)

	client := session.NewClient(
		session.WithTransport(gemini.NewClient()),
		session.WithAudioSource(source),
		session.WithAudioSink(sink),
		session.WithModel(model),
		session.WithSystemPrompt(systemPrompt),
		session.WithCheckpoints(definitions...),
		session.WithEventHandler(screen.Push),
	)

	if err := client.Connect(context.Background()); err != nil {
		return err
	}
	defer client.Disconnect()

	program := tea.NewProgram(screen, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}

func openAudio(backend string) (session.AudioSource, session.AudioSink, func(), error) {
	switch backend {
	case "miniaudio":
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, nil, nil, err
		}
		return client.Source(), client.Sink(), func() { _ = client.Close() }, nil

	case "portaudio":
		client, err := portaudio.NewClient()
		if err != nil {
			return nil, nil, nil, err
		}
		return client.Source(), client.Sink(), func() { _ = client.Close() }, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown backend")
}
