// Command liveprobe opens a live session against a running gateway, sends
// one text turn and prints the events it gets back. It is the smallest
// end-to-end check of the realtime path.
//
// Usage:
//
//	liveprobe -url ws://localhost:8080/v1/live -alias orbit-v3.2 -text "ping"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"alias_gateway/internal/live"
	"alias_gateway/internal/telemetry"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/v1/live", "live channel URL")
	alias := flag.String("alias", "echo-v1.0", "alias id to start the session with")
	text := flag.String("text", "ping", "text to send as the client turn")
	logURL := flag.String("log-url", "", "optional gateway /v1/log endpoint for client telemetry")
	timeout := flag.Duration("timeout", 30*time.Second, "how long to wait for the turn to complete")
	flag.Parse()

	var opts []live.ClientOption
	if *logURL != "" {
		reporter := telemetry.NewHTTPReporter(*logURL, 0)
		defer reporter.Close()
		opts = append(opts, live.WithReporter(reporter))
	}

	client := live.NewClient(*url, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Connect(ctx, live.ConnectConfig{AliasID: *alias}); err != nil {
		log.Fatalf("Failed to open live session: %v", err)
	}
	defer client.Disconnect()

	if err := client.Send([]live.Part{{Text: *text}}, true); err != nil {
		log.Fatalf("Failed to send turn: %v", err)
	}

	audioBytes := 0
	for {
		select {
		case event := <-client.Events():
			switch ev := event.(type) {
			case live.OpenEvent:
				fmt.Println("session open")
			case live.SetupCompleteEvent:
				fmt.Println("setup complete")
			case live.AudioEvent:
				audioBytes += len(ev.Data)
			case live.InputTranscriptionEvent:
				fmt.Printf("you: %s\n", ev.Text)
			case live.OutputTranscriptionEvent:
				fmt.Printf("model: %s\n", ev.Text)
			case live.ContentEvent:
				if ev.Content.ModelTurn == nil {
					continue
				}
				for _, part := range ev.Content.ModelTurn.Parts {
					if part.Text != "" {
						fmt.Printf("model: %s\n", part.Text)
					}
				}
			case live.InterruptedEvent:
				fmt.Println("turn interrupted")
			case live.ErrorEvent:
				fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
			case live.TurnCompleteEvent:
				if audioBytes > 0 {
					fmt.Printf("received %d bytes of audio\n", audioBytes)
				}
				fmt.Println("turn complete")
				return
			case live.CloseEvent:
				fmt.Println("session closed")
				return
			}
		case <-ctx.Done():
			log.Fatal("Timed out waiting for turn to complete")
		}
	}
}
