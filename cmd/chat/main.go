package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"wpchat-client/internal/wpaicg"
)

func main() {
	model := flag.String("model", wpaicg.DefaultModel.APIName(), "chat model to request")
	baseURL := flag.String("base-url", wpaicg.DefaultBaseURL, "widget site base URL")
	timeout := flag.Int("timeout", 30, "per-request timeout in seconds")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		// No query on the command line, read it from stdin instead.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("error reading query from stdin: %v", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		log.Fatalf("no query provided")
	}

	chatModel, err := wpaicg.ParseModel(*model)
	if err != nil {
		log.Fatalf("invalid model: %v", err)
	}

	client, err := wpaicg.NewClient(wpaicg.Config{
		BaseURL: *baseURL,
		Timeout: time.Duration(*timeout) * time.Second,
	})
	if err != nil {
		log.Fatalf("error creating chat client: %v", err)
	}

	reply, err := client.Chat(context.Background(), query, chatModel)
	if err != nil {
		if errors.Is(err, wpaicg.ErrChat) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Fatalf("unexpected error: %v", err)
	}

	fmt.Println(reply)
}
