package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wpchat-client/cmd"
	"wpchat-client/internal/api"
	"wpchat-client/internal/store"
	"wpchat-client/internal/wpaicg"
)

type ServerConfig struct {
	Port               string `env:"PORT" envDefault:"8002"`
	ChatBaseURL        string `env:"CHAT_BASE_URL" envDefault:""`
	ChatTimeoutSeconds int    `env:"CHAT_TIMEOUT_SECONDS" envDefault:"30"`
	AllowedOrigins     string `env:"ALLOWED_ORIGINS" envDefault:"*"` // Comma-separated
}

func main() {
	log.Println("Starting chat gateway...")

	cmd.LoadEnvFile()

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := store.Open()
	if err != nil {
		log.Fatalf("Failed to open conversation store: %v", err)
	}

	client, err := wpaicg.NewClient(wpaicg.Config{
		BaseURL: cfg.ChatBaseURL,
		Timeout: time.Duration(cfg.ChatTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to create chat client: %v", err)
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300, // Cache preflight response for 5 minutes
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics
	r.Use(middleware.Timeout(90 * time.Second)) // Set request timeout

	chatHandler := api.NewChatService(db, client)

	r.Route("/api/v1", func(r chi.Router) {
		chatHandler.AddRoutes(r)
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Chat gateway listening on port %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.Port, err)
	}

	log.Println("Server stopped.")
}
