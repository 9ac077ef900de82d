package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	filestore "github.com/emilianodellacasa/colloquio/pkg/adapters/file"
	"github.com/emilianodellacasa/colloquio/pkg/adapters/httpapi"
	redisstore "github.com/emilianodellacasa/colloquio/pkg/adapters/redis"
	"github.com/emilianodellacasa/colloquio/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the session introspection HTTP server",
	Long: `Exposes stored sessions and Prometheus metrics over HTTP. Reads the same
state store the run command writes to.`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		port, _ := cmd.Flags().GetString("port")
		redisURL, _ := cmd.Flags().GetString("redis")

		var store ports.StateStore
		if redisURL != "" {
			parsed, err := backend.ParseURL(redisURL)
			if err != nil {
				fmt.Printf("Error parsing redis url: %v\n", err)
				os.Exit(1)
			}
			store = redisstore.NewFromClient(backend.NewClient(parsed))
		} else {
			fs, err := filestore.NewStore(filepath.Join(output, "state"))
			if err != nil {
				fmt.Printf("Error opening state store: %v\n", err)
				os.Exit(1)
			}
			store = fs
		}

		server := httpapi.NewServer(store,
			httpapi.WithMetrics(prometheus.DefaultGatherer))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: server.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Colloquio server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Colloquio server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis URL for session state (default: file store under --output)")
}
