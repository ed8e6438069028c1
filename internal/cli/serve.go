package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juliuspor/Harmony/internal/gateway"
	"github.com/juliuspor/Harmony/internal/ingest"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Harmony gateway (HTTP API, Kafka intake)",
	Run:   runServe,
}

var serveSignalNotify = signal.Notify
var serveSignalStop = signal.Stop

func runServe(cmd *cobra.Command, args []string) {
	printHeader("🌐 Harmony Gateway")
	fmt.Println("Starting Harmony Gateway...")

	stk, err := openStack()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer stk.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	serveSignalNotify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer serveSignalStop(sigChan)

	if stk.cfg.Ingest.Kafka.Enabled {
		consumer := ingest.NewKafkaConsumer(
			stk.cfg.Ingest.Kafka.Brokers,
			stk.cfg.Ingest.Kafka.ConsumerGroup,
			stk.cfg.Ingest.Kafka.Topic,
		)
		defer consumer.Close()
		listener := ingest.NewListener(consumer, stk.svc)
		go func() {
			if err := listener.Run(ctx); err != nil {
				fmt.Printf("⚠️ Kafka intake stopped: %v\n", err)
			}
		}()
		fmt.Println("📡 Kafka intake started:", stk.cfg.Ingest.Kafka.Topic)
	}

	addr := fmt.Sprintf("%s:%d", stk.cfg.Gateway.Host, stk.cfg.Gateway.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: gateway.New(stk.svc).Handler(),
	}
	go func() {
		fmt.Printf("📡 API Server listening on http://%s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("API Server Error: %v\n", err)
		}
	}()

	<-sigChan
	fmt.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
