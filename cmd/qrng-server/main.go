// Command qrng-server exposes a USB-attached quantum random number
// generator over a REST API, keeping a ring buffer topped up in the
// background so request latency is decoupled from device transfer speed.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/docdailey/quantum-entropy-api/internal/api"
	"github.com/docdailey/quantum-entropy-api/internal/config"
	"github.com/docdailey/quantum-entropy-api/internal/device"
	"github.com/docdailey/quantum-entropy-api/internal/refill"
	"github.com/docdailey/quantum-entropy-api/internal/ring"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "listen address")
	deviceIndex := flag.Int("device-index", cfg.DeviceIndex, "USB device index to open")
	flag.Parse()
	cfg.Addr = *addr
	cfg.DeviceIndex = *deviceIndex

	dev, err := device.Open(cfg.DeviceIndex)
	if err != nil {
		log.Fatalf("failed to open QRNG device at index %d: %v", cfg.DeviceIndex, err)
	}
	defer dev.Close()

	buf := ring.New(cfg.BufferSize)
	var devMu sync.Mutex

	refillTask := refill.New(dev, &devMu, buf, cfg.HighWaterMark)
	refillCtx, cancelRefill := context.WithCancel(context.Background())
	go refillTask.Run(refillCtx)

	srv := api.New(dev, &devMu, buf, refillTask)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		log.Printf("qrng-server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancelRefill()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}
