package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakshamg567/catchping/internal/config"
	"github.com/sakshamg567/catchping/internal/events"
	"github.com/sakshamg567/catchping/internal/room"
	"github.com/sakshamg567/catchping/internal/transport"
	"github.com/sakshamg567/catchping/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CATCHPING_CONFIG"), "path to a JSON config file")
	port := flag.String("port", "", "TCP port for line clients (overrides tcp_addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config: %v", err)
	}
	if *port != "" {
		cfg.TCPAddr = ":" + *port
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("log level %q: %v", cfg.LogLevel, err)
	}

	pub, err := events.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		logger.Fatal("events: %v", err)
	}
	defer pub.Close()

	rm := room.New(room.Options{Game: cfg.Game, Words: cfg.Words, Publisher: pub})
	srv := transport.New(rm, cfg.NameTimeout)

	tcpLn, err := net.Listen("tcp", cfg.TCPAddr)
	if err != nil {
		logger.Fatal("listen tcp %s: %v", cfg.TCPAddr, err)
	}
	httpLn, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		logger.Fatal("listen http %s: %v", cfg.HTTPAddr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	roomDone := make(chan struct{})
	go func() {
		rm.Run(ctx)
		close(roomDone)
	}()
	go func() {
		if err := srv.ServeHTTP(httpLn); err != nil {
			logger.Error("http: %v", err)
			stop()
		}
	}()
	go func() {
		if err := srv.ServeTCP(ctx, tcpLn); err != nil {
			logger.Error("tcp: %v", err)
			stop()
		}
	}()

	logger.Info("catchping room %s ready (tcp %s, http %s)", rm.ID, cfg.TCPAddr, cfg.HTTPAddr)
	<-ctx.Done()
	logger.Info("shutting down")

	<-roomDone
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown: %v", err)
	}
	logger.Info("bye")
}
