package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatwire/chatwire/internal/config"
	"github.com/chatwire/chatwire/internal/protocol"
	"github.com/chatwire/chatwire/internal/server"
	"github.com/chatwire/chatwire/internal/stats"
	"github.com/chatwire/chatwire/internal/store"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	httpAddr       string
	envFile        string
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:9000", "framed TCP listener address")
	flag.StringVar(&httpAddr, "http-addr", "localhost:8000", "websocket gateway and debug address")
	flag.StringVar(&envFile, "env-file", "", "optional .env file with extra settings")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for websocket upgrades")
	flag.Parse()

	logger := log.New(os.Stderr, "[chatwire] ", log.LstdFlags)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logger.Fatal("load env file:", err)
		}
	}

	cfg, err := config.NewConfig(addr, httpAddr, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	roomStore := store.NewMemoryRoomStore()

	engine, err := server.NewEngine(logger, roomStore, statsUpdater)
	if err != nil {
		logger.Fatal("new engine:", err)
	}

	srv := server.NewChatServer(logger, cfg, engine, protocol.NewJSONCodec(), mux)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go engine.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("server shutdown:", err)
	}

	logger.Println("draining engine...")
	if err := engine.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("engine shutdown:", err)
	}

	logger.Println("shutdown complete")
}
