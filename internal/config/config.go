package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime settings for the chat server.
type Config struct {
	// ListenAddr is the address of the framed TCP listener.
	ListenAddr string
	// HTTPAddr is the address of the HTTP server carrying the websocket
	// gateway and the debug vars endpoint.
	HTTPAddr string
	// AllowedOrigins restricts websocket upgrades; empty allows any.
	AllowedOrigins []string
	// SendQueueSize is the per-client outbound event buffer.
	SendQueueSize int
}

const defaultSendQueueSize = 256

func NewConfig(listenAddr, httpAddr string, allowedOrigins []string) (*Config, error) {
	if listenAddr == "" {
		return nil, fmt.Errorf("listen address cannot be empty")
	}
	if httpAddr == "" {
		return nil, fmt.Errorf("http address cannot be empty")
	}
	if listenAddr == httpAddr {
		return nil, fmt.Errorf("listen and http addresses cannot be the same")
	}

	cfg := &Config{
		ListenAddr:     listenAddr,
		HTTPAddr:       httpAddr,
		AllowedOrigins: allowedOrigins,
		SendQueueSize:  defaultSendQueueSize,
	}

	if qs := os.Getenv("CHATWIRE_SEND_QUEUE_SIZE"); qs != "" {
		size, err := strconv.Atoi(qs)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid CHATWIRE_SEND_QUEUE_SIZE %q", qs)
		}
		cfg.SendQueueSize = size
	}

	return cfg, nil
}
