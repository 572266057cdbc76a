package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr     = "localhost:9000"
		httpAddr = "localhost:8000"
		origins  = []string{"http://localhost:3000"}
	)

	tcases := []struct {
		name     string
		addr     string
		httpAddr string
		origins  []string
		err      bool
	}{
		{
			name:     "valid config",
			addr:     addr,
			httpAddr: httpAddr,
			origins:  origins,
			err:      false,
		},
		{
			name:     "empty listen address",
			addr:     "",
			httpAddr: httpAddr,
			origins:  origins,
			err:      true,
		},
		{
			name:     "empty http address",
			addr:     addr,
			httpAddr: "",
			origins:  origins,
			err:      true,
		},
		{
			name:     "identical addresses",
			addr:     addr,
			httpAddr: addr,
			origins:  origins,
			err:      true,
		},
		{
			name:     "no origins",
			addr:     addr,
			httpAddr: httpAddr,
			origins:  nil,
			err:      false,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.addr, tc.httpAddr, tc.origins)
			if tc.err {
				assert.Error(t, err, "expected an error")
				assert.Nil(t, cfg, "expected no config on error")
				return
			}

			assert.NoError(t, err, "expected no error")
			assert.Equal(t, tc.addr, cfg.ListenAddr, "expected listen address to be set")
			assert.Equal(t, tc.httpAddr, cfg.HTTPAddr, "expected http address to be set")
			assert.Equal(t, defaultSendQueueSize, cfg.SendQueueSize, "expected default send queue size")
		})
	}
}

func TestNewConfigSendQueueSizeFromEnv(t *testing.T) {
	t.Run("valid override", func(t *testing.T) {
		t.Setenv("CHATWIRE_SEND_QUEUE_SIZE", "64")
		cfg, err := NewConfig("localhost:9000", "localhost:8000", nil)
		assert.NoError(t, err, "expected no error")
		assert.Equal(t, 64, cfg.SendQueueSize, "expected env override applied")
	})

	t.Run("invalid override", func(t *testing.T) {
		t.Setenv("CHATWIRE_SEND_QUEUE_SIZE", "zero")
		_, err := NewConfig("localhost:9000", "localhost:8000", nil)
		assert.Error(t, err, "expected an error for a bad queue size")
	})

	t.Run("non-positive override", func(t *testing.T) {
		t.Setenv("CHATWIRE_SEND_QUEUE_SIZE", "-4")
		_, err := NewConfig("localhost:9000", "localhost:8000", nil)
		assert.Error(t, err, "expected an error for a non-positive queue size")
	})
}
