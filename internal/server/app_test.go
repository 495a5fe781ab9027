package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/config"
	"github.com/dmitrijs2005/credvault/internal/server/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gs "github.com/dmitrijs2005/credvault/internal/server/grpc"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = ""
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCAddr = "127.0.0.1:0"
	c.HashCost = 4
	c.LogLevel = "error"
	return c
}

func TestNewApp_MemoryStore(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	assert.Nil(t, app.db)
	assert.NotNil(t, app.auth)
	assert.NotNil(t, app.http)
	app.dispatcher.Close()
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"bad jwt algorithm", func(c *config.Config) { c.JWTAlgorithm = "RS256" }},
		{"empty secret", func(c *config.Config) { c.SecretKey = "" }},
		{"zero reset ttl", func(c *config.Config) { c.ResetTokenValidityDuration = 0 }},
		{"smtp without host", func(c *config.Config) {
			c.SMTPSuppressSend = false
			c.SMTPHost = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := memoryConfig()
			tt.mutate(c)
			_, err := NewApp(context.Background(), c)
			assert.Error(t, err)
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestCheckHealth_FollowsPing(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	app := &App{
		logger:  logging.Nop{},
		metrics: m,
		health:  gs.NewHealthServer("unused", logging.Nop{}),
	}

	app.checkHealth(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseHealthy))

	app.pinger = fakePinger{err: errors.New("connection reset")}
	app.checkHealth(context.Background())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DatabaseHealthy))

	app.pinger = fakePinger{}
	app.checkHealth(context.Background())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseHealthy))
}
