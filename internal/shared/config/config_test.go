package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "auction-service")

	cfg := Load()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8083", cfg.HTTPPort)
	assert.Equal(t, "9099", cfg.MetricsPort)
	assert.Equal(t, "auction_events", cfg.TopicAuctionEvents)
	assert.Equal(t, 10*time.Minute, cfg.AntiSnipeWindow)
	assert.Equal(t, 5*time.Minute, cfg.AntiSnipeExtension)
	assert.Equal(t, 20, cfg.KeeperRPS)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "wallet-service")
	t.Setenv("HTTP_PORT_WALLET", "18082")
	t.Setenv("ANTI_SNIPE_WINDOW", "2m")
	t.Setenv("ANTI_SNIPE_EXTENSION", "not-a-duration")
	t.Setenv("KEEPER_RPS", "-3")

	cfg := Load()

	assert.Equal(t, "18082", cfg.HTTPPort)
	assert.Equal(t, 2*time.Minute, cfg.AntiSnipeWindow)
	assert.Equal(t, 5*time.Minute, cfg.AntiSnipeExtension)
	assert.Equal(t, 20, cfg.KeeperRPS)
}
