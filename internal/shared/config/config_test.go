package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "wallet-service")

	cfg := Load()

	require.Equal(t, "wallet-service", cfg.ServiceName)
	require.Equal(t, "local", cfg.Env)
	require.Equal(t, "8082", cfg.HTTPPort)
	require.Equal(t, "9098", cfg.MetricsPort)
	require.Equal(t, "bid_placed", cfg.TopicBidPlaced)
	require.Equal(t, "settlement_requested", cfg.TopicSettlementRequested)
	require.EqualValues(t, 9, cfg.PayoutMultiplier)
	require.Equal(t, 60, cfg.CatalogCacheTTLSeconds)
}

func TestLoadPortsPerService(t *testing.T) {
	cases := []struct {
		svc         string
		httpPort    string
		metricsPort string
	}{
		{"wallet-service", "8082", "9098"},
		{"admin-service", "8084", "9099"},
		{"settlement-worker", "", "9097"},
		{"anything-else", "8080", "9095"},
	}
	for _, tc := range cases {
		t.Setenv("SERVICE_NAME", tc.svc)
		cfg := Load()
		require.Equal(t, tc.httpPort, cfg.HTTPPort, "service %s", tc.svc)
		require.Equal(t, tc.metricsPort, cfg.MetricsPort, "service %s", tc.svc)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "settlement-worker")
	t.Setenv("PAYOUT_MULTIPLIER", "90")
	t.Setenv("KAFKA_TOPIC_SETTLEMENT_REQUESTED", "settlement_requested_v2")
	t.Setenv("METRICS_PORT_SETTLEMENT", "19097")

	cfg := Load()

	require.EqualValues(t, 90, cfg.PayoutMultiplier)
	require.Equal(t, "settlement_requested_v2", cfg.TopicSettlementRequested)
	require.Equal(t, "19097", cfg.MetricsPort)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("SERVICE_NAME", "wallet-service")
	t.Setenv("PAYOUT_MULTIPLIER", "nove")

	cfg := Load()
	require.EqualValues(t, 9, cfg.PayoutMultiplier)
}
