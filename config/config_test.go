package config

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "microdns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "resolvers:\n  - 8.8.8.8\n  - 1.1.1.1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultHopLimit, cfg.HopLimit)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, DefaultRateLimitPerSecond, cfg.RateLimit.PerSecond)
	require.Equal(t, DefaultRateLimitCooldown, cfg.RateLimit.Cooldown)
	require.Equal(t, 16, cfg.Storage.Capacity)
}

func TestLoad_RejectsNoResolvers(t *testing.T) {
	path := writeConfig(t, "resolvers: []\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsTooManyResolvers(t *testing.T) {
	path := writeConfig(t, "resolvers:\n  - 1.1.1.1\n  - 2.2.2.2\n  - 3.3.3.3\n  - 4.4.4.4\n  - 5.5.5.5\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsInvalidResolverIP(t *testing.T) {
	path := writeConfig(t, "resolvers:\n  - not-an-ip\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsBadHopLimit(t *testing.T) {
	path := writeConfig(t, "resolvers:\n  - 8.8.8.8\nhop_limit: 999\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestConfig_ResolverIPs(t *testing.T) {
	cfg := &Config{Resolvers: []string{"8.8.8.8", "1.1.1.1"}}
	ips, err := cfg.ResolverIPs()
	require.NoError(t, err)
	require.Len(t, ips, 2)
	require.True(t, ips[0].Equal(net.IPv4(8, 8, 8, 8)))
}
