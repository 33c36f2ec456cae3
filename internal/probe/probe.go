package probe

import (
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"slices"

	"github.com/KyleBrandon/vzero-dashboard/config"
)

// NewProbe returns the probe for the configured plugins. The mock probe serves fixed readings
// for every plugin.
func NewProbe(cfg config.DeviceConfig, useMock bool) (Probe, error) {
	slog.Debug(">>NewProbe", "mock", useMock)
	defer slog.Debug("<<NewProbe")

	if useMock {
		return NewMockProbe(cfg), nil
	}

	return NewHardwareProbe(cfg)
}

// Hash identifies a sensor to the middleware. It is stable for a device serial, plugin and
// address.
func Hash(serial, plugin, addr string) string {
	sum := md5.Sum([]byte(serial + plugin + addr))
	return hex.EncodeToString(sum[:])
}

func enabled(cfg config.DeviceConfig, plugin string) bool {
	return len(cfg.Plugins) == 0 || slices.Contains(cfg.Plugins, plugin)
}
