package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "RAIDBOSS_"

// FromEnv overlays RAIDBOSS_* variables onto base. RAIDBOSS_PRESET swaps the
// base for a named preset first; individual variables then win over it.
func FromEnv(base Balance) (Balance, error) {
	if name := os.Getenv(envPrefix + "PRESET"); name != "" {
		p, ok := Preset(name)
		if !ok {
			return Balance{}, fmt.Errorf("unknown preset %q", name)
		}
		base = p
	}
	if err := env.ParseWithOptions(&base, env.Options{Prefix: envPrefix}); err != nil {
		return Balance{}, fmt.Errorf("parse env: %w", err)
	}
	return base, nil
}

// ServerEnv is the process-level configuration of cmd/server.
type ServerEnv struct {
	Addr       string `env:"RAIDBOSS_ADDR" envDefault:":42069"`
	ConfigPath string `env:"RAIDBOSS_CONFIG" envDefault:"raidboss_config.yml"`
	// AutoTick drives running sessions from a server-side ticker. When false the
	// client advances battles through the tick endpoint.
	AutoTick bool  `env:"RAIDBOSS_AUTO_TICK" envDefault:"true"`
	Seed     int64 `env:"RAIDBOSS_SEED"`
}

func ParseServerEnv() (ServerEnv, error) {
	var s ServerEnv
	if err := env.Parse(&s); err != nil {
		return ServerEnv{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}
