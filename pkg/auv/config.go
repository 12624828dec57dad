package auv

import (
	"time"

	"auvlab.xyz/triton-com-server/pkg/common"
)

type Config struct {
	CommandTTL       time.Duration
	DescentFreshness time.Duration
	SweepPeriod      time.Duration
}

func DefaultConfig() Config {
	return Config{
		CommandTTL:       time.Hour,
		DescentFreshness: 10 * time.Minute,
		SweepPeriod:      time.Minute,
	}
}

func ConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		CommandTTL:       time.Duration(common.EnvInt(common.EnvKeyCommandTTLSeconds, int(def.CommandTTL/time.Second))) * time.Second,
		DescentFreshness: time.Duration(common.EnvInt(common.EnvKeyDescentFreshnessSeconds, int(def.DescentFreshness/time.Second))) * time.Second,
		SweepPeriod:      time.Duration(common.EnvInt(common.EnvKeyExpireSweepSeconds, int(def.SweepPeriod/time.Second))) * time.Second,
	}
}
