package ecs

import "github.com/JeremyLoy/config"

// RunnerConfig is environment-driven configuration for a Runner: a target
// number of ticks per second, and the maximum number of goroutines that
// may run concurrently within a single scheduling tier (0 means unbounded).
// The Runner does not pace ticks itself; TickRate reaches systems only
// through RunnerContext.Config.
type RunnerConfig struct {
	TickRate   int `config:"TICK_RATE"`
	MaxWorkers int `config:"MAX_WORKERS"`
}

// LoadRunnerConfig reads RunnerConfig from the process environment on top
// of 60-ticks-per-second, unbounded-worker defaults.
func LoadRunnerConfig() (RunnerConfig, error) {
	cfg := RunnerConfig{TickRate: 60, MaxWorkers: 0}
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
