package ecs

import "github.com/rs/zerolog"

// Logger wraps zerolog for model- and scheduler-level diagnostics. The zero
// value is a no-op logger, matching zerolog.Nop().
type Logger struct {
	zerolog.Logger
}

// NewLogger wraps an existing zerolog.Logger.
func NewLogger(l zerolog.Logger) Logger { return Logger{l} }

// ForSystem returns a sub-logger tagged with the running system's name, so
// every line it emits during a tick can be traced back to it.
func (l Logger) ForSystem(name string) Logger {
	return Logger{l.With().Str("system", name).Logger()}
}

// LogArchetypes writes one array entry per live archetype: its bit pattern,
// row count, and column count. It is a no-op below level.
func (l Logger) LogArchetypes(m *Model, level zerolog.Level) {
	if l.GetLevel() > level {
		return
	}
	arr := zerolog.Arr()
	for a, b := range m.archetypes {
		arr = arr.Dict(zerolog.Dict().
			Uint64("archetype", uint64(a)).
			Int("rows", b.Len()).
			Int("columns", len(b.columns)))
	}
	l.WithLevel(level).Array("archetypes", arr).Msg("model snapshot")
}
