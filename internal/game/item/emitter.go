package item

import "log/slog"

// logEmitter stands in for a particle system on a headless server.
type logEmitter struct {
	name string
}

func (e logEmitter) Play() {
	slog.Debug("particles emitting", "item", e.name)
}

func (e logEmitter) Stop() {
	slog.Debug("particles stopped", "item", e.name)
}
