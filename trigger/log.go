package trigger

import (
	"log/slog"
)

func init() {
	Register("log", func(string) (Device, error) {
		return NewLogChannel(slog.Default()), nil
	})
}

// LogChannel records level changes to a logger instead of hardware. It is
// only opened when asked for explicitly ("log"), for dry runs.
type LogChannel struct {
	log   *slog.Logger
	level Code
}

func NewLogChannel(log *slog.Logger) *LogChannel {
	return &LogChannel{log: log.With("device", "log")}
}

func (c *LogChannel) SetLevel(code Code) {
	c.log.Debug("trigger", "from", c.level, "to", code)
	c.level = code
}

func (c *LogChannel) Level() Code { return c.level }

func (c *LogChannel) Close() error { return nil }
