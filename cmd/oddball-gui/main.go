package main

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/prakash-kavi/Triggers/engine"
	_ "github.com/prakash-kavi/Triggers/trigger/midiport"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	engine.SetupLogger(false)

	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	cfg := engine.DefaultConfig()
	if err := cfg.LoadCache(engine.CacheFile); err != nil {
		slog.Warn("ignoring settings cache", "path", engine.CacheFile, "err", err)
	}

	if !engine.RunSubjectSetup(cfg) {
		return
	}
	if err := cfg.SaveCache(engine.CacheFile); err != nil {
		slog.Warn("could not save settings cache", "path", engine.CacheFile, "err", err)
	}

	if err := engine.Run(cfg); err != nil {
		slog.Error("experiment failed", "err", err)
		os.Exit(1)
	}
}
