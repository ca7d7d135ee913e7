package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/parallax/engine"
	"github.com/spaghettifunk/parallax/engine/core"
)

func main() {
	configPath := flag.String("config", "parallax.toml", "path to the configuration file")
	flag.Parse()

	app, err := engine.NewApplication(*configPath)
	if err != nil {
		core.LogFatal("failed to start: %v", err)
	}
	defer app.Shutdown()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-signals
		core.LogInfo("Received signal %v, requesting quit.", s)
		core.EventFireDeferred(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	if err := app.Run(); err != nil {
		core.LogError("frame loop failed: %v", err)
	}
}
