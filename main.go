/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-g3d/engine"
	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	frames := flag.Uint64("frames", 0, "stop after this many frames, 0 runs until interrupted")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("failed to load config %q: %s", *configPath, err)
	}
	if *frames > 0 {
		cfg.Engine.MaxFrames = *frames
	}
	if err := os.MkdirAll(cfg.Assets.TextureDir, 0o755); err != nil {
		core.LogFatal("failed to create texture dir: %s", err)
	}

	tb, err := testbed.NewTestGame(cfg)
	if err != nil {
		panic(err)
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		e.Shutdown()
		panic(err)
	}

	// capture sigterm and other system calls to stop the loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		panic(runErr)
	}
}
