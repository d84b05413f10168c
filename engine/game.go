package engine

import (
	"github.com/spaghettifunk/anima-g3d/engine/core"
)

// Game is what the engine drives. Every hook is optional.
type Game struct {
	// Config is read by the engine at Initialize. A nil Config means
	// core.DefaultConfig().
	Config       *core.Config
	State        interface{}
	FnInitialize Initialize
	FnUpdate     Update
	FnShutdown   Shutdown
}

// Initialize runs once the engine systems are up. Models the game wants
// animated every frame are registered with e.AddModel.
type Initialize func(e *Engine) error

// Update runs at the start of every frame, before transforms are computed.
type Update func(deltaTime float64) error

type Shutdown func() error
