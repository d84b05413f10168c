package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/model"
	"github.com/spaghettifunk/anima-g3d/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything and cannot be used again
	EngineStageShutdown
)

// frames between two frame time reports at debug level
const metricsReportFrames = 120

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.Config
	systemManager *systems.SystemManager
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      time.Duration
	models        []*model.Model
}

func New(g *Game) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("engine needs a game: %w", core.ErrInvalidConfig)
	}
	cfg := g.Config
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// AddModel registers m for the per-frame transform pass. The engine owns
// registered models and disposes them at Shutdown.
func (e *Engine) AddModel(m *model.Model) error {
	if m == nil {
		return fmt.Errorf("cannot add a nil model: %w", core.ErrInvalidConfig)
	}
	for _, existing := range e.models {
		if existing == m {
			return nil
		}
	}
	e.models = append(e.models, m)
	return nil
}

func (e *Engine) Models() []*model.Model {
	return e.models
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	if err := core.ConfigureLogging(e.config.Logging); err != nil {
		return err
	}

	sm, err := systems.NewSystemManager(e.config)
	if err != nil {
		core.LogError("failed to start the engine systems: %s", err)
		return err
	}
	e.systemManager = sm

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			core.LogError("game initialization failed: %s", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized with %d models", len(e.models))
	return nil
}

// Frame advances the game by deltaTime seconds: the game update first, then
// asset reloads, then the transforms and skinning matrices of every model.
func (e *Engine) Frame(deltaTime float64) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(deltaTime); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}
	if e.systemManager != nil {
		e.systemManager.Update()
	}
	for _, m := range e.models {
		m.CalculateTransforms()
	}

	e.metrics.Update(deltaTime)
	if e.metrics.TotalFrames()%metricsReportFrames == 0 {
		core.LogDebug("frame %d: %.1f fps, %.3f ms", e.metrics.TotalFrames(), e.metrics.FPS(), e.metrics.FrameTime())
	}
	return nil
}

// Run calls Frame until ctx is done, a frame fails, or Engine.MaxFrames
// frames have run when it is not zero. Frames are paced to Engine.TargetFPS
// when it is positive.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	var targetFrame time.Duration
	if e.config.Engine.TargetFPS > 0 {
		targetFrame = time.Second / time.Duration(e.config.Engine.TargetFPS)
	}
	maxFrames := e.config.Engine.MaxFrames
	var frames uint64

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for {
		if ctx.Err() != nil {
			core.LogInfo("engine stopped after %d frames", frames)
			return nil
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := (currentTime - e.lastTime).Seconds()

		if err := e.Frame(delta); err != nil {
			core.LogError("frame %d failed, stopping: %s", frames, err)
			return err
		}
		e.lastTime = currentTime
		frames++

		if maxFrames > 0 && frames >= maxFrames {
			core.LogInfo("engine reached %d frames", frames)
			return nil
		}

		if targetFrame > 0 {
			e.clock.Update()
			remaining := targetFrame - (e.clock.Elapsed() - currentTime)
			if remaining > 0 {
				timer := time.NewTimer(remaining)
				select {
				case <-ctx.Done():
					timer.Stop()
				case <-timer.C:
				}
			}
		}
	}
}

// Shutdown calls the game's shutdown hook, disposes the registered models
// and stops the systems. Calling it again has no effect.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown || e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, fmt.Errorf("game shutdown: %w", err))
		}
	}
	for _, m := range e.models {
		if err := m.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	e.models = nil
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	e.clock.Stop()
	e.currentStage = EngineStageShutdown

	err := errors.Join(errs...)
	if err != nil {
		core.LogError("engine shutdown: %s", err)
	}
	core.LogInfo("engine shut down")
	return errors.Join(err, core.CloseLogging())
}
