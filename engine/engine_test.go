package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/model"
)

type countingDisposable struct{ n int }

func (d *countingDisposable) Dispose() error {
	d.n++
	return nil
}

func testConfig(t *testing.T) *core.Config {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Assets.TextureDir = t.TempDir()
	cfg.Assets.Watch = false
	cfg.Engine.TargetFPS = 0
	return cfg
}

// twoNodeModel returns a model with a root and one child offset on x.
func twoNodeModel(t *testing.T) (*model.Model, *model.Node, *model.Node) {
	t.Helper()
	root := model.NewNodeWithID("root")
	child := model.NewNodeWithID("child")
	child.Translation = math.Vec3{X: 1}
	if _, err := root.AddChild(child); err != nil {
		t.Fatal(err)
	}
	m := model.NewModel()
	m.Nodes = append(m.Nodes, root)
	return m, root, child
}

func TestNew(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("New(nil):\nhave %v\nwant %v", err, core.ErrInvalidConfig)
	}
	cfg := core.DefaultConfig()
	cfg.Textures.MinFilter = "blurry"
	if _, err := New(&Game{Config: cfg}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("New(bad config):\nhave %v\nwant %v", err, core.ErrInvalidConfig)
	}
	e, err := New(&Game{})
	if err != nil {
		t.Fatal(err)
	}
	if e.Stage() != EngineStageUninitialized {
		t.Fatalf("Stage:\nhave %d\nwant %d", e.Stage(), EngineStageUninitialized)
	}
	if err := e.AddModel(nil); err == nil {
		t.Fatal("AddModel(nil):\nhave nil\nwant error")
	}
	if err := e.Run(context.Background()); err == nil {
		t.Fatal("Run before Initialize:\nhave nil\nwant error")
	}
}

func TestNewLogsConfigErrorVerbatim(t *testing.T) {
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })

	cfg := core.DefaultConfig()
	cfg.Textures.MinFilter = "50%d"
	if _, err := New(&Game{Config: cfg}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("New(bad config):\nhave %v\nwant %v", err, core.ErrInvalidConfig)
	}
	if out := buf.String(); !strings.Contains(out, "50%d") || strings.Contains(out, "%!") {
		t.Fatalf("logged config error:\nhave %q\nwant the raw value 50%%d", out)
	}
}

func TestFrame(t *testing.T) {
	m, root, child := twoNodeModel(t)
	g := &Game{Config: testConfig(t)}
	g.FnUpdate = func(deltaTime float64) error {
		root.Translation.Y += float32(deltaTime)
		return nil
	}
	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.AddModel(m); err != nil {
		t.Fatal(err)
	}
	e.AddModel(m)
	if have := len(e.Models()); have != 1 {
		t.Fatalf("models after adding twice:\nhave %d\nwant 1", have)
	}

	if err := e.Frame(0.5); err != nil {
		t.Fatal(err)
	}
	want := math.Vec3{X: 1, Y: 0.5}
	if have := child.GlobalTransform.Translation(); !have.Compare(want, 1e-6) {
		t.Fatalf("child world translation:\nhave %v\nwant %v", have, want)
	}
	if have := e.Metrics().TotalFrames(); have != 1 {
		t.Fatalf("TotalFrames:\nhave %d\nwant 1", have)
	}

	boom := errors.New("boom")
	g.FnUpdate = func(float64) error { return boom }
	if err := e.Frame(0.5); !errors.Is(err, boom) {
		t.Fatalf("Frame with failing update:\nhave %v\nwant %v", err, boom)
	}
}

func TestRunMaxFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.MaxFrames = 5

	m, _, _ := twoNodeModel(t)
	res := &countingDisposable{}
	m.ManageDisposable(res)

	updates, shutdowns := 0, 0
	g := &Game{
		Config: cfg,
		FnInitialize: func(e *Engine) error {
			if e.SystemManager() == nil {
				return errors.New("systems not started")
			}
			return e.AddModel(m)
		},
		FnUpdate: func(float64) error {
			updates++
			return nil
		},
		FnShutdown: func() error {
			shutdowns++
			return nil
		},
	}
	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err == nil {
		t.Fatal("second Initialize:\nhave nil\nwant error")
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if updates != 5 {
		t.Fatalf("updates:\nhave %d\nwant 5", updates)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if res.n != 1 || shutdowns != 1 {
		t.Fatalf("after two Shutdown calls:\nhave %d disposals, %d game shutdowns\nwant 1, 1", res.n, shutdowns)
	}
	if e.Stage() != EngineStageShutdown {
		t.Fatalf("Stage:\nhave %d\nwant %d", e.Stage(), EngineStageShutdown)
	}
}

func TestRunCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.TargetFPS = 1000

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := 0
	g := &Game{
		Config: cfg,
		FnUpdate: func(float64) error {
			updates++
			if updates == 3 {
				cancel()
			}
			return nil
		},
	}
	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if updates != 3 {
		t.Fatalf("updates:\nhave %d\nwant 3", updates)
	}
	if e.Stage() != EngineStageInitialized {
		t.Fatalf("Stage after Run:\nhave %d\nwant %d", e.Stage(), EngineStageInitialized)
	}
}
