package testbed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-g3d/engine"
	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/model"
)

func TestSampleRotation(t *testing.T) {
	a := math.NewQuatIdentity()
	b := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), math.DegToRad(90), true)
	keys := []model.NodeKeyframe[math.Quaternion]{
		{KeyTime: 1, Value: a},
		{KeyTime: 3, Value: b},
	}
	half := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), math.DegToRad(45), true)

	for _, c := range []struct {
		t    float32
		want math.Quaternion
	}{
		{0, a},
		{1, a},
		{2, half},
		{3, b},
		{10, b},
	} {
		if have := SampleRotation(keys, c.t); !have.Compare(c.want, 1e-4) {
			t.Fatalf("SampleRotation(%v):\nhave %v\nwant %v", c.t, have, c.want)
		}
	}
	if have := SampleRotation(nil, 1); have != math.NewQuatIdentity() {
		t.Fatalf("SampleRotation(no keys):\nhave %v\nwant identity", have)
	}
}

func TestTestGame(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Assets.TextureDir = t.TempDir()
	cfg.Assets.Watch = false
	cfg.Engine.TargetFPS = 0

	tg, err := NewTestGame(cfg)
	if err != nil {
		t.Fatal(err)
	}
	e, err := engine.New(tg.Game)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Assets.TextureDir, BaseTextureName)); err != nil {
		t.Fatalf("base texture:\nhave %v\nwant file written", err)
	}
	ts := e.SystemManager().TextureSystem()
	if have := ts.ReferenceCount(BaseTextureName); have != 1 {
		t.Fatalf("texture references:\nhave %d\nwant 1", have)
	}

	if err := e.Frame(1); err != nil {
		t.Fatal(err)
	}

	arm := e.Models()[0]
	elbow := arm.GetNode(ElbowNodeID)
	bent := math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.DegToRad(60), true)
	if !elbow.Rotation.Compare(bent, 1e-4) {
		t.Fatalf("elbow rotation at 1s:\nhave %v\nwant %v", elbow.Rotation, bent)
	}

	plate := arm.GetNode(PlateNodeID)
	spun := math.NewQuatFromAxisAngle(math.NewVec3Up(), PlateSpinSpeed, true)
	if !plate.Rotation.Compare(spun, 1e-4) {
		t.Fatalf("plate rotation at 1s:\nhave %v\nwant %v", plate.Rotation, spun)
	}

	part := arm.GetNode("arm").Parts[0]
	if len(part.Bones) != 2 {
		t.Fatalf("bones:\nhave %d\nwant 2", len(part.Bones))
	}
	invBind := math.NewMat4Translation(math.NewVec3(0, -1, 0))
	want := invBind.Mul(elbow.GlobalTransform)
	if !part.Bones[1].Compare(want, 1e-5) {
		t.Fatalf("elbow bone:\nhave %v\nwant %v", part.Bones[1], want)
	}
	// the elbow joint itself stays in place
	joint := math.NewVec3(0, 1, 0).Transform(part.Bones[1])
	if !joint.Compare(math.NewVec3(0, 1, 0), 1e-4) {
		t.Fatalf("skinned elbow:\nhave %v\nwant (0, 1, 0)", joint)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if ts.Count() != 0 {
		t.Fatalf("textures after shutdown:\nhave %d\nwant 0", ts.Count())
	}
}
