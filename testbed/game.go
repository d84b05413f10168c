package testbed

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"github.com/spaghettifunk/anima-g3d/engine"
	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/model"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

const (
	BaseTextureName = "testbed_checker.webp"
	WaveAnimationID = "wave"
	ElbowNodeID     = "lower"
	PlateNodeID     = "plate"
	// PlateSpinSpeed is the plate's turn rate about the up axis, in radians per second.
	PlateSpinSpeed float32 = 0.5
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	elapsed float32
	arm     *model.Model
	elbow   *model.Node
	wave    *model.Animation
	plate   *model.Node
	// accumulated plate turn in radians
	plateAngle float32
	// frames since the last bounding box report
	reportFrames int
}

func NewTestGame(cfg *core.Config) (*TestGame, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			Config: cfg,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)

	if err := writeCheckerTexture(filepath.Join(g.Config.Assets.TextureDir, BaseTextureName), 8); err != nil {
		return err
	}

	arm, err := model.NewModelFromData(ArmModelData(), e.SystemManager().TextureSystem())
	if err != nil {
		return err
	}
	if err := e.AddModel(arm); err != nil {
		arm.Dispose()
		return err
	}

	state.arm = arm
	state.elbow = arm.GetNode(ElbowNodeID)
	state.wave = arm.GetAnimation(WaveAnimationID)
	state.plate = arm.GetNode(PlateNodeID)
	if state.elbow == nil || state.wave == nil || state.plate == nil {
		return fmt.Errorf("testbed model is missing node %q, node %q or animation %q", ElbowNodeID, PlateNodeID, WaveAnimationID)
	}

	box := math.NewExtents3DInf()
	arm.CalculateBoundingBox(&box)
	core.LogInfo("testbed model ready, bounds %v - %v", box.Min, box.Max)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	if state.arm == nil {
		return nil
	}

	state.elapsed += float32(deltaTime)
	if state.wave.Duration > 0 {
		for state.elapsed > state.wave.Duration {
			state.elapsed -= state.wave.Duration
		}
	}

	for _, track := range state.wave.NodeAnimations {
		if len(track.Rotation) > 0 {
			track.Node.Rotation = SampleRotation(track.Rotation, state.elapsed)
		}
	}

	turn := PlateSpinSpeed * float32(deltaTime)
	state.plate.Rotate(math.NewQuatFromAxisAngle(math.NewVec3Up(), turn, true))
	state.plateAngle += turn

	state.reportFrames++
	if state.reportFrames >= 240 {
		state.reportFrames = 0
		box := math.NewExtents3DInf()
		state.arm.CalculateBoundingBox(&box)
		core.LogDebug("arm bounds %v - %v at %.2fs, plate turned %.1f degrees",
			box.Min, box.Max, state.elapsed, math.RadToDeg(state.plateAngle))
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame Shutdown fn....")
	state := g.State.(*gameState)
	state.arm, state.elbow, state.wave, state.plate = nil, nil, nil, nil
	return nil
}

// SampleRotation interpolates the rotation keyframes at time t. Keys are
// ordered by time; t outside the keys clamps to the first or last value.
func SampleRotation(keys []model.NodeKeyframe[math.Quaternion], t float32) math.Quaternion {
	if len(keys) == 0 {
		return math.NewQuatIdentity()
	}
	if t <= keys[0].KeyTime {
		return keys[0].Value
	}
	for i := 1; i < len(keys); i++ {
		if t > keys[i].KeyTime {
			continue
		}
		prev := keys[i-1]
		span := keys[i].KeyTime - prev.KeyTime
		if span <= 0 {
			return keys[i].Value
		}
		return prev.Value.Slerp(keys[i].Value, (t-prev.KeyTime)/span)
	}
	return keys[len(keys)-1].Value
}

// ArmModelData describes a two-bone arm skinned to the "upper" and "lower"
// nodes, standing on a textured base plate. The bones live under their
// own root, apart from the node that draws the arm.
func ArmModelData() *metadata.ModelData {
	skinColor := math.NewVec4(0.9, 0.7, 0.6, 1)
	opacity := float32(0.8)
	elbow := math.NewVec3(0, 1, 0)
	plateOffset := math.NewVec3(0, -0.1, 0)

	bent := math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.DegToRad(60), true)
	straight := math.NewQuatIdentity()

	return &metadata.ModelData{
		ID:      "testbed_arm",
		Version: [2]int16{0, 1},
		Meshes: []metadata.ModelMesh{
			{
				ID: "arm",
				Attributes: metadata.VertexAttributes{
					metadata.NewPositionAttribute(),
					metadata.NewTexCoordsAttribute(0),
					metadata.NewBoneWeightAttribute(0),
				},
				// x, y, z, u, v, bone, weight
				Vertices: []float32{
					-0.2, 0, 0, 0, 0, 0, 1,
					0.2, 0, 0, 1, 0, 0, 1,
					-0.2, 1, 0, 0, 0.5, 1, 1,
					0.2, 1, 0, 1, 0.5, 1, 1,
					-0.2, 2, 0, 0, 1, 1, 1,
					0.2, 2, 0, 1, 1, 1, 1,
				},
				Parts: []metadata.ModelMeshPart{
					{
						ID:            "arm_part",
						Indices:       []uint32{0, 1, 2, 2, 1, 3, 2, 3, 4, 4, 3, 5},
						PrimitiveType: metadata.PrimitiveTypeTriangles,
					},
				},
			},
			{
				ID: "plate",
				Attributes: metadata.VertexAttributes{
					metadata.NewPositionAttribute(),
					metadata.NewNormalAttribute(),
					metadata.NewTexCoordsAttribute(0),
				},
				Vertices: []float32{
					-1, 0, -1, 0, 1, 0, 0, 0,
					1, 0, -1, 0, 1, 0, 1, 0,
					-1, 0, 1, 0, 1, 0, 0, 1,
					1, 0, 1, 0, 1, 0, 1, 1,
				},
				Parts: []metadata.ModelMeshPart{
					{ID: "plate_part", PrimitiveType: metadata.PrimitiveTypeTriangleStrip},
				},
			},
		},
		Materials: []metadata.ModelMaterial{
			{ID: "skin", Diffuse: &skinColor, Shininess: 8},
			{
				ID:      "plate",
				Opacity: &opacity,
				Textures: []metadata.ModelTexture{
					{ID: "checker", FileName: BaseTextureName, Usage: metadata.TextureUsageDiffuse, UVScaling: &math.Vec2{X: 4, Y: 4}},
				},
			},
		},
		Nodes: []metadata.ModelNode{
			{
				ID: "armature",
				Children: []metadata.ModelNode{
					{
						ID: "upper",
						Children: []metadata.ModelNode{
							{ID: ElbowNodeID, Translation: &elbow},
						},
					},
				},
			},
			{
				ID: "arm",
				Parts: []metadata.ModelNodePart{
					{
						MeshPartID: "arm_part",
						MaterialID: "skin",
						Bones: []metadata.ModelBone{
							{NodeID: "upper", Transform: math.NewMat4Identity()},
							{NodeID: ElbowNodeID, Transform: math.NewMat4Translation(elbow)},
						},
					},
				},
			},
			{
				ID:          PlateNodeID,
				Translation: &plateOffset,
				Parts: []metadata.ModelNodePart{
					{MeshPartID: "plate_part", MaterialID: "plate"},
				},
			},
		},
		Animations: []metadata.ModelAnimation{
			{
				ID: WaveAnimationID,
				NodeAnimations: []metadata.ModelNodeAnimation{
					{
						NodeID: ElbowNodeID,
						Rotation: []metadata.ModelNodeKeyframe[math.Quaternion]{
							{KeyTime: 0, Value: &straight},
							{KeyTime: 1, Value: &bent},
							{KeyTime: 2, Value: &straight},
						},
					},
				},
			},
		},
	}
}

// writeCheckerTexture writes a size x size lossless webp checkerboard to p
// unless the file already exists.
func writeCheckerTexture(p string, size int) error {
	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	light := color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	dark := color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, light)
			} else {
				img.SetNRGBA(x, y, dark)
			}
		}
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
