package model

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

func TestLoadMeshOffsets(t *testing.T) {
	data := &metadata.ModelData{
		ID:     "quad",
		Meshes: []metadata.ModelMesh{quadMesh()},
	}
	m, err := NewModelFromData(data, nil)
	if err != nil {
		t.Fatalf("NewModelFromData:\nhave %v\nwant nil", err)
	}
	if len(m.Meshes) != 1 || len(m.MeshParts) != 2 {
		t.Fatalf("counts:\nhave %d meshes, %d parts\nwant 1, 2", len(m.Meshes), len(m.MeshParts))
	}
	first, second := m.MeshParts[0], m.MeshParts[1]
	if first.Offset != 0 || first.Size != 5 {
		t.Fatalf("first part:\nhave offset %d size %d\nwant 0, 5", first.Offset, first.Size)
	}
	if second.Offset != 5 || second.Size != 4 {
		t.Fatalf("second part:\nhave offset %d size %d\nwant 5, 4", second.Offset, second.Size)
	}
	if first.Mesh != m.Meshes[0] || second.Mesh != m.Meshes[0] {
		t.Fatal("mesh parts: want a shared mesh")
	}
	if have := m.Meshes[0].NumIndices(); have != 9 {
		t.Fatalf("NumIndices:\nhave %d\nwant 9", have)
	}
	if have := m.Meshes[0].NumVertices(); have != 4 {
		t.Fatalf("NumVertices:\nhave %d\nwant 4", have)
	}
	if first.HalfExtents != math.NewVec3(0.5, 0.5, 0) {
		t.Fatalf("first part HalfExtents:\nhave %v\nwant (0.5, 0.5, 0)", first.HalfExtents)
	}
}

func TestLoadNonIndexedMesh(t *testing.T) {
	mesh := quadMesh()
	for i := range mesh.Parts {
		mesh.Parts[i].Indices = nil
	}
	m, err := NewModelFromData(&metadata.ModelData{Meshes: []metadata.ModelMesh{mesh}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []struct{ offset, size int }{{0, 4}, {4, 4}} {
		mp := m.MeshParts[i]
		if mp.Offset != want.offset || mp.Size != want.size {
			t.Fatalf("part %d:\nhave offset %d size %d\nwant %d, %d", i, mp.Offset, mp.Size, want.offset, want.size)
		}
	}
}

func TestLoadMaterial(t *testing.T) {
	data := &metadata.ModelData{
		Materials: []metadata.ModelMaterial{{
			ID:        "painted",
			Diffuse:   vec4(1, 0.5, 0.25, 1),
			Specular:  vec4(1, 1, 1, 1),
			Shininess: 16,
			Opacity:   opacity(0.5),
			Textures: []metadata.ModelTexture{
				{FileName: "paint.png", Usage: metadata.TextureUsageDiffuse, UVScaling: &math.Vec2{X: 2, Y: 3}},
				{FileName: "paint.png", Usage: metadata.TextureUsageNormal, UVTranslation: &math.Vec2{X: 0.5, Y: 0.25}},
				{FileName: "gloss.png", Usage: metadata.TextureUsageTransparency},
			},
		}, {
			ID:        "plain",
			Opacity:   opacity(1),
			Shininess: -1,
		}},
	}
	provider := newFakeProvider()
	m, err := NewModelFromData(data, provider)
	if err != nil {
		t.Fatal(err)
	}
	if provider.loads != 2 {
		t.Fatalf("provider loads:\nhave %d\nwant 2", provider.loads)
	}

	painted := m.GetMaterial("PAINTED")
	if painted == nil {
		t.Fatal("GetMaterial(PAINTED):\nhave nil\nwant painted")
	}
	want := []AttributeKind{
		AttributeDiffuseColor, AttributeSpecularColor, AttributeShininess,
		AttributeBlending, AttributeDiffuseTexture, AttributeNormalTexture,
	}
	kinds := painted.Kinds()
	if len(kinds) != len(want) {
		t.Fatalf("Kinds:\nhave %v\nwant %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("Kinds:\nhave %v\nwant %v", kinds, want)
		}
	}

	a, _ := painted.Get(AttributeBlending)
	if b := a.(*BlendingAttribute); b.Opacity != 0.5 || b.SourceFunction != BlendSrcAlpha || b.DestFunction != BlendOneMinusSrcAlpha {
		t.Fatalf("blending:\nhave %+v\nwant opacity 0.5, src alpha", b)
	}
	a, _ = painted.Get(AttributeDiffuseTexture)
	diffuse := a.(*TextureAttribute)
	if diffuse.OffsetU != 0 || diffuse.OffsetV != 0 || diffuse.ScaleU != 2 || diffuse.ScaleV != 3 {
		t.Fatalf("diffuse uv:\nhave %+v\nwant offset (0, 0) scale (2, 3)", diffuse)
	}
	a, _ = painted.Get(AttributeNormalTexture)
	normal := a.(*TextureAttribute)
	if normal.OffsetU != 0.5 || normal.OffsetV != 0.25 || normal.ScaleU != 1 || normal.ScaleV != 1 {
		t.Fatalf("normal uv:\nhave %+v\nwant offset (0.5, 0.25) scale (1, 1)", normal)
	}
	if diffuse.Descriptor.Texture != normal.Descriptor.Texture {
		t.Fatal("same file in one material: want one texture handle")
	}
	if diffuse.Descriptor.MinFilter != metadata.TextureFilterModeNearest {
		t.Fatalf("descriptor MinFilter:\nhave %v\nwant nearest", diffuse.Descriptor.MinFilter)
	}

	plain := m.FindMaterial("plain", false)
	if plain == nil || plain.Len() != 0 {
		t.Fatalf("plain material: want no attributes, have %v", plain)
	}
	if m.FindMaterial("PLAIN", false) != nil {
		t.Fatal("FindMaterial(PLAIN, case sensitive):\nhave material\nwant nil")
	}

	// Unused textures are still owned by the model.
	if have := len(m.ManagedDisposables()); have != 2 {
		t.Fatalf("ManagedDisposables:\nhave %d\nwant 2", have)
	}
}

func TestDisposeSharedTextureOnce(t *testing.T) {
	data := &metadata.ModelData{
		Materials: []metadata.ModelMaterial{
			{ID: "a", Textures: []metadata.ModelTexture{{FileName: "shared.png", Usage: metadata.TextureUsageDiffuse}}},
			{ID: "b", Textures: []metadata.ModelTexture{{FileName: "shared.png", Usage: metadata.TextureUsageSpecular}}},
		},
	}
	provider := newFakeProvider()
	m, err := NewModelFromData(data, provider)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Dispose(); err != nil {
		t.Fatal(err)
	}
	if err := m.Dispose(); err != nil {
		t.Fatal(err)
	}
	if have := provider.textures["shared.png"].disposed; have != 1 {
		t.Fatalf("shared texture disposals:\nhave %d\nwant 1", have)
	}
}

func TestLoadMissingMeshPart(t *testing.T) {
	data := &metadata.ModelData{
		Meshes: []metadata.ModelMesh{quadMesh()},
		Materials: []metadata.ModelMaterial{
			{ID: "mat", Textures: []metadata.ModelTexture{{FileName: "a.png", Usage: metadata.TextureUsageDiffuse}}},
		},
		Nodes: []metadata.ModelNode{{
			ID:    "root",
			Parts: []metadata.ModelNodePart{{MeshPartID: "first", MaterialID: "mat"}},
			Children: []metadata.ModelNode{{
				ID:    "broken",
				Parts: []metadata.ModelNodePart{{MeshPartID: "nope", MaterialID: "mat"}},
			}},
		}},
	}
	provider := newFakeProvider()
	m, err := NewModelFromData(data, provider)
	if m != nil {
		t.Fatal("NewModelFromData: want no model on failure")
	}
	if !errors.Is(err, core.ErrInvalidNode) || !errors.Is(err, core.ErrMeshPartNotFound) {
		t.Fatalf("NewModelFromData:\nhave %v\nwant %v and %v", err, core.ErrInvalidNode, core.ErrMeshPartNotFound)
	}
	if have := provider.textures["a.png"].disposed; have != 1 {
		t.Fatalf("texture disposals after failed load:\nhave %d\nwant 1", have)
	}
}

func TestLoadMissingMaterial(t *testing.T) {
	data := &metadata.ModelData{
		Meshes: []metadata.ModelMesh{quadMesh()},
		Nodes: []metadata.ModelNode{{
			ID:    "root",
			Parts: []metadata.ModelNodePart{{MeshPartID: "first", MaterialID: "ghost"}},
		}},
	}
	_, err := NewModelFromData(data, nil)
	if !errors.Is(err, core.ErrInvalidNode) || !errors.Is(err, core.ErrMaterialNotFound) {
		t.Fatalf("NewModelFromData:\nhave %v\nwant %v and %v", err, core.ErrInvalidNode, core.ErrMaterialNotFound)
	}
}

func TestLoadTextureError(t *testing.T) {
	data := &metadata.ModelData{
		Meshes: []metadata.ModelMesh{quadMesh()},
		Materials: []metadata.ModelMaterial{
			{ID: "ok", Textures: []metadata.ModelTexture{{FileName: "ok.png", Usage: metadata.TextureUsageDiffuse}}},
			{ID: "bad", Textures: []metadata.ModelTexture{{FileName: "bad.png", Usage: metadata.TextureUsageDiffuse}}},
		},
	}
	provider := newFakeProvider()
	provider.fail["bad.png"] = true
	if _, err := NewModelFromData(data, provider); err == nil {
		t.Fatal("NewModelFromData with failing provider:\nhave nil\nwant error")
	}
	if have := provider.textures["ok.png"].disposed; have != 1 {
		t.Fatalf("ok.png disposals:\nhave %d\nwant 1", have)
	}
	if _, err := NewModelFromData(nil, provider); !errors.Is(err, core.ErrAssetNotFound) {
		t.Fatalf("NewModelFromData(nil):\nhave %v\nwant %v", err, core.ErrAssetNotFound)
	}
}

func skinnedData() *metadata.ModelData {
	bindUpper := math.NewMat4Translation(math.NewVec3(0, 1, 0))
	bindLower := math.NewMat4Translation(math.NewVec3(0, 2, 0))
	return &metadata.ModelData{
		ID:        "arm",
		Meshes:    []metadata.ModelMesh{quadMesh()},
		Materials: []metadata.ModelMaterial{{ID: "skin"}},
		Nodes: []metadata.ModelNode{
			{
				ID: "mesh",
				Parts: []metadata.ModelNodePart{{
					MeshPartID: "first",
					MaterialID: "skin",
					Bones: []metadata.ModelBone{
						{NodeID: "upper", Transform: bindUpper},
						{NodeID: "missing", Transform: math.NewMat4Identity()},
						{NodeID: "lower", Transform: bindLower},
					},
				}},
			},
			{
				ID:          "armature",
				Translation: vec3(0, 1, 0),
				Children: []metadata.ModelNode{{
					ID:       "upper",
					Rotation: quat(math.NewQuatIdentity()),
					Scale:    vec3(1, 1, 1),
					Children: []metadata.ModelNode{{ID: "lower", Translation: vec3(0, 1, 0)}},
				}},
			},
		},
	}
}

func TestLoadBones(t *testing.T) {
	m, err := NewModelFromData(skinnedData(), nil)
	if err != nil {
		t.Fatal(err)
	}
	part := m.GetNode("mesh").Parts[0]
	if len(part.InvBoneBindTransforms) != 2 || len(part.Bones) != 2 {
		t.Fatalf("bindings:\nhave %d bindings, %d bones\nwant 2, 2", len(part.InvBoneBindTransforms), len(part.Bones))
	}
	if part.InvBoneBindTransforms[0].Node != m.GetNode("upper") || part.InvBoneBindTransforms[1].Node != m.GetNode("lower") {
		t.Fatal("bindings: want upper then lower")
	}

	checkBones := func(when string) {
		t.Helper()
		for i, b := range part.InvBoneBindTransforms {
			want := b.InvBindTransform.Mul(b.Node.GlobalTransform)
			if !part.Bones[i].Compare(want, tolerance) {
				t.Fatalf("%s: Bones[%d]:\nhave %v\nwant %v", when, i, part.Bones[i], want)
			}
		}
	}
	checkBones("after load")
	// Rest pose matches the bind pose.
	for i := range part.Bones {
		if !part.Bones[i].Compare(math.NewMat4Identity(), tolerance) {
			t.Fatalf("Bones[%d] at rest:\nhave %v\nwant identity", i, part.Bones[i])
		}
	}

	upper := m.GetNode("upper")
	upper.Rotation = math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.DegToRad(45), true)
	m.CalculateTransforms()
	checkBones("after rotating upper")
	if part.Bones[1].Compare(math.NewMat4Identity(), tolerance) {
		t.Fatal("lower bone did not follow its parent")
	}
}

func TestLoadAnimations(t *testing.T) {
	data := skinnedData()
	half := math.NewVec3(0, 0.5, 0)
	data.Animations = []metadata.ModelAnimation{
		{
			ID: "Wave",
			NodeAnimations: []metadata.ModelNodeAnimation{
				{
					NodeID: "lower",
					Translation: []metadata.ModelNodeKeyframe[math.Vec3]{
						{KeyTime: 0},
						{KeyTime: 0.5, Value: &half},
					},
					Rotation: []metadata.ModelNodeKeyframe[math.Quaternion]{{KeyTime: 1.5}},
				},
				{
					NodeID:      "ghost",
					Translation: []metadata.ModelNodeKeyframe[math.Vec3]{{KeyTime: 9}},
				},
				{NodeID: "upper"},
			},
		},
		{
			ID:             "empty",
			NodeAnimations: []metadata.ModelNodeAnimation{{NodeID: "ghost", Scaling: []metadata.ModelNodeKeyframe[math.Vec3]{{KeyTime: 1}}}},
		},
	}
	m, err := NewModelFromData(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Animations) != 1 {
		t.Fatalf("animations:\nhave %d\nwant 1", len(m.Animations))
	}
	anim := m.GetAnimation("wave")
	if anim == nil {
		t.Fatal("GetAnimation(wave):\nhave nil\nwant Wave")
	}
	if m.FindAnimation("wave", false) != nil {
		t.Fatal("FindAnimation(wave, case sensitive):\nhave Wave\nwant nil")
	}
	if anim.Duration != 1.5 {
		t.Fatalf("Duration:\nhave %v\nwant 1.5", anim.Duration)
	}
	if len(anim.NodeAnimations) != 1 {
		t.Fatalf("node animations:\nhave %d\nwant 1", len(anim.NodeAnimations))
	}
	na := anim.NodeAnimations[0]
	lower := m.GetNode("lower")
	if na.Node != lower {
		t.Fatal("track node: want lower")
	}
	if len(na.Translation) != 2 || len(na.Rotation) != 1 || len(na.Scaling) != 0 {
		t.Fatalf("channels:\nhave %d/%d/%d\nwant 2/1/0", len(na.Translation), len(na.Rotation), len(na.Scaling))
	}
	if na.Translation[0].Value != lower.Translation {
		t.Fatalf("default translation:\nhave %v\nwant %v", na.Translation[0].Value, lower.Translation)
	}
	if na.Translation[1].Value != half {
		t.Fatalf("translation key:\nhave %v\nwant %v", na.Translation[1].Value, half)
	}
	if na.Rotation[0].Value != lower.Rotation {
		t.Fatalf("default rotation:\nhave %v\nwant %v", na.Rotation[0].Value, lower.Rotation)
	}
}

func TestModelQueries(t *testing.T) {
	m, err := NewModelFromData(skinnedData(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.GetNode("lower") == nil {
		t.Fatal("GetNode(lower):\nhave nil\nwant node")
	}
	if m.GetNode("LOWER") != nil {
		t.Fatal("GetNode(LOWER):\nhave node\nwant nil")
	}
	if m.FindNode("LOWER", true, true) == nil {
		t.Fatal("FindNode(LOWER, ignore case):\nhave nil\nwant node")
	}
	if m.FindNode("lower", false, false) != nil {
		t.Fatal("FindNode(lower, not recursive):\nhave node\nwant nil")
	}

	var box math.Extents3D
	m.CalculateBoundingBox(&box)
	if !box.IsValid() {
		t.Fatal("CalculateBoundingBox: want a valid box")
	}
	if want := (math.Extents3D{Min: math.NewVec3(0, 0, 0), Max: math.NewVec3(1, 1, 0)}); box != want {
		t.Fatalf("CalculateBoundingBox:\nhave %v\nwant %v", box, want)
	}
}

func TestManageDisposable(t *testing.T) {
	m := NewModel()
	tex := &fakeTexture{}
	m.ManageDisposable(tex)
	m.ManageDisposable(tex)
	m.ManageDisposable(nil)
	if have := len(m.ManagedDisposables()); have != 1 {
		t.Fatalf("ManagedDisposables:\nhave %d\nwant 1", have)
	}
	if err := m.Dispose(); err != nil {
		t.Fatal(err)
	}
	if tex.disposed != 1 {
		t.Fatalf("disposals:\nhave %d\nwant 1", tex.disposed)
	}
}
