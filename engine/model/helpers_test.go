package model

import (
	"fmt"

	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

type fakeTexture struct {
	name     string
	disposed int
}

func (t *fakeTexture) Dispose() error { t.disposed++; return nil }
func (t *fakeTexture) Name() string   { return t.name }
func (t *fakeTexture) Filter() (metadata.TextureFilter, metadata.TextureFilter) {
	return metadata.TextureFilterModeNearest, metadata.TextureFilterModeLinear
}
func (t *fakeTexture) Wrap() (metadata.TextureRepeat, metadata.TextureRepeat) {
	return metadata.TextureRepeatClampToEdge, metadata.TextureRepeatRepeat
}

// fakeProvider hands out one handle per file name, the way a caching
// texture manager would.
type fakeProvider struct {
	textures map[string]*fakeTexture
	loads    int
	fail     map[string]bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{textures: make(map[string]*fakeTexture), fail: make(map[string]bool)}
}

func (p *fakeProvider) Load(fileName string) (Texture, error) {
	p.loads++
	if p.fail[fileName] {
		return nil, fmt.Errorf("cannot open %s", fileName)
	}
	t, ok := p.textures[fileName]
	if !ok {
		t = &fakeTexture{name: fileName}
		p.textures[fileName] = t
	}
	return t, nil
}

func positionOnly() metadata.VertexAttributes {
	return metadata.VertexAttributes{metadata.NewPositionAttribute()}
}

// quadMesh is a unit quad in the XY plane split into two indexed parts.
func quadMesh() metadata.ModelMesh {
	return metadata.ModelMesh{
		ID:         "quad",
		Attributes: positionOnly(),
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		},
		Parts: []metadata.ModelMeshPart{
			{ID: "first", Indices: []uint32{0, 1, 2, 0, 2}, PrimitiveType: metadata.PrimitiveTypeTriangles},
			{ID: "second", Indices: []uint32{3, 0, 2, 3}, PrimitiveType: metadata.PrimitiveTypeTriangles},
		},
	}
}

func vec3(x, y, z float32) *math.Vec3 {
	v := math.NewVec3(x, y, z)
	return &v
}

func vec4(x, y, z, w float32) *math.Vec4 {
	v := math.NewVec4(x, y, z, w)
	return &v
}

func quat(q math.Quaternion) *math.Quaternion {
	return &q
}

func opacity(v float32) *float32 {
	return &v
}
