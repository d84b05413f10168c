package model

import (
	"fmt"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

// Mesh holds interleaved vertex data and an optional index list. It is the
// CPU-side copy a renderer uploads, and several mesh parts usually share one.
type Mesh struct {
	ID         string
	Attributes metadata.VertexAttributes

	vertices []float32
	indices  []uint32
	disposed bool
}

// NewMesh reserves room for numVertices vertices and numIndices indices.
func NewMesh(attributes metadata.VertexAttributes, numVertices, numIndices int) *Mesh {
	return &Mesh{
		Attributes: attributes,
		vertices:   make([]float32, 0, numVertices*attributes.VertexSize()),
		indices:    make([]uint32, 0, numIndices),
	}
}

// SetVertices replaces the vertex data with a copy of vertices. The length
// must be a multiple of the vertex size.
func (m *Mesh) SetVertices(vertices []float32) error {
	size := m.Attributes.VertexSize()
	if size == 0 || len(vertices)%size != 0 {
		return fmt.Errorf("%d floats for vertex size %d: %w", len(vertices), size, core.ErrUnsupportedFormat)
	}
	m.vertices = append(m.vertices[:0], vertices...)
	return nil
}

// AddIndices appends indices after the current ones.
func (m *Mesh) AddIndices(indices ...uint32) {
	m.indices = append(m.indices, indices...)
}

func (m *Mesh) Vertices() []float32 { return m.vertices }

func (m *Mesh) Indices() []uint32 { return m.indices }

func (m *Mesh) NumVertices() int {
	size := m.Attributes.VertexSize()
	if size == 0 {
		return 0
	}
	return len(m.vertices) / size
}

func (m *Mesh) NumIndices() int {
	return len(m.indices)
}

// Position returns the position of vertex i, or false when the mesh has
// no position attribute or i is out of range.
func (m *Mesh) Position(i int) (math.Vec3, bool) {
	off := m.Attributes.Offset(metadata.VertexUsagePosition)
	if off < 0 || i < 0 || i >= m.NumVertices() {
		return math.Vec3{}, false
	}
	base := i*m.Attributes.VertexSize() + off
	return math.Vec3{X: m.vertices[base], Y: m.vertices[base+1], Z: m.vertices[base+2]}, true
}

// ExtendBoundingBox grows box by count vertices starting at offset. For an
// indexed mesh offset and count address the index list. Positions are
// transformed by transform when it is not nil. Out of range entries are
// ignored.
func (m *Mesh) ExtendBoundingBox(box *math.Extents3D, offset, count int, transform *math.Mat4) *math.Extents3D {
	indexed := len(m.indices) > 0
	for i := offset; i < offset+count; i++ {
		vi := i
		if indexed {
			if i >= len(m.indices) {
				break
			}
			if i < 0 {
				continue
			}
			vi = int(m.indices[i])
		}
		p, ok := m.Position(vi)
		if !ok {
			continue
		}
		if transform != nil {
			p = p.Transform(*transform)
		}
		box.Extend(p)
	}
	return box
}

// Dispose releases the buffers. Calling it again has no effect.
func (m *Mesh) Dispose() error {
	if m.disposed {
		return nil
	}
	m.disposed = true
	m.vertices = nil
	m.indices = nil
	return nil
}

func (m *Mesh) Disposed() bool {
	return m.disposed
}

// MeshPart is a contiguous range of a Mesh drawn with one primitive type.
type MeshPart struct {
	ID            string
	PrimitiveType metadata.PrimitiveType
	// Offset and Size address the index list of an indexed mesh, the vertex
	// list otherwise.
	Offset int
	Size   int
	Mesh   *Mesh
	// Center, HalfExtents and Radius bound the part in mesh space. See Update.
	Center      math.Vec3
	HalfExtents math.Vec3
	Radius      float32
}

// Update recomputes the bounds from the mesh data.
func (mp *MeshPart) Update() {
	box := math.NewExtents3DInf()
	mp.Mesh.ExtendBoundingBox(&box, mp.Offset, mp.Size, nil)
	if !box.IsValid() {
		mp.Center, mp.HalfExtents, mp.Radius = math.Vec3{}, math.Vec3{}, 0
		return
	}
	mp.Center = box.Center()
	mp.HalfExtents = box.Dimensions().MulScalar(0.5)
	mp.Radius = mp.HalfExtents.Length()
}

// Equals reports whether both parts draw the same range of the same mesh.
func (mp *MeshPart) Equals(other *MeshPart) bool {
	if other == nil {
		return false
	}
	return other == mp ||
		(other.Mesh == mp.Mesh &&
			other.PrimitiveType == mp.PrimitiveType &&
			other.Offset == mp.Offset &&
			other.Size == mp.Size)
}
