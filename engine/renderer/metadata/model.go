package metadata

import (
	"github.com/spaghettifunk/anima-g3d/engine/math"
)

/** @brief How the indices (or vertices) of a mesh part are assembled. */
type PrimitiveType int

const (
	PrimitiveTypePoints PrimitiveType = iota
	PrimitiveTypeLines
	PrimitiveTypeLineStrip
	PrimitiveTypeTriangles
	PrimitiveTypeTriangleStrip
)

/**
 * @brief The flat, parsed description of a model. Everything is referenced
 * by string id: node parts point at mesh parts and materials, bones and
 * animation tracks point at nodes.
 */
type ModelData struct {
	ID         string
	Version    [2]int16
	Meshes     []ModelMesh
	Materials  []ModelMaterial
	Nodes      []ModelNode
	Animations []ModelAnimation
}

/** @brief An interleaved vertex buffer split into parts. */
type ModelMesh struct {
	ID         string
	Attributes VertexAttributes
	/** @brief Interleaved vertex data, Attributes.VertexSize() floats per vertex. */
	Vertices []float32
	Parts    []ModelMeshPart
}

type ModelMeshPart struct {
	ID string
	/** @brief Empty for non-indexed parts. */
	Indices       []uint32
	PrimitiveType PrimitiveType
}

/** @brief Material description. Nil fields are not set on the material. */
type ModelMaterial struct {
	ID         string
	Ambient    *math.Vec4
	Diffuse    *math.Vec4
	Specular   *math.Vec4
	Emissive   *math.Vec4
	Reflection *math.Vec4
	/** @brief Only positive values are used. */
	Shininess float32
	/** @brief Nil means fully opaque. */
	Opacity  *float32
	Textures []ModelTexture
}

type ModelTexture struct {
	ID       string
	FileName string
	/** @brief UV offset, (0, 0) when nil. */
	UVTranslation *math.Vec2
	/** @brief UV scale, (1, 1) when nil. */
	UVScaling *math.Vec2
	Usage     TextureUsage
}

/** @brief A node description. Nil transform components keep the identity value. */
type ModelNode struct {
	ID          string
	Translation *math.Vec3
	Rotation    *math.Quaternion
	Scale       *math.Vec3
	Parts       []ModelNodePart
	Children    []ModelNode
}

type ModelNodePart struct {
	MeshPartID string
	MaterialID string
	/** @brief Bone bindings in skinning order. */
	Bones []ModelBone
}

/** @brief Binds a node id to its bind-pose transform (not yet inverted). */
type ModelBone struct {
	NodeID    string
	Transform math.Mat4
}

type ModelAnimation struct {
	ID             string
	NodeAnimations []ModelNodeAnimation
}

type ModelNodeAnimation struct {
	NodeID      string
	Translation []ModelNodeKeyframe[math.Vec3]
	Rotation    []ModelNodeKeyframe[math.Quaternion]
	Scaling     []ModelNodeKeyframe[math.Vec3]
}

/** @brief A keyframe whose nil Value means "the node's own value". */
type ModelNodeKeyframe[T any] struct {
	KeyTime float32
	Value   *T
}
