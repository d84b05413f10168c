package model

import (
	"github.com/spaghettifunk/anima-g3d/engine/math"
)

// BoneBinding pairs a bone node with the inverse of its bind-pose transform.
type BoneBinding struct {
	Node             *Node
	InvBindTransform math.Mat4
}

// NodePart is a renderable piece of a node: a mesh part drawn with a
// material, optionally skinned.
type NodePart struct {
	MeshPart *MeshPart
	Material *Material
	Enabled  bool
	// InvBoneBindTransforms and Bones are indexed in parallel.
	InvBoneBindTransforms []BoneBinding
	// Bones holds InvBindTransform.Mul(bone.GlobalTransform) for each binding.
	Bones []math.Mat4
}

func NewNodePart(meshPart *MeshPart, material *Material) *NodePart {
	return &NodePart{
		MeshPart: meshPart,
		Material: material,
		Enabled:  true,
	}
}

// Bind replaces the bone bindings and allocates matching skinning matrices.
func (np *NodePart) Bind(bindings []BoneBinding) {
	np.InvBoneBindTransforms = bindings
	np.Bones = make([]math.Mat4, len(bindings))
	for i := range np.Bones {
		np.Bones[i] = math.NewMat4Identity()
	}
}

// IsSkinned reports whether the part carries bone bindings.
func (np *NodePart) IsSkinned() bool {
	return len(np.InvBoneBindTransforms) > 0
}

func (np *NodePart) calculateBones() {
	if np.InvBoneBindTransforms == nil || np.Bones == nil || len(np.InvBoneBindTransforms) != len(np.Bones) {
		return
	}
	for i, b := range np.InvBoneBindTransforms {
		if b.Node == nil {
			continue
		}
		np.Bones[i] = b.InvBindTransform.Mul(b.Node.GlobalTransform)
	}
}

// Copy shares the mesh part, the material and the bone nodes with np. The
// skinning matrices are copied into a fresh slice.
func (np *NodePart) Copy() *NodePart {
	c := &NodePart{
		MeshPart: np.MeshPart,
		Material: np.Material,
		Enabled:  np.Enabled,
	}
	if np.InvBoneBindTransforms != nil {
		c.InvBoneBindTransforms = make([]BoneBinding, len(np.InvBoneBindTransforms))
		copy(c.InvBoneBindTransforms, np.InvBoneBindTransforms)
	}
	if np.Bones != nil {
		c.Bones = make([]math.Mat4, len(np.Bones))
		copy(c.Bones, np.Bones)
	}
	return c
}
