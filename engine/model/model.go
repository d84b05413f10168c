package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

// Model is the live form of a model description: meshes, materials, a
// forest of nodes and animations over those nodes. The model owns every
// registered disposable and releases them in Dispose.
type Model struct {
	ID         uuid.UUID
	Meshes     []*Mesh
	MeshParts  []*MeshPart
	Materials  []*Material
	Nodes      []*Node
	Animations []*Animation

	disposables []Disposable
	disposed    bool
	// Bone declarations waiting for the whole node forest to exist.
	nodePartBones map[*NodePart][]metadata.ModelBone
}

// NewModel returns an empty model to be built by hand.
func NewModel() *Model {
	return &Model{ID: core.NewIdentifier()}
}

// NewModelFromData builds a model from data, loading textures through
// provider. On error nothing acquired during the load is left alive.
func NewModelFromData(data *metadata.ModelData, provider TextureProvider) (*Model, error) {
	if data == nil {
		return nil, fmt.Errorf("model data: %w", core.ErrAssetNotFound)
	}
	m := NewModel()
	if err := m.load(data, provider); err != nil {
		core.LogError("model %s (%s) failed to load: %s", data.ID, core.ShortIdentifier(m.ID), err)
		if derr := m.Dispose(); derr != nil {
			core.LogWarn("model %s: releasing partial load: %s", data.ID, derr)
		}
		return nil, err
	}
	core.LogDebug("model %s (%s) loaded: %d meshes, %d materials, %d root nodes, %d animations",
		data.ID, core.ShortIdentifier(m.ID), len(m.Meshes), len(m.Materials), len(m.Nodes), len(m.Animations))
	return m, nil
}

func (m *Model) load(data *metadata.ModelData, provider TextureProvider) error {
	if err := m.loadMeshes(data.Meshes); err != nil {
		return err
	}
	if err := m.loadMaterials(data.Materials, provider); err != nil {
		return err
	}
	if err := m.loadNodes(data.Nodes); err != nil {
		return err
	}
	m.loadAnimations(data.Animations)
	m.CalculateTransforms()
	return nil
}

func (m *Model) loadMeshes(meshes []metadata.ModelMesh) error {
	for i := range meshes {
		if err := m.convertMesh(&meshes[i]); err != nil {
			return err
		}
	}
	return nil
}

// convertMesh copies the vertices once into a new mesh and lays out its
// parts back to back. Indexed parts address the index list; non-indexed
// parts span all vertices.
func (m *Model) convertMesh(modelMesh *metadata.ModelMesh) error {
	numIndices := 0
	for _, part := range modelMesh.Parts {
		numIndices += len(part.Indices)
	}
	hasIndices := numIndices > 0

	vertexSize := modelMesh.Attributes.VertexSize()
	if vertexSize == 0 {
		return fmt.Errorf("mesh %q has no vertex attributes: %w", modelMesh.ID, core.ErrUnsupportedFormat)
	}
	numVertices := len(modelMesh.Vertices) / vertexSize

	mesh := NewMesh(modelMesh.Attributes, numVertices, numIndices)
	mesh.ID = modelMesh.ID
	m.Meshes = append(m.Meshes, mesh)
	m.ManageDisposable(mesh)

	if err := mesh.SetVertices(modelMesh.Vertices); err != nil {
		return fmt.Errorf("mesh %q: %w", modelMesh.ID, err)
	}

	parts := make([]*MeshPart, 0, len(modelMesh.Parts))
	offset := 0
	for _, part := range modelMesh.Parts {
		mp := &MeshPart{
			ID:            part.ID,
			PrimitiveType: part.PrimitiveType,
			Offset:        offset,
			Mesh:          mesh,
		}
		if hasIndices {
			mp.Size = len(part.Indices)
			mesh.AddIndices(part.Indices...)
		} else {
			mp.Size = numVertices
		}
		offset += mp.Size
		parts = append(parts, mp)
	}
	for _, mp := range parts {
		mp.Update()
	}
	m.MeshParts = append(m.MeshParts, parts...)
	return nil
}

func (m *Model) loadMaterials(materials []metadata.ModelMaterial, provider TextureProvider) error {
	for i := range materials {
		mat, err := m.convertMaterial(&materials[i], provider)
		if err != nil {
			return err
		}
		m.Materials = append(m.Materials, mat)
	}
	return nil
}

func (m *Model) convertMaterial(mtl *metadata.ModelMaterial, provider TextureProvider) (*Material, error) {
	result := NewMaterial(mtl.ID)

	colors := []struct {
		kind  AttributeKind
		value *math.Vec4
	}{
		{AttributeAmbientColor, mtl.Ambient},
		{AttributeDiffuseColor, mtl.Diffuse},
		{AttributeSpecularColor, mtl.Specular},
		{AttributeEmissiveColor, mtl.Emissive},
		{AttributeReflectionColor, mtl.Reflection},
	}
	for _, c := range colors {
		if c.value != nil {
			result.Set(NewColorAttribute(c.kind, *c.value))
		}
	}
	if mtl.Shininess > 0 {
		result.Set(NewFloatAttribute(AttributeShininess, mtl.Shininess))
	}
	if mtl.Opacity != nil && *mtl.Opacity != 1 {
		result.Set(NewBlendingAttribute(*mtl.Opacity))
	}

	// A file referenced twice by the same material is loaded once.
	textures := make(map[string]Texture)
	for _, tex := range mtl.Textures {
		texture, ok := textures[tex.FileName]
		if !ok {
			if provider == nil {
				return nil, fmt.Errorf("material %q: no texture provider for %q: %w", mtl.ID, tex.FileName, core.ErrAssetNotFound)
			}
			var err error
			texture, err = provider.Load(tex.FileName)
			if err != nil {
				return nil, fmt.Errorf("material %q: loading texture %q: %w", mtl.ID, tex.FileName, err)
			}
			textures[tex.FileName] = texture
			m.ManageDisposable(texture)
		}

		kind, ok := TextureKindForUsage(tex.Usage)
		if !ok {
			core.LogDebug("material %s: texture %s has usage %s, ignored", mtl.ID, tex.FileName, tex.Usage)
			continue
		}

		offsetU, offsetV := float32(0), float32(0)
		if tex.UVTranslation != nil {
			offsetU, offsetV = tex.UVTranslation.X, tex.UVTranslation.Y
		}
		scaleU, scaleV := float32(1), float32(1)
		if tex.UVScaling != nil {
			scaleU, scaleV = tex.UVScaling.X, tex.UVScaling.Y
		}
		result.Set(NewTextureAttribute(kind, NewTextureDescriptor(texture), offsetU, offsetV, scaleU, scaleV))
	}
	return result, nil
}

// loadNodes builds the forest, then binds bones. Bones are resolved only
// once every node exists so that they may live anywhere in the model.
func (m *Model) loadNodes(nodes []metadata.ModelNode) error {
	m.nodePartBones = make(map[*NodePart][]metadata.ModelBone)
	defer func() { m.nodePartBones = nil }()

	for i := range nodes {
		node, err := m.loadNode(&nodes[i])
		if err != nil {
			return err
		}
		m.Nodes = append(m.Nodes, node)
	}

	for part, bones := range m.nodePartBones {
		bindings := make([]BoneBinding, 0, len(bones))
		for _, bone := range bones {
			node := m.GetNode(bone.NodeID)
			if node == nil {
				core.LogDebug("bone %s not found, binding omitted", bone.NodeID)
				continue
			}
			bindings = append(bindings, BoneBinding{
				Node:             node,
				InvBindTransform: bone.Transform.Inverse(),
			})
		}
		part.Bind(bindings)
	}
	return nil
}

func (m *Model) loadNode(modelNode *metadata.ModelNode) (*Node, error) {
	node := NewNodeWithID(modelNode.ID)
	if modelNode.Translation != nil {
		node.Translation = *modelNode.Translation
	}
	if modelNode.Rotation != nil {
		node.Rotation = *modelNode.Rotation
	}
	if modelNode.Scale != nil {
		node.Scale = *modelNode.Scale
	}

	for _, mnp := range modelNode.Parts {
		meshPart := m.findMeshPart(mnp.MeshPartID)
		if meshPart == nil {
			return nil, fmt.Errorf("%w %q: mesh part %q: %w", core.ErrInvalidNode, node.ID, mnp.MeshPartID, core.ErrMeshPartNotFound)
		}
		var material *Material
		if mnp.MaterialID != "" {
			material = m.FindMaterial(mnp.MaterialID, false)
		}
		if material == nil {
			return nil, fmt.Errorf("%w %q: material %q: %w", core.ErrInvalidNode, node.ID, mnp.MaterialID, core.ErrMaterialNotFound)
		}
		part := NewNodePart(meshPart, material)
		node.Parts = append(node.Parts, part)
		if mnp.Bones != nil {
			m.nodePartBones[part] = mnp.Bones
		}
	}

	for i := range modelNode.Children {
		child, err := m.loadNode(&modelNode.Children[i])
		if err != nil {
			return nil, err
		}
		if _, err := node.AddChild(child); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (m *Model) findMeshPart(id string) *MeshPart {
	if id == "" {
		return nil
	}
	for _, mp := range m.MeshParts {
		if mp.ID == id {
			return mp
		}
	}
	return nil
}

func (m *Model) loadAnimations(animations []metadata.ModelAnimation) {
	for _, anim := range animations {
		animation := &Animation{ID: anim.ID}
		for _, nanim := range anim.NodeAnimations {
			node := m.GetNode(nanim.NodeID)
			if node == nil {
				core.LogDebug("animation %s: node %s not found, track skipped", anim.ID, nanim.NodeID)
				continue
			}
			nodeAnim := &NodeAnimation{
				Node:        node,
				Translation: convertKeyframes(nanim.Translation, node.Translation, &animation.Duration),
				Rotation:    convertKeyframes(nanim.Rotation, node.Rotation, &animation.Duration),
				Scaling:     convertKeyframes(nanim.Scaling, node.Scale, &animation.Duration),
			}
			if nodeAnim.HasKeyframes() {
				animation.NodeAnimations = append(animation.NodeAnimations, nodeAnim)
			}
		}
		if len(animation.NodeAnimations) > 0 {
			m.Animations = append(m.Animations, animation)
		}
	}
}

// convertKeyframes copies keyframes in order. A missing value takes the
// node's current one. duration is raised to the largest key time seen.
func convertKeyframes[T any](in []metadata.ModelNodeKeyframe[T], current T, duration *float32) []NodeKeyframe[T] {
	if len(in) == 0 {
		return nil
	}
	out := make([]NodeKeyframe[T], 0, len(in))
	for _, kf := range in {
		if kf.KeyTime > *duration {
			*duration = kf.KeyTime
		}
		value := current
		if kf.Value != nil {
			value = *kf.Value
		}
		out = append(out, NodeKeyframe[T]{KeyTime: kf.KeyTime, Value: value})
	}
	return out
}

// ManageDisposable registers d to be released with the model. Registering
// the same value twice has no effect.
func (m *Model) ManageDisposable(d Disposable) {
	if d == nil {
		return
	}
	for _, existing := range m.disposables {
		if existing == d {
			return
		}
	}
	m.disposables = append(m.disposables, d)
}

func (m *Model) ManagedDisposables() []Disposable {
	out := make([]Disposable, len(m.disposables))
	copy(out, m.disposables)
	return out
}

// Dispose releases every registered disposable once. Later calls do nothing.
func (m *Model) Dispose() error {
	if m.disposed {
		return nil
	}
	m.disposed = true
	var errs []error
	for _, d := range m.disposables {
		if err := d.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	m.disposables = nil
	return errors.Join(errs...)
}

// CalculateTransforms updates every node, then every skinning matrix.
// Bones may reference nodes of any root, so both passes cover the whole
// forest before the next starts.
func (m *Model) CalculateTransforms() {
	for _, node := range m.Nodes {
		node.CalculateTransforms(true)
	}
	for _, node := range m.Nodes {
		node.CalculateBoneTransforms(true)
	}
}

// ExtendBoundingBox grows box by every enabled part of the model in world space.
func (m *Model) ExtendBoundingBox(box *math.Extents3D) *math.Extents3D {
	for _, node := range m.Nodes {
		node.ExtendBoundingBox(box, true)
	}
	return box
}

func (m *Model) CalculateBoundingBox(box *math.Extents3D) *math.Extents3D {
	box.Inf()
	return m.ExtendBoundingBox(box)
}

// GetNode searches the whole forest, matching id exactly.
func (m *Model) GetNode(id string) *Node {
	return m.FindNode(id, true, false)
}

func (m *Model) FindNode(id string, recursive, ignoreCase bool) *Node {
	return FindNode(m.Nodes, id, recursive, ignoreCase)
}

// GetMaterial matches id ignoring case.
func (m *Model) GetMaterial(id string) *Material {
	return m.FindMaterial(id, true)
}

func (m *Model) FindMaterial(id string, ignoreCase bool) *Material {
	for _, mat := range m.Materials {
		if matchID(mat.ID, id, ignoreCase) {
			return mat
		}
	}
	return nil
}

// GetAnimation matches id ignoring case.
func (m *Model) GetAnimation(id string) *Animation {
	return m.FindAnimation(id, true)
}

func (m *Model) FindAnimation(id string, ignoreCase bool) *Animation {
	for _, anim := range m.Animations {
		if matchID(anim.ID, id, ignoreCase) {
			return anim
		}
	}
	return nil
}
