package model

import (
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/anima-g3d/engine/math"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

// AttributeKind identifies a material attribute. A material holds at most
// one attribute per kind.
type AttributeKind int

const (
	AttributeAmbientColor AttributeKind = iota
	AttributeDiffuseColor
	AttributeSpecularColor
	AttributeEmissiveColor
	AttributeReflectionColor
	AttributeShininess
	AttributeBlending
	AttributeDiffuseTexture
	AttributeEmissiveTexture
	AttributeAmbientTexture
	AttributeSpecularTexture
	AttributeNormalTexture
	AttributeBumpTexture
	AttributeReflectionTexture
)

var attributeKindNames = map[AttributeKind]string{
	AttributeAmbientColor:      "ambientColor",
	AttributeDiffuseColor:      "diffuseColor",
	AttributeSpecularColor:     "specularColor",
	AttributeEmissiveColor:     "emissiveColor",
	AttributeReflectionColor:   "reflectionColor",
	AttributeShininess:         "shininess",
	AttributeBlending:          "blended",
	AttributeDiffuseTexture:    "diffuseTexture",
	AttributeEmissiveTexture:   "emissiveTexture",
	AttributeAmbientTexture:    "ambientTexture",
	AttributeSpecularTexture:   "specularTexture",
	AttributeNormalTexture:     "normalTexture",
	AttributeBumpTexture:       "bumpTexture",
	AttributeReflectionTexture: "reflectionTexture",
}

func (k AttributeKind) String() string {
	if s, ok := attributeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// textureAttributeKinds maps the usage of a model texture to the material
// slot it fills. Usages missing here have no slot.
var textureAttributeKinds = map[metadata.TextureUsage]AttributeKind{
	metadata.TextureUsageDiffuse:    AttributeDiffuseTexture,
	metadata.TextureUsageEmissive:   AttributeEmissiveTexture,
	metadata.TextureUsageAmbient:    AttributeAmbientTexture,
	metadata.TextureUsageSpecular:   AttributeSpecularTexture,
	metadata.TextureUsageNormal:     AttributeNormalTexture,
	metadata.TextureUsageBump:       AttributeBumpTexture,
	metadata.TextureUsageReflection: AttributeReflectionTexture,
}

// TextureKindForUsage returns the texture slot for usage.
func TextureKindForUsage(usage metadata.TextureUsage) (AttributeKind, bool) {
	k, ok := textureAttributeKinds[usage]
	return k, ok
}

type Attribute interface {
	Kind() AttributeKind
	Copy() Attribute
}

type ColorAttribute struct {
	kind  AttributeKind
	Color math.Vec4
}

func NewColorAttribute(kind AttributeKind, color math.Vec4) *ColorAttribute {
	return &ColorAttribute{kind: kind, Color: color}
}

func (a *ColorAttribute) Kind() AttributeKind { return a.kind }
func (a *ColorAttribute) Copy() Attribute     { c := *a; return &c }

type FloatAttribute struct {
	kind  AttributeKind
	Value float32
}

func NewFloatAttribute(kind AttributeKind, value float32) *FloatAttribute {
	return &FloatAttribute{kind: kind, Value: value}
}

func (a *FloatAttribute) Kind() AttributeKind { return a.kind }
func (a *FloatAttribute) Copy() Attribute     { c := *a; return &c }

// Blend factors, with their GL values.
const (
	BlendSrcAlpha         = 0x0302
	BlendOneMinusSrcAlpha = 0x0303
)

type BlendingAttribute struct {
	Blended        bool
	SourceFunction int
	DestFunction   int
	Opacity        float32
}

// NewBlendingAttribute returns standard alpha blending with the given opacity.
func NewBlendingAttribute(opacity float32) *BlendingAttribute {
	return &BlendingAttribute{
		Blended:        true,
		SourceFunction: BlendSrcAlpha,
		DestFunction:   BlendOneMinusSrcAlpha,
		Opacity:        opacity,
	}
}

func (a *BlendingAttribute) Kind() AttributeKind { return AttributeBlending }
func (a *BlendingAttribute) Copy() Attribute     { c := *a; return &c }

// TextureDescriptor is a texture plus the sampler state it is drawn with.
type TextureDescriptor struct {
	Texture   Texture
	MinFilter metadata.TextureFilter
	MagFilter metadata.TextureFilter
	UWrap     metadata.TextureRepeat
	VWrap     metadata.TextureRepeat
}

// NewTextureDescriptor takes the sampler state from the texture itself.
func NewTextureDescriptor(t Texture) TextureDescriptor {
	d := TextureDescriptor{Texture: t}
	d.MinFilter, d.MagFilter = t.Filter()
	d.UWrap, d.VWrap = t.Wrap()
	return d
}

type TextureAttribute struct {
	kind       AttributeKind
	Descriptor TextureDescriptor
	OffsetU    float32
	OffsetV    float32
	ScaleU     float32
	ScaleV     float32
}

func NewTextureAttribute(kind AttributeKind, d TextureDescriptor, offsetU, offsetV, scaleU, scaleV float32) *TextureAttribute {
	return &TextureAttribute{
		kind:       kind,
		Descriptor: d,
		OffsetU:    offsetU,
		OffsetV:    offsetV,
		ScaleU:     scaleU,
		ScaleV:     scaleV,
	}
}

func (a *TextureAttribute) Kind() AttributeKind { return a.kind }
func (a *TextureAttribute) Copy() Attribute     { c := *a; return &c }

// Material is a named set of attributes.
type Material struct {
	ID    string
	attrs map[AttributeKind]Attribute
}

func NewMaterial(id string, attrs ...Attribute) *Material {
	m := &Material{ID: id, attrs: make(map[AttributeKind]Attribute)}
	m.Set(attrs...)
	return m
}

// Set stores attrs, replacing any attribute of the same kind.
func (m *Material) Set(attrs ...Attribute) {
	if m.attrs == nil {
		m.attrs = make(map[AttributeKind]Attribute)
	}
	for _, a := range attrs {
		m.attrs[a.Kind()] = a
	}
}

func (m *Material) Get(kind AttributeKind) (Attribute, bool) {
	a, ok := m.attrs[kind]
	return a, ok
}

func (m *Material) Has(kind AttributeKind) bool {
	_, ok := m.attrs[kind]
	return ok
}

func (m *Material) Remove(kind AttributeKind) {
	delete(m.attrs, kind)
}

func (m *Material) Len() int {
	return len(m.attrs)
}

// Kinds returns the kinds present, in ascending order.
func (m *Material) Kinds() []AttributeKind {
	kinds := make([]AttributeKind, 0, len(m.attrs))
	for k := range m.attrs {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Textures returns the distinct texture handles referenced by the material.
func (m *Material) Textures() []Texture {
	var out []Texture
	for _, k := range m.Kinds() {
		ta, ok := m.attrs[k].(*TextureAttribute)
		if !ok || ta.Descriptor.Texture == nil || slices.Contains(out, ta.Descriptor.Texture) {
			continue
		}
		out = append(out, ta.Descriptor.Texture)
	}
	return out
}

// Copy duplicates the attributes. Texture handles stay shared.
func (m *Material) Copy() *Material {
	c := NewMaterial(m.ID)
	for k, a := range m.attrs {
		c.attrs[k] = a.Copy()
	}
	return c
}
