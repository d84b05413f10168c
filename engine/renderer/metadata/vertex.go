package metadata

/** @brief The meaning of a vertex attribute. */
type VertexUsage int

const (
	VertexUsagePosition VertexUsage = iota
	VertexUsageNormal
	VertexUsageColor
	VertexUsageTextureCoordinates
	VertexUsageBoneWeight
	VertexUsageTangent
	VertexUsageBinormal
)

/**
 * @brief A single attribute of an interleaved vertex, made of
 * NumComponents float32 values.
 */
type VertexAttribute struct {
	/** @brief What the attribute holds. */
	Usage VertexUsage
	/** @brief The number of float components. */
	NumComponents int
	/** @brief The shader alias, e.g. "a_position". */
	Alias string
	/** @brief The unit (texture coordinates) or bone index (bone weights). */
	Unit int
}

func NewPositionAttribute() VertexAttribute {
	return VertexAttribute{Usage: VertexUsagePosition, NumComponents: 3, Alias: "a_position"}
}

func NewNormalAttribute() VertexAttribute {
	return VertexAttribute{Usage: VertexUsageNormal, NumComponents: 3, Alias: "a_normal"}
}

func NewTexCoordsAttribute(unit int) VertexAttribute {
	return VertexAttribute{Usage: VertexUsageTextureCoordinates, NumComponents: 2, Alias: "a_texCoord", Unit: unit}
}

// NewBoneWeightAttribute holds a bone index and its weight.
func NewBoneWeightAttribute(unit int) VertexAttribute {
	return VertexAttribute{Usage: VertexUsageBoneWeight, NumComponents: 2, Alias: "a_boneWeight", Unit: unit}
}

/** @brief The ordered attributes of an interleaved vertex. */
type VertexAttributes []VertexAttribute

/**
 * @brief Returns the number of float32 values in one vertex.
 */
func (va VertexAttributes) VertexSize() int {
	size := 0
	for _, a := range va {
		size += a.NumComponents
	}
	return size
}

/**
 * @brief Returns the float offset of the first attribute with the given
 * usage inside a vertex, or -1 when there is none.
 */
func (va VertexAttributes) Offset(usage VertexUsage) int {
	offset := 0
	for _, a := range va {
		if a.Usage == usage {
			return offset
		}
		offset += a.NumComponents
	}
	return -1
}
