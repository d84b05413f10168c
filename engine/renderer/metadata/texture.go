package metadata

import "fmt"

/**
 * @brief Represents a loaded texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Indicates if the texture has transparency. */
	HasTransparency bool
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name, as requested by the model. */
	Name string
	/** @brief The raw texture data (pixels). */
	Pixels []uint8
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

func ParseTextureFilter(s string) (TextureFilter, error) {
	switch s {
	case "nearest":
		return TextureFilterModeNearest, nil
	case "linear":
		return TextureFilterModeLinear, nil
	}
	return 0, fmt.Errorf("unknown texture filter %q", s)
}

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
)

func ParseTextureRepeat(s string) (TextureRepeat, error) {
	switch s {
	case "repeat":
		return TextureRepeatRepeat, nil
	case "mirrored_repeat":
		return TextureRepeatMirroredRepeat, nil
	case "clamp_to_edge":
		return TextureRepeatClampToEdge, nil
	}
	return 0, fmt.Errorf("unknown texture repeat %q", s)
}

/** @brief How a model texture is meant to be used by its material. */
type TextureUsage int

const (
	TextureUsageUnknown      TextureUsage = 0
	TextureUsageNone         TextureUsage = 1
	TextureUsageDiffuse      TextureUsage = 2
	TextureUsageEmissive     TextureUsage = 3
	TextureUsageAmbient      TextureUsage = 4
	TextureUsageSpecular     TextureUsage = 5
	TextureUsageShininess    TextureUsage = 6
	TextureUsageNormal       TextureUsage = 7
	TextureUsageBump         TextureUsage = 8
	TextureUsageTransparency TextureUsage = 9
	TextureUsageReflection   TextureUsage = 10
)

func (u TextureUsage) String() string {
	switch u {
	case TextureUsageNone:
		return "none"
	case TextureUsageDiffuse:
		return "diffuse"
	case TextureUsageEmissive:
		return "emissive"
	case TextureUsageAmbient:
		return "ambient"
	case TextureUsageSpecular:
		return "specular"
	case TextureUsageShininess:
		return "shininess"
	case TextureUsageNormal:
		return "normal"
	case TextureUsageBump:
		return "bump"
	case TextureUsageTransparency:
		return "transparency"
	case TextureUsageReflection:
		return "reflection"
	}
	return "unknown"
}
