package loaders

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

type decodeFunc func(io.Reader) (image.Image, error)

// decoders picks the decoder from the file extension. The tga package
// registers itself with image.Decode without a magic number, which would
// claim every file, so the format registry is never consulted.
var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

// TextureLoader decodes png, jpeg, gif, bmp, tiff, webp and tga files into
// RGBA pixels. Params, when given, must be *metadata.ImageResourceParams.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if assetType != metadata.ResourceTypeImage {
		return nil, fmt.Errorf("texture loader cannot load %s: %w", assetType, core.ErrUnsupportedFormat)
	}
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("no image decoder for %q: %w", ext, core.ErrUnsupportedFormat)
	}
	flipY := false
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		flipY = p.FlipY
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	img, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w: %w", path, core.ErrUnsupportedFormat, err)
	}
	core.LogDebug("decoded %s texture %s", strings.TrimPrefix(ext, "."), path)

	data := toImageData(img, flipY)
	return &metadata.Resource{
		Type:     metadata.ResourceTypeImage,
		Name:     info.Name(),
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}

// toImageData converts any image to tightly packed non-premultiplied RGBA.
func toImageData(src image.Image, flipY bool) *metadata.ImageResourceData {
	b := src.Bounds()
	dst, ok := src.(*image.NRGBA)
	if !ok || dst.Rect.Min != (image.Point{}) || dst.Stride != 4*b.Dx() {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	stride := 4 * w
	pixels := make([]uint8, stride*h)
	for y := 0; y < h; y++ {
		srcRow := y
		if flipY {
			srcRow = h - 1 - y
		}
		copy(pixels[y*stride:(y+1)*stride], dst.Pix[srcRow*dst.Stride:srcRow*dst.Stride+stride])
	}

	transparent := false
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] != 0xff {
			transparent = true
			break
		}
	}

	return &metadata.ImageResourceData{
		ChannelCount:    4,
		Width:           uint32(w),
		Height:          uint32(h),
		Pixels:          pixels,
		HasTransparency: transparent,
	}
}
