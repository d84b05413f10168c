package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-g3d/engine/assets"
	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/model"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Sampler state handed to every texture. */
	MinFilter metadata.TextureFilter
	MagFilter metadata.TextureFilter
	WrapU     metadata.TextureRepeat
	WrapV     metadata.TextureRepeat
	/** @brief Flip images on the y-axis when decoding. */
	FlipY bool
}

// NewTextureSystemConfig reads the sampler defaults from cfg.
func NewTextureSystemConfig(cfg *core.Config, maxTextureCount uint32) (*TextureSystemConfig, error) {
	tc := &TextureSystemConfig{
		MaxTextureCount: maxTextureCount,
		FlipY:           cfg.Assets.FlipY,
	}
	var err error
	if tc.MinFilter, err = metadata.ParseTextureFilter(cfg.Textures.MinFilter); err != nil {
		return nil, err
	}
	if tc.MagFilter, err = metadata.ParseTextureFilter(cfg.Textures.MagFilter); err != nil {
		return nil, err
	}
	if tc.WrapU, err = metadata.ParseTextureRepeat(cfg.Textures.WrapU); err != nil {
		return nil, err
	}
	if tc.WrapV, err = metadata.ParseTextureRepeat(cfg.Textures.WrapV); err != nil {
		return nil, err
	}
	return tc, nil
}

type textureReference struct {
	referenceCount uint64
	texture        *metadata.Texture
	resource       *metadata.Resource
	// assetGeneration is the asset generation the pixels were read from.
	assetGeneration uint32
}

// TextureSystem loads textures through the asset manager and shares them
// between everybody asking for the same file. A texture stays loaded while
// at least one handle to it is alive.
type TextureSystem struct {
	Config *TextureSystemConfig

	mutex sync.Mutex
	// Hashtable for texture lookups, keyed by asset name.
	registeredTextureTable map[string]*textureReference
	assetManager           *assets.AssetManager
}

func NewTextureSystem(config *TextureSystemConfig, am *assets.AssetManager) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError("%s", err)
		return nil, err
	}
	return &TextureSystem{
		Config:                 config,
		registeredTextureTable: make(map[string]*textureReference),
		assetManager:           am,
	}, nil
}

// Load acquires the texture for fileName. It satisfies model.TextureProvider.
func (ts *TextureSystem) Load(fileName string) (model.Texture, error) {
	return ts.Acquire(fileName)
}

// Acquire returns a new handle to the texture, loading it on first use or
// when the file changed on disk since it was loaded.
func (ts *TextureSystem) Acquire(name string) (*TextureHandle, error) {
	info, err := ts.assetManager.Resolve(name)
	if err != nil {
		core.LogError("texture system failed to resolve '%s': %s", name, err)
		return nil, err
	}

	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	ref, ok := ts.registeredTextureTable[info.Name]
	if !ok {
		if uint32(len(ts.registeredTextureTable)) >= ts.Config.MaxTextureCount {
			err := fmt.Errorf("texture system cannot hold more than %d textures", ts.Config.MaxTextureCount)
			core.LogError("%s", err)
			return nil, err
		}
		ref = &textureReference{
			texture: &metadata.Texture{
				ID:   core.NewIdentifier().String(),
				Name: info.Name,
			},
		}
		if err := ts.loadTexture(ref); err != nil {
			return nil, err
		}
		ts.registeredTextureTable[info.Name] = ref
		core.LogDebug("texture '%s' loaded (%dx%d)", info.Name, ref.texture.Width, ref.texture.Height)
	} else if ref.assetGeneration != info.Generation {
		if err := ts.loadTexture(ref); err != nil {
			return nil, err
		}
	}

	ref.referenceCount++
	return &TextureHandle{system: ts, name: info.Name, texture: ref.texture}, nil
}

// loadTexture reads the pixels into ref. A reload keeps the texture value
// and bumps its generation so existing handles see the new data.
func (ts *TextureSystem) loadTexture(ref *textureReference) error {
	res, info, err := ts.assetManager.LoadAsset(ref.texture.Name, &metadata.ImageResourceParams{FlipY: ts.Config.FlipY})
	if err != nil {
		core.LogError("failed to load texture '%s': %s", ref.texture.Name, err)
		return err
	}
	data, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		ts.assetManager.UnloadAsset(res)
		return fmt.Errorf("texture '%s' is not an image: %w", ref.texture.Name, core.ErrUnsupportedFormat)
	}

	if ref.resource != nil {
		if err := ts.assetManager.UnloadAsset(ref.resource); err != nil {
			core.LogWarn("texture '%s': unloading previous data: %s", ref.texture.Name, err)
		}
		ref.texture.Generation++
	}
	t := ref.texture
	t.Width = data.Width
	t.Height = data.Height
	t.ChannelCount = data.ChannelCount
	t.HasTransparency = data.HasTransparency
	t.Pixels = data.Pixels
	ref.resource = res
	ref.assetGeneration = info.Generation
	return nil
}

// Release drops one reference to name and unloads the texture when none is left.
func (ts *TextureSystem) Release(name string) {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	ref, ok := ts.registeredTextureTable[name]
	if !ok || ref.referenceCount == 0 {
		core.LogWarn("tried to release non-existent texture: '%s'", name)
		return
	}
	ref.referenceCount--
	if ref.referenceCount > 0 {
		return
	}
	ts.destroyTexture(name, ref)
	core.LogDebug("texture '%s' released and unloaded", name)
}

func (ts *TextureSystem) destroyTexture(name string, ref *textureReference) {
	if err := ts.assetManager.UnloadAsset(ref.resource); err != nil {
		core.LogWarn("texture '%s': %s", name, err)
	}
	ref.texture.Pixels = nil
	delete(ts.registeredTextureTable, name)
}

// Refresh reloads every loaded texture whose file changed on disk. It never
// blocks and returns how many textures were reloaded.
func (ts *TextureSystem) Refresh() int {
	reloaded := 0
	for {
		select {
		case change := <-ts.assetManager.Changes():
			if ts.refresh(change) {
				reloaded++
			}
		default:
			return reloaded
		}
	}
}

func (ts *TextureSystem) refresh(change assets.AssetInfo) bool {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	ref, ok := ts.registeredTextureTable[change.Name]
	if !ok {
		return false
	}
	if change.Removed {
		core.LogWarn("texture '%s' was removed from disk, keeping the loaded data", change.Name)
		return false
	}
	if ref.assetGeneration == change.Generation {
		return false
	}
	if err := ts.loadTexture(ref); err != nil {
		return false
	}
	core.LogInfo("texture '%s' reloaded (generation %d)", change.Name, ref.texture.Generation)
	return true
}

// ReferenceCount returns the live references to name.
func (ts *TextureSystem) ReferenceCount(name string) uint64 {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	if ref, ok := ts.registeredTextureTable[name]; ok {
		return ref.referenceCount
	}
	return 0
}

func (ts *TextureSystem) Count() int {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	return len(ts.registeredTextureTable)
}

func (ts *TextureSystem) Shutdown() error {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()
	for name, ref := range ts.registeredTextureTable {
		core.LogWarn("texture '%s' still has %d references at shutdown", name, ref.referenceCount)
		ts.destroyTexture(name, ref)
	}
	return nil
}

// TextureHandle is one reference to a texture of the system. Disposing it
// releases that reference; further calls do nothing.
type TextureHandle struct {
	system   *TextureSystem
	name     string
	texture  *metadata.Texture
	released bool
}

func (h *TextureHandle) Name() string { return h.name }

// Texture returns the shared texture data.
func (h *TextureHandle) Texture() *metadata.Texture { return h.texture }

func (h *TextureHandle) Filter() (metadata.TextureFilter, metadata.TextureFilter) {
	return h.system.Config.MinFilter, h.system.Config.MagFilter
}

func (h *TextureHandle) Wrap() (metadata.TextureRepeat, metadata.TextureRepeat) {
	return h.system.Config.WrapU, h.system.Config.WrapV
}

func (h *TextureHandle) Dispose() error {
	if h.released {
		return nil
	}
	h.released = true
	h.system.Release(h.name)
	return nil
}
