package systems

import (
	"errors"

	"github.com/spaghettifunk/anima-g3d/engine/assets"
	"github.com/spaghettifunk/anima-g3d/engine/core"
)

const defaultMaxTextureCount uint32 = 1024

type SystemManager struct {
	assetManager  *assets.AssetManager
	textureSystem *TextureSystem
}

func NewSystemManager(cfg *core.Config) (*SystemManager, error) {
	am, err := assets.NewAssetManager(cfg.Assets.TextureDir, cfg.Assets.Watch)
	if err != nil {
		return nil, err
	}
	tc, err := NewTextureSystemConfig(cfg, defaultMaxTextureCount)
	if err != nil {
		am.Close()
		return nil, err
	}
	ts, err := NewTextureSystem(tc, am)
	if err != nil {
		am.Close()
		return nil, err
	}
	return &SystemManager{
		assetManager:  am,
		textureSystem: ts,
	}, nil
}

func (sm *SystemManager) AssetManager() *assets.AssetManager {
	return sm.assetManager
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

// Update picks up asset changes. It is called once per frame.
func (sm *SystemManager) Update() {
	if n := sm.textureSystem.Refresh(); n > 0 {
		core.LogDebug("%d textures reloaded", n)
	}
}

// Shutdown stops the systems in reverse creation order.
func (sm *SystemManager) Shutdown() error {
	return errors.Join(
		sm.textureSystem.Shutdown(),
		sm.assetManager.Close(),
	)
}
