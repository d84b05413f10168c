package model

import "github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"

// Disposable is a resource released explicitly by its owner.
type Disposable interface {
	Dispose() error
}

// Texture is a loaded texture handle as seen by materials.
type Texture interface {
	Disposable
	Name() string
	Filter() (min, mag metadata.TextureFilter)
	Wrap() (u, v metadata.TextureRepeat)
}

// TextureProvider turns a texture file name into a handle. Every handle it
// returns is owned, and eventually disposed, by the model that asked for it.
type TextureProvider interface {
	Load(fileName string) (Texture, error)
}
