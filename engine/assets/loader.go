package assets

import "github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"

// Loader turns a file on disk into a resource of one type.
type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take type specific parameters
	Unload(*metadata.Resource) error
}
