package core

import (
	"errors"
)

var (
	ErrCyclicHierarchy   = errors.New("cannot add a parent node as a child")
	ErrDetachFailed      = errors.New("could not detach child from its current parent")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrNilNode           = errors.New("node is nil")
	ErrInvalidNode       = errors.New("invalid node")
	ErrMeshPartNotFound  = errors.New("mesh part not found")
	ErrMaterialNotFound  = errors.New("material not found")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknown           = errors.New("unknown")
)
