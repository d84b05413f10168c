package model

import "github.com/spaghettifunk/anima-g3d/engine/math"

// Animation is a named set of node tracks.
type Animation struct {
	ID string
	// Duration is the largest key time over all tracks, in seconds.
	Duration       float32
	NodeAnimations []*NodeAnimation
}

// NodeAnimation holds the keyframes of one node. Each channel is ordered by
// key time and may be empty.
type NodeAnimation struct {
	Node        *Node
	Translation []NodeKeyframe[math.Vec3]
	Rotation    []NodeKeyframe[math.Quaternion]
	Scaling     []NodeKeyframe[math.Vec3]
}

type NodeKeyframe[T any] struct {
	KeyTime float32
	Value   T
}

// HasKeyframes reports whether any channel has at least one keyframe.
func (na *NodeAnimation) HasKeyframes() bool {
	return len(na.Translation) > 0 || len(na.Rotation) > 0 || len(na.Scaling) > 0
}
