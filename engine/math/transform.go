package math

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{
		Translation: NewVec3Zero(),
		Rotation:    NewQuatIdentity(),
		Scale:       NewVec3One(),
	}
}

func (t *Transform) Set(position Vec3, rotation Quaternion, scale Vec3) {
	t.Translation = position
	t.Rotation = rotation
	t.Scale = scale
}

func (t *Transform) Translate(translation Vec3) {
	t.Translation = t.Translation.Add(translation)
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Rotation = t.Rotation.Mul(rotation)
}

func (t *Transform) ScaleBy(scale Vec3) {
	t.Scale = t.Scale.Mul(scale)
}

// Reset restores the identity transform.
func (t *Transform) Reset() {
	*t = NewTransform()
}

/**
 * @brief Returns the matrix form of the transform: scale, then rotation,
 * then translation.
 *
 * @return The composed matrix.
 */
func (t Transform) Matrix() Mat4 {
	return NewMat4TRS(t.Translation, t.Rotation, t.Scale)
}
