package math

// NewExtents3DInf returns an empty bounding box that any point will extend.
func NewExtents3DInf() Extents3D {
	return Extents3D{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

// Inf resets the box to the empty state.
func (e *Extents3D) Inf() {
	*e = NewExtents3DInf()
}

// Extend grows the box so it contains p.
func (e *Extents3D) Extend(p Vec3) {
	e.Min = Vec3{min(e.Min.X, p.X), min(e.Min.Y, p.Y), min(e.Min.Z, p.Z)}
	e.Max = Vec3{max(e.Max.X, p.X), max(e.Max.Y, p.Y), max(e.Max.Z, p.Z)}
}

// IsValid reports whether the box contains at least one point.
func (e Extents3D) IsValid() bool {
	return e.Min.X <= e.Max.X && e.Min.Y <= e.Max.Y && e.Min.Z <= e.Max.Z
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

func (e Extents3D) Dimensions() Vec3 {
	return e.Max.Sub(e.Min)
}
