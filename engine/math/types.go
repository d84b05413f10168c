package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 * Matrices follow the row-vector convention: the translation lives in
 * Data[12], Data[13] and Data[14], and a.Mul(b) applies a first, then b.
 * The memory layout is the same as a column-major OpenGL matrix.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the extents of a 3d object. An empty (inf) box has
 * Min greater than Max on every axis.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

/**
 * @brief Represents a rigid transform: a translation, a rotation and a scale.
 * The matrix form applies scale first, then rotation, then translation.
 */
type Transform struct {
	/** @brief The translation relative to the parent space. */
	Translation Vec3
	/** @brief The rotation, expected to be a unit quaternion. */
	Rotation Quaternion
	/** @brief The per-axis scale. */
	Scale Vec3
}
