package component

// Transform places an entity in the arena.
type Transform struct {
	Position  Vec3
	FaceAngle float32 // radians about the vertical axis
}
