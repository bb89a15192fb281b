package component

// ShakeableProp is scenery that wobbles when a nearby hit lands.
// Offset and Velocity are a damped spring along Axis.
type ShakeableProp struct {
	TemplateID int32
	ShakeScale float32
	Axis       Vec3
	Offset     float32
	Velocity   float32
}
