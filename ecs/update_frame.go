package ecs

// UpdateFrame is what a system sees of the current tick.
type UpdateFrame struct {
	// DeltaTime is the elapsed time since the previous frame in seconds. Zero pauses
	// time-based systems without skipping them.
	DeltaTime float64
	// Number counts frames from 1.
	Number   uint64
	Commands *Commands
	Storage  *Storage
}
