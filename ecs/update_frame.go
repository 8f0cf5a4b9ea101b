package ecs

// UpdateFrame is what a System sees during one tick.
type UpdateFrame struct {
	DeltaTime float64
	Tick      uint64
	Queue     *Queue
	Storage   *Storage
}
