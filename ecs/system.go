package ecs

// System is a behavior run once per frame. Query and Singleton fields of a registered
// system are bound to the scheduler's store; other fields persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// storageBinder is implemented by Query and Singleton.
type storageBinder interface {
	Init(storage *Storage)
}

// frameExecutor is implemented by Query.
type frameExecutor interface {
	Execute()
}
