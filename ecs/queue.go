package ecs

// Command is a deferred entity-creation request.
//
// EntitiesQueued must be an exact upper bound on the number of entities the
// command spawns when executed. The queue reserves that much capacity before
// calling Execute; under-reporting lets component storage reallocate while
// the command still holds pointers into it.
type Command interface {
	EntitiesQueued() int
	Execute(q *Queue)
}

// CommandFunc adapts a function that spawns n entities into a Command.
type CommandFunc struct {
	N  int
	Fn func(q *Queue)
}

func (c CommandFunc) EntitiesQueued() int { return c.N }
func (c CommandFunc) Execute(q *Queue)    { c.Fn(q) }

// Queue is the entity creation queue. Systems never spawn entities directly
// while iterating; they push commands here and the Scheduler drains the
// queue between systems.
type Queue struct {
	storage *Storage
	items   []Command
	head    int

	executed int
}

// NewQueue creates an empty queue that spawns into storage.
func NewQueue(storage *Storage) *Queue {
	return &Queue{storage: storage}
}

// Storage returns the registry commands spawn into.
func (q *Queue) Storage() *Storage {
	return q.storage
}

// PushBack appends a command.
func (q *Queue) PushBack(cmd Command) {
	q.items = append(q.items, cmd)
}

// PushFront inserts a command ahead of everything already queued.
func (q *Queue) PushFront(cmd Command) {
	if q.head > 0 {
		q.head--
		q.items[q.head] = cmd
		return
	}
	q.items = append(q.items, nil)
	copy(q.items[1:], q.items)
	q.items[0] = cmd
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Executed returns the number of commands run since the queue was created.
func (q *Queue) Executed() int {
	return q.executed
}

// ExecuteAll drains the queue. Commands pushed while draining run in the same
// call, in queue order; the loop never recurses.
func (q *Queue) ExecuteAll() {
	for q.head < len(q.items) {
		cmd := q.items[q.head]
		q.items[q.head] = nil
		q.head++

		q.storage.Reserve(cmd.EntitiesQueued())
		cmd.Execute(q)
		q.executed++
	}
	q.items = q.items[:0]
	q.head = 0
}
