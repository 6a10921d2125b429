package ecs

import "errors"

// Commands buffers structural changes requested while systems iterate their
// entity sets. The buffer is applied with Flush, normally by the Scheduler at
// the end of a frame.
type Commands struct {
	destroys []Entity
	removes  []entityCommand
	adds     []entityCommand
	defers   []func()
}

type entityCommand struct {
	entity Entity
	apply  func(w *World) error
}

func newCommands() *Commands {
	return &Commands{}
}

// Destroy queues the destruction of e. Destroying the same entity more than
// once in a frame is allowed.
func (c *Commands) Destroy(e Entity) {
	c.destroys = append(c.destroys, e)
}

// Defer queues fn to run after every other queued command.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// QueueAdd queues AddComponent(w, e, value).
func QueueAdd[T any](c *Commands, e Entity, value T) {
	c.adds = append(c.adds, entityCommand{
		entity: e,
		apply: func(w *World) error {
			_, err := AddComponent(w, e, value)
			return err
		},
	})
}

// QueueRemove queues RemoveComponent[T](w, e).
func QueueRemove[T any](c *Commands, e Entity) {
	c.removes = append(c.removes, entityCommand{
		entity: e,
		apply: func(w *World) error {
			return RemoveComponent[T](w, e)
		},
	})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.adds) + len(c.defers)
}

// Flush applies the queued commands to w and resets the buffer. Destroys run
// first, then removes, adds and deferred functions. Removes and adds that
// target an entity destroyed by this flush are dropped. Errors from the
// remaining commands are joined and returned after every command has run.
func (c *Commands) Flush(w *World) error {
	var errs []error
	destroyed := make(map[Entity]struct{}, len(c.destroys))

	for _, e := range c.destroys {
		if _, done := destroyed[e]; done {
			continue
		}
		if err := w.DestroyEntity(e); err != nil {
			errs = append(errs, err)
		}
		destroyed[e] = struct{}{}
	}

	for _, cmd := range c.removes {
		if _, dead := destroyed[cmd.entity]; dead {
			continue
		}
		if err := cmd.apply(w); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.adds {
		if _, dead := destroyed[cmd.entity]; dead {
			continue
		}
		if err := cmd.apply(w); err != nil {
			errs = append(errs, err)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.destroys = c.destroys[:0]
	c.removes = c.removes[:0]
	c.adds = c.adds[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
