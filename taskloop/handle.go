package taskloop

import (
	"github.com/google/uuid"
)

// Reference to an object owned by a loop. A Handle can be copied and used from any goroutine
// but the referenced object can only be obtained with the Scope of its owner loop, that is from
// a task run by that loop.
type Handle[T any] struct {
	// Loop which owns the target
	owner *Loop
	// Owned object
	target *T
}

// # Description
//
// Create a handle to target, owned by the provided loop.
func NewHandle[T any](owner *Loop, target *T) Handle[T] {
	return Handle[T]{owner: owner, target: target}
}

// Return another handle which references the same object.
func (handle Handle[T]) Clone() Handle[T] {
	return Handle[T]{owner: handle.owner, target: handle.target}
}

// Return the identifier of the owner loop or uuid.Nil for a zero handle.
func (handle Handle[T]) Owner() uuid.UUID {
	if handle.owner == nil {
		return uuid.Nil
	}
	return handle.owner.id
}

// # Description
//
// Post a task to the owner loop.
//
// # Return
//
// ErrNilHandle for a zero handle, otherwise the result of Loop.Post.
func (handle Handle[T]) Post(task Task) error {
	if handle.owner == nil {
		return ErrNilHandle
	}
	return handle.owner.Post(task)
}

// # Description
//
// Return the referenced object. Only the scope of the owner loop can resolve the handle.
//
// # Return
//
// The owned object, ErrNilHandle for a zero handle or a WrongOwnerError if the scope does not
// belong to the owner loop.
func (handle Handle[T]) Resolve(scope *Scope) (*T, error) {
	if handle.owner == nil || handle.target == nil {
		return nil, ErrNilHandle
	}
	if scope == nil || scope.loop == nil || scope.loop.id != handle.owner.id {
		resolver := uuid.Nil
		if scope != nil && scope.loop != nil {
			resolver = scope.loop.id
		}
		return nil, WrongOwnerError{Owner: handle.owner.id, Resolver: resolver}
	}
	return handle.target, nil
}
