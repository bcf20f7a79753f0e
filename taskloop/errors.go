package taskloop

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// Returned when a task is posted to a loop which has been stopped.
	ErrLoopStopped = errors.New("owner loop has stopped")
	// Returned when a zero Handle is used.
	ErrNilHandle = errors.New("handle does not reference any object")
)

/*************************************************************************************************/
/* WRONG OWNER ERROR                                                                             */
/*************************************************************************************************/

// Error returned when a handle is resolved with the scope of another loop.
type WrongOwnerError struct {
	// Loop which owns the handle target
	Owner uuid.UUID
	// Loop of the scope used to resolve the handle. uuid.Nil if no valid scope was used.
	Resolver uuid.UUID
}

func (err WrongOwnerError) Error() string {
	return fmt.Sprintf("handle owned by loop %s cannot be resolved from loop %s", err.Owner, err.Resolver)
}

/*************************************************************************************************/
/* LOOP FULL ERROR                                                                               */
/*************************************************************************************************/

// Error returned when a task is posted to a loop which has reached its pending tasks capacity.
type LoopFullError struct {
	// Maximum number of pending tasks
	Capacity int
}

func (err LoopFullError) Error() string {
	return fmt.Sprintf("owner loop has reached its capacity of %d pending tasks", err.Capacity)
}
