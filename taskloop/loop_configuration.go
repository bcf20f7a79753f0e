package taskloop

import (
	"github.com/go-playground/validator/v10"
)

// Defines configuration options for an owner loop.
//
// Use the factory function to get a new instance of the struct with nice defaults and then modify
// settings using With*** methods.
type LoopOptions struct {
	// Maximum number of tasks waiting to be executed. Post fails with a LoopFullError when the
	// limit is reached. Results of background work started with Scope.Background are not subject
	// to the limit.
	//
	// Defaults to 0 (unbounded). Must be at least 0.
	MaxPendingTasks int `validate:"gte=0"`
	// If true, tasks already queued when Stop is called are executed before Run returns.
	//
	// Defaults to true.
	DrainOnStop bool
}

// # Description
//
// Set opts.MaxPendingTasks and return the modified object. Method does not validate inputs.
//
// # Return
//
// The modified options.
func (opts *LoopOptions) WithMaxPendingTasks(value int) *LoopOptions {
	opts.MaxPendingTasks = value
	return opts
}

// # Description
//
// Set opts.DrainOnStop and return the modified object.
//
// # Return
//
// The modified options.
func (opts *LoopOptions) WithDrainOnStop(value bool) *LoopOptions {
	opts.DrainOnStop = value
	return opts
}

// # Description
//
// Factory which creates a new LoopOptions object with nice defaults.
//
// # Default settings
//
//   - MaxPendingTasks = 0 , the pending tasks queue is unbounded.
//   - DrainOnStop = true , queued tasks are executed when the loop stops.
func NewLoopOptions() *LoopOptions {
	return &LoopOptions{
		MaxPendingTasks: 0,
		DrainOnStop:     true,
	}
}

// # Description
//
// Helper function which validates LoopOptions. Options are valid if opts is not nil and
// opts.MaxPendingTasks is greater or equal to 0.
//
// # Returns
//
// InvalidValidationError for bad values passed in and nil or ValidationErrors as error otherwise.
func Validate(opts *LoopOptions) error {
	return validator.New().Struct(opts)
}
