package taskloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Test suite used for Handle unit tests
type HandleUnitTestSuite struct {
	suite.Suite
}

// Run HandleUnitTestSuite test suite
func TestHandleUnitTestSuite(t *testing.T) {
	suite.Run(t, new(HandleUnitTestSuite))
}

type counter struct {
	value int
}

// # Description
//
// Test a handle and its clones resolve to the same object from the owner loop and can be used
// to post tasks to the owner from another goroutine.
func (suite *HandleUnitTestSuite) TestResolveFromOwner() {
	loop, stop := startLoop(suite.T(), nil)
	defer stop()
	target := &counter{}
	handle := NewHandle(loop, target)
	require.Equal(suite.T(), loop.Id(), handle.Owner())
	clone := handle.Clone()
	done := make(chan struct{})
	go func() {
		// Re-enter the owner loop from another goroutine
		err := clone.Post(TaskFunc(func(scope *Scope) {
			defer close(done)
			resolved, err := clone.Resolve(scope)
			require.NoError(suite.T(), err)
			require.Same(suite.T(), target, resolved)
			resolved.value++
		}))
		require.NoError(suite.T(), err)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		suite.FailNow("task posted through handle has not run")
	}
	require.NoError(suite.T(), loop.Do(context.Background(), func(scope *Scope) {
		resolved, err := handle.Resolve(scope)
		require.NoError(suite.T(), err)
		require.Equal(suite.T(), 1, resolved.value)
	}))
}

// # Description
//
// Test a handle cannot be resolved from another loop, without scope or when it is a zero handle.
func (suite *HandleUnitTestSuite) TestResolveErrors() {
	owner, stopOwner := startLoop(suite.T(), nil)
	defer stopOwner()
	other, stopOther := startLoop(suite.T(), nil)
	defer stopOther()
	handle := NewHandle(owner, &counter{})
	// Nil scope
	_, err := handle.Resolve(nil)
	wrongOwner := new(WrongOwnerError)
	require.True(suite.T(), errors.As(err, wrongOwner))
	require.Equal(suite.T(), owner.Id(), wrongOwner.Owner)
	require.Equal(suite.T(), uuid.Nil, wrongOwner.Resolver)
	// Zero scope built outside of a loop
	_, err = handle.Resolve(&Scope{})
	require.True(suite.T(), errors.As(err, wrongOwner))
	// Scope of another loop
	require.NoError(suite.T(), other.Do(context.Background(), func(scope *Scope) {
		_, err := handle.Resolve(scope)
		require.True(suite.T(), errors.As(err, wrongOwner))
		require.Equal(suite.T(), other.Id(), wrongOwner.Resolver)
		require.Contains(suite.T(), err.Error(), owner.Id().String())
	}))
	// Zero handle
	var zero Handle[counter]
	require.Equal(suite.T(), uuid.Nil, zero.Owner())
	require.ErrorIs(suite.T(), zero.Post(TaskFunc(func(scope *Scope) {})), ErrNilHandle)
	require.NoError(suite.T(), owner.Do(context.Background(), func(scope *Scope) {
		_, err := zero.Resolve(scope)
		require.ErrorIs(suite.T(), err, ErrNilHandle)
	}))
}
