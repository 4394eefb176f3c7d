package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathNotFound       = errors.New("path not found")
	ErrMalformedTask      = errors.New("malformed task")
	ErrTaskNotFound       = errors.New("task not found")
	ErrDanglingDependency = errors.New("dangling dependency")
	ErrNameCollision      = errors.New("name collision")
	ErrInvalidComplexity  = errors.New("invalid complexity")
	ErrInvalidDomain      = errors.New("invalid domain")
)

// CycleError reports a hard-dependency cycle and names its members.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return "cycle detected"
	}
	return "cycle detected: " + strings.Join(e.Members, " -> ")
}

// NewCycleError builds a CycleError from the implicated task names.
func NewCycleError(members []string) *CycleError {
	return &CycleError{Members: members}
}

// IsCycle reports whether err is (or wraps) a CycleError and returns it.
func IsCycle(err error) (*CycleError, bool) {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// PathNotFound wraps ErrPathNotFound with the offending path.
func PathNotFound(path string) error {
	return fmt.Errorf("%w: %s", ErrPathNotFound, path)
}

// TaskNotFound wraps ErrTaskNotFound with the missing task name.
func TaskNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrTaskNotFound, name)
}
