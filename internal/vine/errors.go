package vine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrParse indicates a syntax error in VINE text.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates a structural constraint violation.
	ErrValidation = errors.New("validation error")

	// ErrEngine indicates any other invariant breach reported by an operation.
	ErrEngine = errors.New("engine error")
)

// Causes carried by EngineError.
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskExists         = errors.New("task already exists")
	ErrEmptyGraph         = errors.New("graph has no tasks")
	ErrRefHasNoStatus     = errors.New("reference tasks have no status")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidVersion     = errors.New("invalid version")
	ErrInvalidMetadata    = errors.New("invalid metadata")
	ErrWrongVariant       = errors.New("field not supported by task kind")
	ErrDependencyExists   = errors.New("dependency already exists")
	ErrDependencyNotFound = errors.New("dependency not found")
	ErrDanglingOrder      = errors.New("order references unknown task")
	ErrInconsistentGraph  = errors.New("tasks and order disagree")
)

// ParseError reports a syntax error at a 1-based line of the input.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: line %d: %s", ErrParse, e.Line, e.Msg)
}

// Unwrap returns ErrParse.
func (e *ParseError) Unwrap() error { return ErrParse }

// Constraint names a structural rule checked by Validate.
type Constraint string

const (
	ConstraintAtLeastOneTask      Constraint = "at-least-one-task"
	ConstraintValidDependencyRefs Constraint = "valid-dependency-refs"
	ConstraintNoCycles            Constraint = "no-cycles"
	ConstraintNoIslands           Constraint = "no-islands"
	ConstraintRefURIRequired      Constraint = "ref-uri-required"
)

// ValidationDetails is the constraint-specific payload of a ValidationError.
// Each constraint has exactly one details type.
type ValidationDetails interface {
	Constraint() Constraint
	describe() string
}

// EmptyGraphDetails accompanies at-least-one-task.
type EmptyGraphDetails struct{}

func (EmptyGraphDetails) Constraint() Constraint { return ConstraintAtLeastOneTask }
func (EmptyGraphDetails) describe() string       { return "graph must contain at least one task" }

// MissingDependencyDetails accompanies valid-dependency-refs.
type MissingDependencyDetails struct {
	TaskID       string
	DependencyID string
}

func (MissingDependencyDetails) Constraint() Constraint { return ConstraintValidDependencyRefs }
func (d MissingDependencyDetails) describe() string {
	return fmt.Sprintf("task %q depends on unknown task %q", d.TaskID, d.DependencyID)
}

// CycleDetails accompanies no-cycles. Path starts and ends with the same id.
type CycleDetails struct {
	Path []string
}

func (CycleDetails) Constraint() Constraint { return ConstraintNoCycles }
func (d CycleDetails) describe() string {
	return "cycle detected: " + strings.Join(d.Path, " -> ")
}

// IslandDetails accompanies no-islands. IDs are in document order.
type IslandDetails struct {
	IDs []string
}

func (IslandDetails) Constraint() Constraint { return ConstraintNoIslands }
func (d IslandDetails) describe() string {
	return "tasks not reachable from root: " + strings.Join(d.IDs, ", ")
}

// MissingRefURIDetails accompanies ref-uri-required.
type MissingRefURIDetails struct {
	TaskID string
}

func (MissingRefURIDetails) Constraint() Constraint { return ConstraintRefURIRequired }
func (d MissingRefURIDetails) describe() string {
	return fmt.Sprintf("reference task %q has no vine URI", d.TaskID)
}

// ValidationError reports the first structural constraint a graph violates.
type ValidationError struct {
	Constraint Constraint
	Details    ValidationDetails
}

func newValidationError(details ValidationDetails) *ValidationError {
	return &ValidationError{Constraint: details.Constraint(), Details: details}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Details == nil {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Constraint)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Constraint, e.Details.describe())
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// EngineError reports a failed query or mutation. Err holds the cause, such
// as ErrTaskNotFound.
type EngineError struct {
	Op  string
	ID  string
	Err error
}

func (e *EngineError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(ErrEngine.Error())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " %q", e.ID)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *EngineError) Unwrap() error { return e.Err }

// Is reports whether target is ErrEngine.
func (e *EngineError) Is(target error) bool { return target == ErrEngine }
