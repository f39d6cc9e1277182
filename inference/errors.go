package inference

import (
	"fmt"
	"strings"
)

// AttributeInferenceError means the attribute provably does not exist on
// Target given what is known. Callers routinely recover from it.
type AttributeInferenceError struct {
	Target    Node
	Attribute string
	Context   *Context
	Message   string
	Cause     error
}

func (e *AttributeInferenceError) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		fmt.Fprintf(&b, "%s has no attribute %q", describe(e.Target), e.Attribute)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *AttributeInferenceError) Unwrap() error { return e.Cause }

// InferenceError means a value exists but its meaning could not be
// determined.
type InferenceError struct {
	Node    Node
	Context *Context
	Message string
	Cause   error
}

func (e *InferenceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "inference failed"
	}
	s := fmt.Sprintf("%s: %s", describe(e.Node), msg)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *InferenceError) Unwrap() error { return e.Cause }

// NameInferenceError is raised when a name has no binding in any scope.
type NameInferenceError struct {
	Name  string
	Scope Node
}

func (e *NameInferenceError) Error() string {
	return fmt.Sprintf("name %q is not defined in %s", e.Name, describe(e.Scope))
}

// SuperError reports malformed super usage. It never leaves Super lookups
// as is; callers see it as the Cause of an AttributeInferenceError.
type SuperError struct {
	Super   *Super
	Message string
}

func (e *SuperError) Error() string {
	return e.Message
}

// MroError reports a class hierarchy that cannot be linearized.
type MroError struct {
	Class   *ClassDef
	Message string
}

func (e *MroError) Error() string {
	return fmt.Sprintf("cannot compute MRO of %s: %s", describe(e.Class), e.Message)
}

// IsAttributeError reports the outermost kind of err only: an
// InferenceError caused by a missing attribute is not an attribute error.
// Use errors.As to search the chain.
func IsAttributeError(err error) bool {
	_, ok := err.(*AttributeInferenceError)
	return ok
}

// IsInferenceError matches InferenceError and NameInferenceError, outermost
// kind only.
func IsInferenceError(err error) bool {
	switch err.(type) {
	case *InferenceError, *NameInferenceError:
		return true
	default:
		return false
	}
}

func describe(n Node) string {
	if n == nil {
		return "<nil>"
	}
	if s, ok := n.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", n)
}
