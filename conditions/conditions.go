// Package conditions carries the condition expression attached to an access
// policy. Expressions are opaque here: they are compared and encoded, never
// evaluated.
package conditions

// Conditions is a serialized condition expression.
type Conditions struct {
	expr string
}

// New wraps an expression.
func New(expr string) Conditions {
	return Conditions{expr: expr}
}

// Bytes returns the UTF-8 encoding of the expression.
func (c Conditions) Bytes() []byte {
	return []byte(c.expr)
}

func (c Conditions) String() string {
	return c.expr
}

// Equal compares expressions by value.
func (c Conditions) Equal(other Conditions) bool {
	return c.expr == other.expr
}
