package studio

import "errors"

const (
	OpDescribe = "describe"
	OpEdit     = "edit"
	OpSketch   = "sketch"
)

var (
	ErrNoText           = errors.New("AI did not return a description")
	ErrNoImageReturned  = errors.New("AI did not return an edited image")
	ErrNoSketchReturned = errors.New("AI did not return a sketch")
)

var failureMessages = map[string]string{
	OpDescribe: "Failed to generate product description.",
	OpEdit:     "Failed to edit the product image.",
	OpSketch:   "Failed to generate product sketch.",
}

// GenerationError is the single domain-level failure of a generation call.
// Error returns the message meant for the user; the cause stays reachable
// through errors.Is and errors.As.
type GenerationError struct {
	Op      string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(op string, err error) *GenerationError {
	return &GenerationError{Op: op, Message: failureMessages[op], Err: err}
}
