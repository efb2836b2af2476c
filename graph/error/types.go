package grapherror

import (
	"time"

	"github.com/teranos/recipeviz/errors"
)

// GraphError represents an error in the visualization pipeline with structured context
type GraphError struct {
	Err         error                  // Underlying error
	Category    Category               // Main category
	Subcategory string                 // Optional subcategory
	UserMessage string                 // User-friendly message for UI display
	Context     map[string]interface{} // Additional context for debugging
	Timestamp   time.Time              // When the error occurred
}

// Error implements the error interface
func (e *GraphError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *GraphError) Unwrap() error {
	return e.Err
}

// New creates a new GraphError with the specified category and messages
func New(category Category, err error, userMsg string) *GraphError {
	return &GraphError{
		Err:         err,
		Category:    category,
		UserMessage: userMsg,
		Context:     make(map[string]interface{}),
		Timestamp:   time.Now(),
	}
}

// Newf creates a new GraphError with a formatted error message
func Newf(category Category, userMsg, format string, args ...interface{}) *GraphError {
	return New(category, errors.Newf(format, args...), userMsg)
}

// WithSubcategory adds a subcategory to the error
func (e *GraphError) WithSubcategory(sub string) *GraphError {
	e.Subcategory = sub
	return e
}

// WithContext adds a context key-value pair for debugging
func (e *GraphError) WithContext(key string, value interface{}) *GraphError {
	e.Context[key] = value
	return e
}

// As extracts a *GraphError from an error chain
func As(err error) (*GraphError, bool) {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsCategory reports whether err carries a GraphError of the given category
func IsCategory(err error, cat Category) bool {
	ge, ok := As(err)
	return ok && ge.Category == cat
}
