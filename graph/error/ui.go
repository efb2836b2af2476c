package grapherror

import "fmt"

// defaultMessages provides user-friendly error messages for each category
var defaultMessages = map[Category]string{
	CategoryFetch:      "Could not load the search result - please try again",
	CategoryValidation: "Invalid search parameters - please check the form and try again",
	CategoryAsset:      "Element image unavailable",
	CategoryWebSocket:  "Connection error - attempting to reconnect...",
	CategoryRender:     "Failed to render the graph",
	CategoryInternal:   "An internal error occurred - please try again",
}

// ToUIMessage converts the error to a user-friendly message suitable for UI display
func (e *GraphError) ToUIMessage() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// ToMeta formats the error for inclusion in an outbound error message or event
func (e *GraphError) ToMeta() map[string]string {
	meta := map[string]string{
		"error":       e.Error(),
		"category":    string(e.Category),
		"description": e.ToUIMessage(),
		"timestamp":   e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}

	if e.Subcategory != "" {
		meta["subcategory"] = e.Subcategory
	}
	if len(e.Context) > 0 {
		meta["context"] = fmt.Sprintf("%v", e.Context)
	}
	return meta
}

// ToLogFields converts error to structured log fields for logger.Errorw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}
	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

// UIMessage returns the user-facing message for any error: GraphErrors use
// their category text, anything else falls back to the internal message.
func UIMessage(err error) string {
	if err == nil {
		return ""
	}
	if ge, ok := As(err); ok {
		return ge.ToUIMessage()
	}
	return defaultMessages[CategoryInternal]
}
