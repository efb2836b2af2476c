package grapherror

// Category represents the main error category for visualization operations
type Category string

const (
	// CategoryFetch indicates the dataset request to the search backend failed.
	// Fatal to the current search: no partial graph is ever shown.
	CategoryFetch Category = "fetch"

	// CategoryValidation indicates malformed search parameters or dataset content
	CategoryValidation Category = "validation"

	// CategoryAsset indicates a node's visual asset could not be resolved.
	// Never fatal: the node is revealed with a placeholder.
	CategoryAsset Category = "asset"

	// CategoryWebSocket indicates WebSocket connection/communication errors
	CategoryWebSocket Category = "websocket"

	// CategoryRender indicates a failure writing an SVG or PNG surface
	CategoryRender Category = "render"

	// CategoryInternal indicates internal server errors
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Fetch subcategories
const (
	SubcategoryFetchNetwork = "network"
	SubcategoryFetchStatus  = "http_status"
	SubcategoryFetchDecode  = "decode"
	SubcategoryFetchFile    = "file"
)

// Validation subcategories
const (
	SubcategoryValidationDelay   = "delay"
	SubcategoryValidationTarget  = "target"
	SubcategoryValidationMethod  = "method"
	SubcategoryValidationOption  = "option"
	SubcategoryValidationDataset = "dataset"
)

// WebSocket subcategories
const (
	SubcategoryWSRead    = "read"
	SubcategoryWSWrite   = "write"
	SubcategoryWSUpgrade = "upgrade"
	SubcategoryWSMessage = "message"
)
