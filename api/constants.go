package api

const (
	// RequestIDHeader carries the id assigned to every request
	RequestIDHeader = "X-Request-ID"

	// MaxErrorMessageLength truncates error messages returned to clients
	MaxErrorMessageLength = 200

	// MaxSelectorRefs is the largest expansion the selector endpoint returns as refs
	MaxSelectorRefs = 10000

	// DefaultOutputName is used when no uploaded file name is available
	DefaultOutputName = "document"

	// OutputSuffix is appended to the first input's name for merge downloads
	OutputSuffix = "merged"

	// FormatBase64 makes the merge endpoint answer with a JSON data URI
	FormatBase64 = "base64"

	requestIDKey = "request_id"
)

// Multipart form fields
const (
	fieldPDF      = "pdf"
	fieldPages    = "pages"
	fieldURL      = "url"
	fieldURLPages = "url_pages"
	fieldTitle    = "title"
	fieldAuthor   = "author"
	fieldCreator  = "creator"
	fieldProducer = "producer"
	fieldOptimize = "optimize"
	fieldFormat   = "format"
)
