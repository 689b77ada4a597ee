package pdf

import "time"

const (
	// DefaultPlaceholder is the symbol standing for the last page in selector strings
	DefaultPlaceholder = "$"

	// DefaultProducer is stamped on every output document when it is first created
	DefaultProducer = "pdf_merger"

	// AllPages is the selector keyword for the entire document
	AllPages = "all"

	// DataURIPrefix prefixes base64 output produced with data URIs enabled
	DataURIPrefix = "data:application/pdf;base64,"

	// MimeTypePDF is the content type every loaded source must sniff as
	MimeTypePDF = "application/pdf"

	// DefaultOutputPermissions for files written by Save
	DefaultOutputPermissions = 0644
)

// Fetch limits
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxInputSize = 64 * 1024 * 1024 // 64MB
)
