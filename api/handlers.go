package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"pdf_merger/pdf"
)

var errFileTooLarge = errors.New("file too large")

// HandleMerge merges the uploaded files, then the URLs, in form order
func HandleMerge(c *gin.Context, config *Config) {
	logger := requestLogger(c, config)

	form, err := c.MultipartForm()
	if err != nil {
		abort(c, http.StatusBadRequest, "Expected a multipart form")
		return
	}

	files := form.File[fieldPDF]
	urls := form.Value[fieldURL]
	if len(files)+len(urls) == 0 {
		abort(c, http.StatusBadRequest, "No PDF file provided")
		return
	}

	items := make([]pdf.Item, 0, len(files)+len(urls))
	for i, header := range files {
		data, err := readUpload(header, config.MaxFileSize)
		if err != nil {
			respondError(c, logger, fmt.Errorf("%s: %w", sanitizeFilename(header.Filename), err))
			return
		}
		items = append(items, pdf.Item{Source: data, Pages: formValueAt(form.Value[fieldPages], i)})
	}
	for i, u := range urls {
		items = append(items, pdf.Item{Source: strings.TrimSpace(u), Pages: formValueAt(form.Value[fieldURLPages], i)})
	}

	optimize, _ := strconv.ParseBool(c.PostForm(fieldOptimize))
	opts := pdf.MergeOptions{
		Metadata: pdf.Metadata{
			Title:    c.PostForm(fieldTitle),
			Author:   c.PostForm(fieldAuthor),
			Creator:  c.PostForm(fieldCreator),
			Producer: c.PostForm(fieldProducer),
		},
		Optimize: optimize,
	}

	data, err := pdf.Merge(c.Request.Context(), items, opts,
		pdf.WithResolver(config.resolver()),
		pdf.WithLogger(logger),
		pdf.WithStrictCopy(config.StrictCopy),
	)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	logger.Info("merged documents", "inputs", len(items), "bytes", len(data))

	if c.PostForm(fieldFormat) == FormatBase64 {
		c.JSON(http.StatusOK, gin.H{"data": pdf.DataURIPrefix + base64.StdEncoding.EncodeToString(data)})
		return
	}

	name := ""
	if len(files) > 0 {
		name = files[0].Filename
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outputFilename(name, OutputSuffix)))
	c.Data(http.StatusOK, pdf.MimeTypePDF, data)
}

// HandlePages resolves a selector against an uploaded document
func HandlePages(c *gin.Context, config *Config) {
	logger := requestLogger(c, config)

	header, err := c.FormFile(fieldPDF)
	if err != nil {
		abort(c, http.StatusBadRequest, "No PDF file provided")
		return
	}

	selector, err := pdf.ParsePages(optionalForm(c, fieldPages))
	if err != nil {
		respondError(c, logger, err)
		return
	}

	data, err := readUpload(header, config.MaxFileSize)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	info, err := pdf.ReadInfo(data)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	indices, err := selector.Resolve(info.PageCount)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	pages := make([]int, len(indices))
	for i, idx := range indices {
		pages[i] = idx + 1
	}
	c.JSON(http.StatusOK, gin.H{
		"page_count": info.PageCount,
		"selector":   selector.String(),
		"indices":    indices,
		"pages":      pages,
		"info":       info,
	})
}

// HandleSelector parses a selector without any document
func HandleSelector(c *gin.Context, config *Config) {
	selector, err := pdf.ParsePages(optionalForm(c, fieldPages))
	if err != nil {
		respondError(c, requestLogger(c, config), err)
		return
	}

	response := gin.H{
		"all":      selector.IsAll(),
		"selector": selector.String(),
	}
	if !selector.IsAll() {
		response["spans"] = selector.Spans()
		if selector.RefCount() <= MaxSelectorRefs {
			response["refs"] = selector.Refs()
		}
	}
	c.JSON(http.StatusOK, response)
}

// statusFor maps engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pdf.ErrInvalidSelector),
		errors.Is(err, pdf.ErrInvalidRange),
		errors.Is(err, pdf.ErrPageOutOfRange),
		errors.Is(err, pdf.ErrNoPages):
		return http.StatusBadRequest
	case errors.Is(err, pdf.ErrUnsupportedInput):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pdf.ErrLoad):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pdf.ErrFetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, logger hclog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Info("request rejected", "status", status, "error", err)
	}

	abort(c, status, truncateMessage(err.Error(), MaxErrorMessageLength))
}

// truncateMessage shortens msg to at most limit bytes without splitting a rune
func truncateMessage(msg string, limit int) string {
	if len(msg) <= limit {
		return msg
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "..."
}

func abort(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message, "request_id": c.GetString(requestIDKey)})
}

func requestLogger(c *gin.Context, config *Config) hclog.Logger {
	return config.logger().With(requestIDKey, c.GetString(requestIDKey))
}

// optionalForm returns the form value, or nil when the field is absent or blank
func optionalForm(c *gin.Context, field string) any {
	value, ok := c.GetPostForm(field)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// formValueAt returns the i-th repeated form value, or nil (all pages) when missing or blank
func formValueAt(values []string, i int) any {
	if i >= len(values) || strings.TrimSpace(values[i]) == "" {
		return nil
	}
	return values[i]
}

// readUpload validates and reads an uploaded PDF
func readUpload(header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	if err := validatePDFFile(file, header, maxSize); err != nil {
		return nil, err
	}
	return io.ReadAll(file)
}

// validatePDFFile checks size and sniffs the content type
func validatePDFFile(file multipart.File, header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		return fmt.Errorf("%w: file size %d exceeds maximum allowed %d bytes", errFileTooLarge, header.Size, maxSize)
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return fmt.Errorf("failed to read file header: %w", err)
	}
	if !mtype.Is(pdf.MimeTypePDF) {
		return fmt.Errorf("%w: uploaded file is %s, not a PDF", pdf.ErrUnsupportedInput, mtype.String())
	}

	// Seek back to beginning for subsequent reads
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset file position: %w", err)
	}
	return nil
}

// outputFilename derives the download name from an uploaded file name
func outputFilename(original, suffix string) string {
	name := strings.TrimSpace(original)
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-4]
	}
	if name == "" {
		name = DefaultOutputName
	}
	return sanitizeFilename(name + "_" + suffix + ".pdf")
}

// sanitizeFilename removes path traversal attempts and dangerous characters
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "..", "")
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.TrimSpace(filepath.Base(filename))

	if filename == "" || filename == "." {
		filename = DefaultOutputName + ".pdf"
	}
	return filename
}
