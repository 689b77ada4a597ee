package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"pdf_merger/pdf"
)

// Config holds application configuration
type Config struct {
	Port         string
	MaxFileSize  int64
	FetchTimeout time.Duration
	AllowRemote  bool
	StrictCopy   bool
	Logger       hclog.Logger
}

func (c *Config) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

// resolver accepts uploaded bytes and, when allowed, http(s) URLs. Server side
// file paths are never readable through the API.
func (c *Config) resolver() pdf.Resolver {
	opts := []pdf.ResolverOption{pdf.WithoutFiles()}
	if c.MaxFileSize > 0 {
		opts = append(opts, pdf.WithMaxSize(c.MaxFileSize))
	}
	if c.FetchTimeout > 0 {
		opts = append(opts, pdf.WithFetchTimeout(c.FetchTimeout))
	}
	if !c.AllowRemote {
		opts = append(opts, pdf.WithoutRemote())
	}
	return pdf.NewResolver(opts...)
}

func SetupRoutes(r *gin.Engine, config *Config) {
	r.Use(requestID())

	apiGroup := r.Group("/api/pdf")
	{
		apiGroup.POST("/merge", func(c *gin.Context) { HandleMerge(c, config) })
		apiGroup.POST("/pages", func(c *gin.Context) { HandlePages(c, config) })
		apiGroup.POST("/selector", func(c *gin.Context) { HandleSelector(c, config) })
	}
}

// requestID tags every request with a uuid, echoed in the response headers
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
