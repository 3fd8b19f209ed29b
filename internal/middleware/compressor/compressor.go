package compressor

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/Popolzen/linkguard/internal/model"
	"github.com/gin-gonic/gin"
)

// DefaultContentTypes сжимаются, если клиент принимает gzip
var DefaultContentTypes = []string{"application/json", "text/html", "text/plain"}

type gzipWriter struct {
	gin.ResponseWriter
	writer     *gzip.Writer
	types      []string
	compressed bool
	decided    bool
}

// decide выбирает режим по Content-Type при первой записи
func (g *gzipWriter) decide() {
	if g.decided {
		return
	}
	g.decided = true
	contentType := g.Header().Get("Content-Type")
	for _, t := range g.types {
		if strings.Contains(contentType, t) {
			g.Header().Set("Content-Encoding", "gzip")
			g.Header().Add("Vary", "Accept-Encoding")
			g.Header().Del("Content-Length")
			g.compressed = true
			return
		}
	}
}

func (g *gzipWriter) Write(b []byte) (int, error) {
	g.decide()
	if g.compressed {
		return g.writer.Write(b)
	}
	return g.ResponseWriter.Write(b)
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipWriter) Close() error {
	if g.compressed {
		return g.writer.Close()
	}
	return nil
}

// Compresser распаковывает gzip-запросы и сжимает ответы с типами из types
// (по умолчанию DefaultContentTypes).
func Compresser(types ...string) gin.HandlerFunc {
	if len(types) == 0 {
		types = DefaultContentTypes
	}
	return func(c *gin.Context) {
		// 1. Распаковка входящего запроса
		if strings.Contains(strings.ToLower(c.Request.Header.Get("Content-Encoding")), "gzip") {
			newReader, err := gzip.NewReader(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{
					Error: "Request body is not valid gzip",
					Code:  "invalid_encoding",
				})
				return
			}
			c.Request.Body = newReader
			c.Request.Header.Del("Content-Encoding")
			defer newReader.Close()
		}

		// 2. Подготовка сжатия ответа
		if strings.Contains(strings.ToLower(c.Request.Header.Get("Accept-Encoding")), "gzip") {
			gzipResp := &gzipWriter{
				ResponseWriter: c.Writer,
				writer:         gzip.NewWriter(c.Writer),
				types:          types,
			}
			c.Writer = gzipResp
			defer gzipResp.Close()
		}

		c.Next()
	}
}
