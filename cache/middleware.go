package cache

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

const jsonContentType = "application/json; charset=utf-8"

// Middleware serves public GET responses from the store and captures misses.
// It is attached per-route to the endpoints whose output only changes on
// content mutations.
func (s *Store) Middleware() gin.HandlerFunc {
	if s == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()

		if cached, found := s.Read(key); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, jsonContentType, cached)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		// Only successful JSON responses are cacheable.
		if c.Writer.Status() == http.StatusOK &&
			c.Writer.Header().Get("Content-Type") == jsonContentType {
			s.Write(key, writer.body.Bytes())
		}
	}
}
