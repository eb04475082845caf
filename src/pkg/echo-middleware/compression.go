package echomw

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
)

type brotliResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *brotliResponseWriter) WriteHeader(code int) {
	w.Header().Del(echo.HeaderContentLength)
	w.ResponseWriter.WriteHeader(code)
}

func (w *brotliResponseWriter) Write(b []byte) (int, error) {
	if w.Header().Get(echo.HeaderContentType) == "" {
		w.Header().Set(echo.HeaderContentType, http.DetectContentType(b))
	}
	return w.Writer.Write(b)
}

func (w *brotliResponseWriter) Flush() {
	if bw, ok := w.Writer.(*brotli.Writer); ok {
		_ = bw.Flush()
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *brotliResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

// Brotli compresses responses for clients that accept "br".
func Brotli(level int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := c.Response()
			res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)
			if !strings.Contains(c.Request().Header.Get(echo.HeaderAcceptEncoding), "br") {
				return next(c)
			}

			original := res.Writer
			compressor := brotli.NewWriterLevel(original, level)
			res.Header().Set(echo.HeaderContentEncoding, "br")
			res.Writer = &brotliResponseWriter{Writer: compressor, ResponseWriter: original}

			defer func() {
				if res.Size == 0 {
					// Nothing was written: do not emit an empty brotli stream.
					if res.Header().Get(echo.HeaderContentEncoding) == "br" {
						res.Header().Del(echo.HeaderContentEncoding)
					}
					compressor.Reset(io.Discard)
				}
				_ = compressor.Close()
				res.Writer = original
			}()

			return next(c)
		}
	}
}
