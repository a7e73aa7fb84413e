package server

import "net/http"

// devHeaders are appended to every response, whatever its status.
var devHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Cache-Control", "no-store, no-cache, must-revalidate"},
}

// devHeaderWriter adds devHeaders at the moment the status line is committed,
// after the file-serving code has finished setting (or stripping) its own.
type devHeaderWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *devHeaderWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		h := w.ResponseWriter.Header()
		for _, kv := range devHeaders {
			h.Add(kv[0], kv[1])
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *devHeaderWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *devHeaderWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// withDevHeaders wraps next so that every response carries devHeaders.
func withDevHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&devHeaderWriter{ResponseWriter: w}, r)
	})
}
