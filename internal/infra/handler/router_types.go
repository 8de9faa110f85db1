package handler

import "net/http"

// chiRouter allows registering handlers without importing chi in tests.
type chiRouter interface {
	Get(pattern string, handlerFn http.HandlerFunc)
	Post(pattern string, handlerFn http.HandlerFunc)
	Put(pattern string, handlerFn http.HandlerFunc)
	Delete(pattern string, handlerFn http.HandlerFunc)
}

// protect wraps fn with mw when one is configured.
func protect(mw func(http.Handler) http.Handler, fn http.HandlerFunc) http.HandlerFunc {
	if mw == nil {
		return fn
	}
	return mw(fn).ServeHTTP
}
