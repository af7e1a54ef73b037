// Package autorouter registers handler methods on a ServeMux by reflection.
// A handler struct exposes one exported method per RPC operation; the method
// name becomes the path segment ("Add" on a router with method prefix
// "schedule." serves /api/v1/schedule.Add). Methods prefixed "Handle" are
// skipped so manually routed endpoints can coexist on the same struct.
package autorouter

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Middleware represents middleware function signature
type Middleware func(http.Handler) http.Handler

// RegistrationOptions configures how handlers are registered
type RegistrationOptions struct {
	Prefix       string       // URL prefix (e.g., "/api/v1/")
	MethodPrefix string       // Method prefix (e.g., "schedule." -> "schedule.Add")
	Middleware   []Middleware // Middleware chain to apply
}

// AutoRouter handles automatic registration of HTTP handlers using reflection
type AutoRouter struct {
	mux     *http.ServeMux
	options RegistrationOptions
}

// NewAutoRouter creates a new auto router
func NewAutoRouter(mux *http.ServeMux, options RegistrationOptions) *AutoRouter {
	return &AutoRouter{
		mux:     mux,
		options: options,
	}
}

// RegisterHandlers registers every method on handler that matches the
// func(http.ResponseWriter, *http.Request) shape
func (ar *AutoRouter) RegisterHandlers(handler interface{}) error {
	handlerType := reflect.TypeOf(handler)
	handlerValue := reflect.ValueOf(handler)

	if handlerType.Kind() == reflect.Ptr {
		handlerType = handlerType.Elem()
	}

	if handlerType.Kind() != reflect.Struct {
		return fmt.Errorf("handler must be a struct or pointer to struct")
	}

	numMethods := handlerValue.NumMethod()

	for i := 0; i < numMethods; i++ {
		method := handlerValue.Method(i)
		methodName := handlerValue.Type().Method(i).Name

		if !isExported(methodName) {
			continue
		}

		// "Handle" methods are wired manually elsewhere
		if strings.HasPrefix(methodName, "Handle") {
			continue
		}

		if !ar.isValidHandlerFunc(method) {
			continue
		}

		ar.registerMethod(methodName, method)
	}

	return nil
}

// RegisterHandlersWithAuth registers handlers with authentication middleware
// prepended to the chain
func (ar *AutoRouter) RegisterHandlersWithAuth(handler interface{}, authMiddleware Middleware) error {
	optionsWithAuth := ar.options
	optionsWithAuth.Middleware = append([]Middleware{authMiddleware}, ar.options.Middleware...)

	tempRouter := &AutoRouter{
		mux:     ar.mux,
		options: optionsWithAuth,
	}

	return tempRouter.RegisterHandlers(handler)
}

// isValidHandlerFunc checks if a method matches the handler signature
// func(http.ResponseWriter, *http.Request)
func (ar *AutoRouter) isValidHandlerFunc(method reflect.Value) bool {
	methodType := method.Type()

	if methodType.Kind() != reflect.Func {
		return false
	}

	if methodType.NumIn() != 2 || methodType.NumOut() != 0 {
		return false
	}

	responseWriterType := reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	if !methodType.In(0).Implements(responseWriterType) {
		return false
	}

	return methodType.In(1) == reflect.TypeOf((*http.Request)(nil))
}

// registerMethod registers a single method as an HTTP handler
func (ar *AutoRouter) registerMethod(methodName string, method reflect.Value) {
	urlPath := ar.buildURLPath(methodName)
	handlerFunc := ar.createHandlerFunc(method)
	ar.mux.HandleFunc(urlPath, ar.applyMiddleware(handlerFunc))
}

// buildURLPath constructs the URL path from method name
func (ar *AutoRouter) buildURLPath(methodName string) string {
	path := ar.options.Prefix

	if ar.options.MethodPrefix != "" {
		path += ar.options.MethodPrefix + methodName
	} else {
		path += strings.ToLower(methodName)
	}

	return path
}

// createHandlerFunc creates an http.HandlerFunc from a reflect.Value
func (ar *AutoRouter) createHandlerFunc(method reflect.Value) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method.Call([]reflect.Value{
			reflect.ValueOf(w),
			reflect.ValueOf(r),
		})
	}
}

// applyMiddleware applies all configured middleware to the handler
func (ar *AutoRouter) applyMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	if len(ar.options.Middleware) == 0 {
		return handler
	}

	h := http.Handler(handler)
	for i := len(ar.options.Middleware) - 1; i >= 0; i-- {
		h = ar.options.Middleware[i](h)
	}

	return h.ServeHTTP
}

// HandlerInfo provides information about registered handlers
type HandlerInfo struct {
	URLPath    string
	MethodName string
	HasAuth    bool
}

// GetRegisteredHandlers returns information about the handlers that would be
// registered for a struct; useful for startup logging
func (ar *AutoRouter) GetRegisteredHandlers(handler interface{}) []HandlerInfo {
	var handlers []HandlerInfo

	handlerValue := reflect.ValueOf(handler)
	numMethods := handlerValue.NumMethod()

	for i := 0; i < numMethods; i++ {
		method := handlerValue.Method(i)
		methodName := handlerValue.Type().Method(i).Name

		if !isExported(methodName) || strings.HasPrefix(methodName, "Handle") {
			continue
		}

		if !ar.isValidHandlerFunc(method) {
			continue
		}

		handlers = append(handlers, HandlerInfo{
			URLPath:    ar.buildURLPath(methodName),
			MethodName: methodName,
			HasAuth:    len(ar.options.Middleware) > 0,
		})
	}

	return handlers
}

// isExported reports whether name is an exported Go symbol
func isExported(name string) bool {
	r := rune(name[0])
	return r >= 'A' && r <= 'Z'
}
