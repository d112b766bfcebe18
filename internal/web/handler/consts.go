package handler

import "errors"

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath prefixes the JSON routes.
	APIPath = "/api"

	// AdminAPIPath prefixes the JSON routes of the admin area.
	AdminAPIPath = APIPath + "/admin"

	// ErrNilACDFatalLogMsg is used if app or deps pointer is nil.
	ErrNilACDFatalLogMsg = "app or handler deps are nil"
)

// ErrNilDeps is returned by Init when app or a required dependency is nil.
var ErrNilDeps = errors.New(ErrNilACDFatalLogMsg)

// ErrorResponse is the JSON body of failed API calls.
type ErrorResponse struct {
	Error string `json:"error"`
}
