package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static templates
var assets embed.FS

// templateFS returns the page templates rooted at templates/.
func templateFS() (http.FileSystem, error) {
	sub, err := fs.Sub(assets, "templates")
	if err != nil {
		return nil, err
	}

	return http.FS(sub), nil
}

// staticFS returns the stylesheets and images rooted at static/.
func staticFS() (fs.FS, error) {
	return fs.Sub(assets, "static")
}
