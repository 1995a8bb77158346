package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed public
var assets embed.FS

// Public returns the embedded page and client script.
func Public() fs.FS {
	sub, err := fs.Sub(assets, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

// StaticHandler serves dir from disk when set, otherwise the embedded assets.
// Missing files answer 404.
func StaticHandler(dir string) http.Handler {
	if dir != "" {
		return http.FileServer(http.Dir(dir))
	}
	return http.FileServer(http.FS(Public()))
}
