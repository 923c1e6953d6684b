// Package web embeds the static dashboard served by the propfolio binary.
//
// The dashboard is a single hand-written page under static/ that talks
// to the REST API and the WebSocket feed, so `propfolio serve` ships a
// usable UI with no build step.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/propfolio/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed all:static
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded static/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "static")
	if err != nil {
		log.Fatalf("web.DistFS: %v", err)
	}
	return sub
}
