// Package web embeds the newsdesk static site shell.
//
// The shell reads the exporter's data/*.json files at runtime, so the same
// files work when published by any static host.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/newsdesk/web"
//	fs := web.SiteFS()  // returns io/fs.FS rooted at site/
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:site
var site embed.FS

// SiteFS returns a filesystem rooted at the embedded site/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func SiteFS() fs.FS {
	sub, err := fs.Sub(site, "site")
	if err != nil {
		panic("web: " + err.Error())
	}
	return sub
}
