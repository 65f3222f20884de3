package formsite

import (
	"embed"
	"errors"
	"io/fs"

	vanilla "github.com/goliatone/go-formsite/pkg/renderers/vanilla"
)

//go:embed static/*
var embeddedStatic embed.FS

// StaticFS exposes the site stylesheet together with the vanilla renderer
// assets so the application can serve them without a collectstatic step.
// Site files shadow renderer assets of the same name.
//
// Typical mount:
//
//	mux.Handle("/static/",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(formsite.StaticFS()),
//	  ),
//	)
func StaticFS() fs.FS {
	site, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		site = embeddedStatic
	}
	return LayerFS(site, vanilla.AssetsFS())
}

// LayerFS stacks file systems: a name opens from the first layer that has it.
func LayerFS(layers ...fs.FS) fs.FS {
	return layeredFS(layers)
}

type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	for _, layer := range l {
		file, err := layer.Open(name)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
