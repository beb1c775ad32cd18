// Package routefile reads and writes route tables declared in TOML.
//
// A route file is a list of [[route]] tables, nested with [[route.children]]:
//
//	[[route]]
//	path = "/"
//	name = "home"
//	view = "app.Home"
//
//	[[route]]
//	path = "/items"
//	view = "app.ItemsLayout"
//
//	  [[route.children]]
//	  path = ":id"
//	  name = "item"
//	  view = "app.Item"
//	  meta = { title = "Item" }
package routefile

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vugu/vgrouter/v2"
)

// File is the content of a route file.
type File struct {
	Routes []Route `toml:"route"`
}

// Route is one route declaration.
type Route struct {
	Path     string         `toml:"path"`
	Name     string         `toml:"name,omitempty"`
	View     string         `toml:"view,omitempty"`
	Redirect string         `toml:"redirect,omitempty"`
	Meta     map[string]any `toml:"meta,omitempty"`
	Children []Route        `toml:"children,omitempty"`
}

// Parse decodes a route file.  Unknown keys are an error, so that a typo does
// not silently drop a setting.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parse route file: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and decodes the route file at path.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("load route file %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func checkUndecoded(md toml.MetaData) error {
	und := md.Undecoded()
	if len(und) == 0 {
		return nil
	}
	keys := make([]string, 0, len(und))
	for _, k := range und {
		// anything below meta is free-form
		if len(k) > 0 && containsMeta(k) {
			continue
		}
		keys = append(keys, k.String())
	}
	if len(keys) == 0 {
		return nil
	}
	return fmt.Errorf("unknown keys in route file: %s", strings.Join(keys, ", "))
}

func containsMeta(k toml.Key) bool {
	for _, part := range k {
		if part == "meta" {
			return true
		}
	}
	return false
}

// Encode writes f as TOML.
func Encode(w io.Writer, f *File) error {
	return toml.NewEncoder(w).Encode(f)
}

// ViewFunc maps a view identifier from a route file to the value stored in
// RouteDefinition.View, e.g. a component constructor.
type ViewFunc func(view string) (any, error)

// Definitions converts the file into route definitions.  With a nil resolve the
// view identifiers are kept as strings.
func (f *File) Definitions(resolve ViewFunc) ([]vgrouter.RouteDefinition, error) {
	return definitions(f.Routes, resolve)
}

func definitions(routes []Route, resolve ViewFunc) ([]vgrouter.RouteDefinition, error) {
	if len(routes) == 0 {
		return nil, nil
	}
	ret := make([]vgrouter.RouteDefinition, 0, len(routes))
	for _, r := range routes {
		var view any = r.View
		if resolve != nil && r.View != "" {
			v, err := resolve(r.View)
			if err != nil {
				return nil, fmt.Errorf("route %q: view %q: %w", r.Path, r.View, err)
			}
			view = v
		}
		children, err := definitions(r.Children, resolve)
		if err != nil {
			return nil, err
		}
		ret = append(ret, vgrouter.RouteDefinition{
			Path:     r.Path,
			Name:     r.Name,
			View:     view,
			Meta:     r.Meta,
			Redirect: r.Redirect,
			Children: children,
		})
	}
	return ret, nil
}

// Table loads the route file at path and registers it in a new route table.
func Table(path string, resolve ViewFunc) (*vgrouter.RouteTable, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	defs, err := f.Definitions(resolve)
	if err != nil {
		return nil, err
	}
	return vgrouter.NewRouteTable(defs...)
}
