// Package rgen builds a route file from a directory of view files.
//
// Each included file becomes a route named after its path, index files become
// the default route of their directory and sub-directories become nested
// routes.  Bracketed names declare parameters: "[id].vugu" is ":id",
// "[id?].vugu" is ":id?" and "[...rest].vugu" is "*rest".
package rgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vugu/vgrouter/v2/routefile"
)

// DefaultFileName is the route file written by Generate when no output is set.
const DefaultFileName = "routes.toml"

// New returns a new Generator instance.
func New() *Generator {
	return &Generator{}
}

// Generator performs route generation on a given directory (and optionally sub-directories)
type Generator struct {
	dir         string                           // starting directory
	recursive   bool                             // if true we will descend into directories
	packageName string                           // fully qualified package name corresponding to dir
	output      string                           // route file to write, relative to dir unless absolute
	pathFunc    func(fileName string) string     // function derive path segment from file name
	includeFunc func(path, fileName string) bool // function to determine if a file should be included
}

// SetDir assigns the directory to start generating in.
func (g *Generator) SetDir(dir string) *Generator {
	g.dir = dir
	return g
}

// SetRecursive if passed true will enable the generator recursing
// into sub-directories.
func (g *Generator) SetRecursive(recursive bool) *Generator {
	g.recursive = recursive
	return g
}

// SetPackageName sets the fully qualified package name that corresponds
// with the directory set with SetDir.  It prefixes view identifiers.
func (g *Generator) SetPackageName(packageName string) *Generator {
	g.packageName = packageName
	return g
}

// SetOutput sets the route file Generate writes.  Relative paths are relative
// to the directory set with SetDir.
func (g *Generator) SetOutput(output string) *Generator {
	g.output = output
	return g
}

// SetPathFunc sets a function which transforms a file or directory name into
// a route path segment.  If not set, DefaultPathFunc will be used.
func (g *Generator) SetPathFunc(f func(fileName string) string) *Generator {
	g.pathFunc = f
	return g
}

// SetIncludeFunc sets the function which determines which files are included in the route map.
// The include function will be passed the path relative to the dir set by SetDir (and will be empty
// for files in that directory) and fileName will contain the base file name.  E.g. given SetDir("/a")
// "/a/b.vugu" will result in a call with ("", "b.vugu"), and "/a/b/c.vugu" will result in a call
// with ("b", "c.vugu"), "/a/b/c/d.vugu" with ("b/c", "d.vugu") and so on.
func (g *Generator) SetIncludeFunc(f func(path, fileName string) bool) *Generator {
	g.includeFunc = f
	return g
}

// DefaultPathFunc will return the fileName with any suffix removed, with
// bracketed parameter names converted.  The special case of index.vugu
// returns "" (the default route of its directory).
func DefaultPathFunc(fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	if base == "index" {
		return ""
	}
	if strings.HasPrefix(base, "[") && strings.HasSuffix(base, "]") {
		inner := base[1 : len(base)-1]
		if strings.HasPrefix(inner, "...") {
			return "*" + inner[3:]
		}
		return ":" + inner
	}
	return base
}

// DefaultIncludeFunc will return true for any file which ends with .vugu.
func DefaultIncludeFunc(path, fileName string) bool {
	return strings.HasSuffix(fileName, ".vugu")
}

// Generate builds the routes and writes them to the output route file.
func (g *Generator) Generate() error {

	f, err := g.Build()
	if err != nil {
		return err
	}

	out := g.output
	if out == "" {
		out = DefaultFileName
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(g.dir, out)
	}

	var buf bytes.Buffer
	buf.WriteString("# WARNING: This file was generated by vgrouter/rgen. Do not modify.\n\n")
	if err := routefile.Encode(&buf, f); err != nil {
		return err
	}

	return os.WriteFile(out, buf.Bytes(), 0644)
}

// Build scans the directory and returns the route file without writing it.
func (g *Generator) Build() (*routefile.File, error) {

	// to keep our sanity we need to guarantee that g.dir is absolute
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return nil, err
	}
	g.dir = dir

	// auto-detect g.packageName as needed, falling back to the directory name
	if g.packageName == "" {
		g.packageName, err = guessImportPath(dir)
		if err != nil {
			g.packageName = filepath.Base(dir)
		}
	}

	df, err := g.readDirf(g.dir)
	if err != nil {
		return nil, err
	}

	return &routefile.File{Routes: g.routes(df, true)}, nil
}

func (g *Generator) readDirf(dirPath string) (*dirf, error) {

	includeFunc := g.includeFunc
	if includeFunc == nil {
		includeFunc = DefaultIncludeFunc
	}

	fis, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(g.dir, dirPath)
	if err != nil {
		return nil, fmt.Errorf("relative path conversion failed: %w", err)
	}
	rel = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")

	ret := &dirf{
		path: rel,
	}

	for _, fi := range fis {

		if fi.IsDir() {
			if !g.recursive {
				continue
			}
			subdirf, err := g.readDirf(filepath.Join(dirPath, fi.Name()))
			if err != nil {
				return nil, err
			}
			if subdirf.empty() {
				continue
			}
			if ret.subdirs == nil {
				ret.subdirs = make(map[string]*dirf)
			}
			ret.subdirs[fi.Name()] = subdirf
			continue
		}

		if includeFunc(rel, fi.Name()) {
			ret.fileNames = append(ret.fileNames, fi.Name())
		}
	}

	sort.Strings(ret.fileNames)

	return ret, nil

}

type dirf struct {
	path      string           // path relative to g.dir
	fileNames []string         // list of included files
	subdirs   map[string]*dirf // children
}

func (df *dirf) empty() bool { return len(df.fileNames) == 0 && len(df.subdirs) == 0 }

func (g *Generator) pathSegment(name string) string {
	pf := g.pathFunc
	if pf == nil {
		pf = DefaultPathFunc
	}
	return pf(name)
}

// routes returns the routes of df.  Top level routes are absolute, nested ones
// are relative to their directory route.
func (g *Generator) routes(df *dirf, top bool) []routefile.Route {

	var ret []routefile.Route

	for _, fn := range df.fileNames {
		seg := g.pathSegment(fn)
		p := seg
		if top {
			p = "/" + seg
		}
		ret = append(ret, routefile.Route{
			Path: p,
			Name: routeName(df.path, fn),
			View: g.viewName(df.path, fn),
		})
	}

	names := make([]string, 0, len(df.subdirs))
	for name := range df.subdirs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		seg := g.pathSegment(name)
		if top {
			seg = "/" + seg
		}
		ret = append(ret, routefile.Route{
			Path:     seg,
			Children: g.routes(df.subdirs[name], false),
		})
	}

	return ret
}

// routeName derives a unique route name from the file's position,
// e.g. ("section1", "page-a.vugu") gives "section1.page-a" and an index file
// is named after its directory.
func routeName(dir, fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	base = strings.Trim(base, "[].?")
	parts := []string{}
	if dir != "" {
		for _, p := range strings.Split(dir, "/") {
			parts = append(parts, strings.Trim(p, "[].?"))
		}
	}
	if base != "index" || len(parts) == 0 {
		parts = append(parts, base)
	}
	return strings.Join(parts, ".")
}

// viewName is the fully qualified component type for a file,
// e.g. "example.com/app/section1.PageA".
func (g *Generator) viewName(dir, fileName string) string {
	pkg := g.packageName
	if dir != "" {
		pkg = pkg + "/" + dir
	}
	return pkg + "." + structName(fileName)
}

func structName(s string) string {

	// // trim file extension
	// s = strings.TrimSuffix(s, path.Ext(s))

	// // if any upper case letters we use the file name as-is
	// for _, c := range s {
	// 	if unicode.IsUpper(c) {
	// 		return s
	// 	}
	// }

	// otherwise we transform it the same way vugu does
	return fnameToGoTypeName(s)

}

func fnameToGoTypeName(s string) string {
	s = strings.TrimSuffix(s, path.Ext(s)) // remove file extension if present
	s = strings.Trim(s, "[].?")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i := range parts {
		p := parts[i]
		if len(p) > 0 {
			p = strings.ToUpper(p[:1]) + p[1:]
		}
		parts[i] = p
	}
	return strings.Join(parts, "")
}

func guessImportPath(dir string) (string, error) {

	after := ""
	lastDir := dir

	for {
		f, err := os.Open(filepath.Join(dir, "go.mod"))
		if err == nil {
			defer f.Close()
			ret, err := readModuleEntry(f)
			return ret + after, err
		}

		after = "/" + filepath.Base(dir) + after

		dir, err = filepath.Abs(filepath.Join(dir, ".."))
		if err != nil {
			return "", err
		}

		if dir == lastDir { // we hit the root dir
			return "", fmt.Errorf("no go.mod file found, cannot guess import path")
		}
		lastDir = dir
	}

}

func readModuleEntry(r io.Reader) (string, error) {

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	ret := modulePath(b)
	if ret == "" {
		return "", errors.New("unable to determine module path from go.mod")
	}

	return ret, nil
}

// modulePath returns the module path from the gomod file text.
// If it cannot find a module path, it returns an empty string.
// It is tolerant of unrelated problems in the go.mod file.
func modulePath(mod []byte) string {
	for len(mod) > 0 {
		line := mod
		mod = nil
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, mod = line[:i], line[i+1:]
		}
		if i := bytes.Index(line, slashSlash); i >= 0 {
			line = line[:i]
		}
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, moduleStr) {
			continue
		}
		line = line[len(moduleStr):]
		n := len(line)
		line = bytes.TrimSpace(line)
		if len(line) == n || len(line) == 0 {
			continue
		}

		if line[0] == '"' || line[0] == '`' {
			p, err := strconv.Unquote(string(line))
			if err != nil {
				return "" // malformed quoted string or multiline module path
			}
			return p
		}

		return string(line)
	}
	return "" // missing module path
}

var (
	slashSlash = []byte("//")
	moduleStr  = []byte("module")
)
