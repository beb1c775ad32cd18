package routefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vugu/vgrouter/v2"
)

const sample = `
[[route]]
path = "/"
name = "home"
view = "app.Home"

[[route]]
path = "/items"
view = "app.ItemsLayout"

  [[route.children]]
  path = ""
  name = "items"
  view = "app.ItemList"

  [[route.children]]
  path = ":id"
  name = "item"
  view = "app.Item"
  meta = { title = "Item", auth = true }

[[route]]
path = "/old-items/:id"
redirect = "/items/:id"
`

func TestParseAndMatch(t *testing.T) {

	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Routes, 3)
	require.Len(t, f.Routes[1].Children, 2)

	defs, err := f.Definitions(nil)
	require.NoError(t, err)

	tbl, err := vgrouter.NewRouteTable(defs...)
	require.NoError(t, err)

	rr, err := tbl.Match(vgrouter.MustParseLocation("/items/42"))
	require.NoError(t, err)
	assert.Equal(t, "item", rr.Name)
	assert.Equal(t, "app.Item", rr.View())
	assert.Equal(t, "42", rr.Params.ByName("id"))
	title, ok := rr.MetaValue("title")
	assert.True(t, ok)
	assert.Equal(t, "Item", title)

	rr, err = tbl.Match(vgrouter.MustParseLocation("/items"))
	require.NoError(t, err)
	assert.Equal(t, "items", rr.Name)
	assert.Len(t, rr.Matched, 2)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("[[route]]\npath = \"/\"\nviews = \"x\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "views")
}

func TestDefinitionsResolve(t *testing.T) {

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	type comp struct{ name string }
	_, err = f.Definitions(func(v string) (any, error) {
		if v == "app.Item" {
			return nil, errors.New("not registered")
		}
		return &comp{name: v}, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.Item")

	defs, err := f.Definitions(func(v string) (any, error) { return &comp{name: v}, nil })
	require.NoError(t, err)
	assert.Equal(t, &comp{name: "app.Home"}, defs[0].View)
}

func TestEncodeLoadRoundTrip(t *testing.T) {

	in := &File{Routes: []Route{
		{Path: "/", Name: "home", View: "Index"},
		{Path: "/section1", Children: []Route{
			{Path: "", Name: "section1", View: "section1.Index"},
			{Path: "page-a", Name: "section1.page-a", View: "section1.PageA"},
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))

	p := filepath.Join(t.TempDir(), "routes.toml")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))

	out, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	tbl, err := Table(p, nil)
	require.NoError(t, err)
	loc, err := tbl.URL("section1.page-a", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "/section1/page-a", loc.Path)
}

func TestTableDuplicateName(t *testing.T) {
	p := filepath.Join(t.TempDir(), "routes.toml")
	require.NoError(t, os.WriteFile(p, []byte("[[route]]\npath=\"/a\"\nname=\"x\"\n[[route]]\npath=\"/b\"\nname=\"x\"\n"), 0644))
	_, err := Table(p, nil)
	assert.ErrorIs(t, err, vgrouter.ErrDuplicateRouteName)
}
