package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerFirst(t *testing.T) {
	tests := map[string]string{
		"Name":       "name",
		"ID":         "id",
		"URLPath":    "urlPath",
		"HTTPServer": "httpServer",
		"name":       "name",
		"":           "",
		"X":          "x",
		"Über":       "über",
	}
	for in, want := range tests {
		assert.Equal(t, want, LowerFirst(in), in)
	}
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "Name", UpperFirst("name"))
	assert.Equal(t, "", UpperFirst(""))
	assert.Equal(t, "ID", UpperFirst("ID"))
}

func TestIdent(t *testing.T) {
	assert.Equal(t, "type_", Ident("type"))
	assert.Equal(t, "func_", Ident("func"))
	assert.Equal(t, "name", Ident("name"))
}

func TestAccess(t *testing.T) {
	assert.Equal(t, "Tags", Access("tags", true))
	assert.Equal(t, "tagsOf", Access("TagsOf", false))
	assert.Equal(t, "idFunc", Access("IDFunc", false))
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("ID"), Key("Id"))
}
