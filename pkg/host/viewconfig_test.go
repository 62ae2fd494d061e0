package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessPropsFiltersAndFlattens(t *testing.T) {
	valid := map[string]AttributeConfig{
		"style":  {Nested: map[string]AttributeConfig{"width": {}, "color": {}}},
		"testID": {},
		"count":  {Process: func(v any) any { return v.(int) * 2 }},
	}

	got := ProcessProps(Props{
		"style":   map[string]any{"width": 10, "color": "red", "bogus": 1},
		"testID":  "root",
		"count":   3,
		"onPress": "ignored",
	}, valid)

	assert.Equal(t, Props{
		"style":  map[string]any{"width": 10, "color": "red"},
		"width":  10,
		"color":  "red",
		"testID": "root",
		"count":  6,
	}, got)
}

func TestProcessPropsNilTableAcceptsAll(t *testing.T) {
	got := ProcessProps(Props{"a": 1, "b": nil}, nil)
	assert.Equal(t, Props{"a": 1, "b": nil}, got)
}

func TestProcessPropsKeepsRemovals(t *testing.T) {
	got := ProcessProps(Props{"testID": nil}, map[string]AttributeConfig{
		"testID": {Process: func(v any) any { panic("must not process nil") }},
	})
	assert.Equal(t, Props{"testID": nil}, got)
}

func TestViewConfigsLookup(t *testing.T) {
	vc := NewViewConfigs()

	raw := vc.Lookup(RawText)
	assert.Equal(t, RawText, raw.ClassName)
	assert.Contains(t, raw.ValidAttributes, "text")

	unknown := vc.Lookup("RNCustom")
	assert.Equal(t, "RNCustom", unknown.ClassName)
	assert.Nil(t, unknown.ValidAttributes)

	vc.Register("RNCustom", ViewConfig{ValidAttributes: map[string]AttributeConfig{"x": {}}})
	assert.Equal(t, "RNCustom", vc.Lookup("RNCustom").ClassName)
	assert.Contains(t, vc.Lookup("RNCustom").ValidAttributes, "x")
}
