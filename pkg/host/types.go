package host

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hostdom/internal/errors"
)

// Host type names used by the default table.
const (
	RawText = "RCTRawText"
	View    = "RCTView"
	Text    = "RCTText"
)

// Reserved local names.
const (
	TagText     = "#text"
	TagDocument = "#document"
	TagFragment = "#fragment"
	TagTemplate = "template"
)

// TypeEntry describes how a tag name maps onto a host view.
type TypeEntry struct {
	// HostType is the view type passed to CreateView. Empty for
	// structural entries, which never produce a view.
	HostType string `yaml:"host_type"`

	// Component is an optional name of the host-side component class.
	Component string `yaml:"component,omitempty"`

	// Native marks entries whose component is itself a native host view.
	Native bool `yaml:"native,omitempty"`
}

// Structural reports whether the entry produces no host view.
func (e TypeEntry) Structural() bool {
	return e.HostType == ""
}

// TypeTable maps DOM tag names to host view types.
// It is safe for concurrent use.
type TypeTable struct {
	mu      sync.RWMutex
	entries map[string]TypeEntry
}

// NewTypeTable returns a table holding the default entries.
func NewTypeTable() *TypeTable {
	t := &TypeTable{entries: make(map[string]TypeEntry)}
	for tag, e := range defaultTypes {
		t.entries[tag] = e
	}
	return t
}

var defaultTypes = map[string]TypeEntry{
	TagText:        {HostType: RawText, Native: true},
	TagDocument:    {},
	TagFragment:    {},
	TagTemplate:    {},
	"view":         {HostType: View, Native: true},
	"div":          {HostType: View, Native: true},
	"text":         {HostType: Text, Native: true},
	"span":         {HostType: Text, Native: true},
	"image":        {HostType: "RCTImageView", Native: true},
	"img":          {HostType: "RCTImageView", Native: true},
	"scrollview":   {HostType: "RCTScrollView", Native: true},
	"textinput":    {HostType: "RCTSinglelineTextInputView", Native: true},
	"input":        {HostType: "RCTSinglelineTextInputView", Native: true},
	"safeareaview": {HostType: "RCTSafeAreaView", Native: true},
	"pressable":    {HostType: View, Component: "Pressable"},
	"button":       {HostType: View, Component: "Pressable"},
	"switch":       {HostType: "RCTSwitch", Native: true},
	"svg":          {HostType: "RNSVGSvgView", Native: true},
	"path":         {HostType: "RNSVGPath", Native: true},
	"g":            {HostType: "RNSVGGroup", Native: true},
}

// Register adds or replaces the entry for tag. With nativeHost the tag
// name itself is the host type and component names the host primitive
// backing it; otherwise component is the host type the tag renders as.
func (t *TypeTable) Register(tag, component string, nativeHost bool) {
	e := TypeEntry{HostType: component}
	if nativeHost {
		e = TypeEntry{HostType: tag, Component: component, Native: true}
	}
	t.Set(tag, e)
}

// Set stores an entry verbatim.
func (t *TypeTable) Set(tag string, e TypeEntry) {
	t.mu.Lock()
	t.entries[tag] = e
	t.mu.Unlock()
}

// Lookup returns the entry for tag.
func (t *TypeTable) Lookup(tag string) (TypeEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[tag]
	return e, ok
}

// IsStructural reports whether tag is known and produces no view.
func (t *TypeTable) IsStructural(tag string) bool {
	e, ok := t.Lookup(tag)
	return ok && e.Structural()
}

// Tags returns the registered tag names, sorted.
func (t *TypeTable) Tags() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tags := make([]string, 0, len(t.entries))
	for tag := range t.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// typeFile is the YAML layout accepted by LoadTypeTable:
//
//	types:
//	  card:
//	    host_type: RCTView
//	    component: Card
//	  map:
//	    component: RNMapView
//	    native: true
type typeFile struct {
	Types map[string]TypeEntry `yaml:"types"`
}

// LoadTypeTable reads YAML entries from r on top of the defaults.
func LoadTypeTable(r io.Reader) (*TypeTable, error) {
	var f typeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.New("E202").Wrap(err)
	}

	t := NewTypeTable()
	for tag, e := range f.Types {
		if tag == "" {
			return nil, errors.New("E202").WithDetail("empty tag name")
		}
		if e.Native && e.HostType == "" {
			e.HostType = e.Component
		}
		if e.HostType == "" && e.Component != "" {
			return nil, errors.New("E202").WithDetail(fmt.Sprintf("tag %q: component without host_type", tag))
		}
		t.Set(tag, e)
	}
	return t, nil
}

// MarshalYAML renders the table in the format LoadTypeTable reads.
func (t *TypeTable) MarshalYAML() (any, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f := typeFile{Types: make(map[string]TypeEntry, len(t.entries))}
	for tag, e := range t.entries {
		f.Types[tag] = e
	}
	return f, nil
}
