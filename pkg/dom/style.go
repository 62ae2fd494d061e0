package dom

import (
	"fmt"
	"sort"
	"strings"
)

// Style holds an element's style declarations. Every write pushes the
// whole declaration map to the binding as the "style" prop.
type Style struct {
	binding *Binding
	decl    map[string]any
}

func newStyle(b *Binding) *Style {
	s := &Style{binding: b, decl: make(map[string]any)}
	if v, ok := b.Prop("style"); ok {
		if existing, ok := v.(map[string]any); ok {
			for k, v := range existing {
				s.decl[k] = v
			}
		}
	}
	return s
}

// Get returns a declaration.
func (s *Style) Get(key string) (any, bool) {
	v, ok := s.decl[key]
	return v, ok
}

// Set writes a declaration.
func (s *Style) Set(key string, value any) {
	s.decl[key] = value
	s.push()
}

// Remove deletes a declaration.
func (s *Style) Remove(key string) {
	if _, ok := s.decl[key]; !ok {
		return
	}
	delete(s.decl, key)
	s.push()
}

// Len returns the number of declarations.
func (s *Style) Len() int { return len(s.decl) }

// Map returns a copy of the declarations.
func (s *Style) Map() map[string]any {
	out := make(map[string]any, len(s.decl))
	for k, v := range s.decl {
		out[k] = v
	}
	return out
}

// SetCSSText replaces all declarations with those parsed from text, in
// "key: value; key: value" form, and pushes a single update.
func (s *Style) SetCSSText(text string) {
	clear(s.decl)
	for _, part := range strings.Split(text, ";") {
		key, value, ok := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		s.decl[key] = strings.TrimSpace(value)
	}
	s.push()
}

// CSSText renders the declarations sorted by key.
func (s *Style) CSSText() string {
	keys := make([]string, 0, len(s.decl))
	for k := range s.decl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(fmt.Sprint(s.decl[k]))
		b.WriteString(";")
	}
	return b.String()
}

func (s *Style) push() {
	s.binding.SetProp("style", s.Map())
}
