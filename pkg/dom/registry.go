package dom

// Registry allocates node tags and maps them to bindings.
type Registry struct {
	current  int
	bindings map[int]*Binding
	root     int
	hasRoot  bool
}

// NewRegistry returns an empty registry with no root.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[int]*Binding)}
}

// AllocateNewTag returns the next unused tag. The root tag is never
// returned.
func (r *Registry) AllocateNewTag() int {
	r.current++
	if r.hasRoot && r.current == r.root {
		r.current++
	}
	return r.current
}

// AddBinding registers b under its tag.
func (r *Registry) AddBinding(b *Binding) {
	r.bindings[b.id] = b
}

// Binding returns the binding registered under id.
func (r *Registry) Binding(id int) (*Binding, bool) {
	b, ok := r.bindings[id]
	return b, ok
}

// RemoveBinding drops id from the table.
func (r *Registry) RemoveBinding(id int) {
	delete(r.bindings, id)
}

// ClearBindings drops every binding.
func (r *Registry) ClearBindings() {
	clear(r.bindings)
}

// Reset restarts tag allocation and drops every binding. The root is kept.
func (r *Registry) Reset() {
	r.current = 0
	r.ClearBindings()
}

// Count returns the number of registered bindings.
func (r *Registry) Count() int {
	return len(r.bindings)
}

// SetRoot sets the host root tag.
func (r *Registry) SetRoot(tag int) {
	r.root = tag
	r.hasRoot = true
}

// Root returns the host root tag, if one has been set.
func (r *Registry) Root() (int, bool) {
	return r.root, r.hasRoot
}
