package dom

// SVGNamespace is the namespace URI that makes CreateElementNS return an
// SVG element.
const SVGNamespace = "http://www.w3.org/2000/svg"

// Element is a node with attributes, a style and listeners.
type Element struct {
	node
	namespace string
	style     *Style
}

// NamespaceURI returns the namespace the element was created in.
func (e *Element) NamespaceURI() string { return e.namespace }

// IsSVG reports whether the element was created in the SVG namespace.
func (e *Element) IsSVG() bool { return e.namespace == SVGNamespace }

// OwnerSVGElement returns the nearest ancestor <svg> element of an SVG
// element, or nil.
func (e *Element) OwnerSVGElement() *Element {
	if !e.IsSVG() {
		return nil
	}
	for p := e.parent; p != nil; p = p.parent {
		if el, ok := p.self.(*Element); ok && el.IsSVG() && el.localName == "svg" {
			return el
		}
	}
	return nil
}

// SetAttribute sets an attribute. Attributes are binding props, so any
// value the host understands is accepted.
func (e *Element) SetAttribute(name string, value any) {
	e.binding.SetProp(name, value)
}

// GetAttribute returns the attribute value, or nil when unset.
func (e *Element) GetAttribute(name string) any {
	v, _ := e.binding.Prop(name)
	return v
}

// HasAttribute reports whether the attribute is set.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.binding.Prop(name)
	return ok
}

// RemoveAttribute removes an attribute.
func (e *Element) RemoveAttribute(name string) {
	e.binding.RemoveProp(name)
}

// ID returns the "id" attribute as a string.
func (e *Element) ID() string {
	s, _ := e.GetAttribute("id").(string)
	return s
}

// SetID sets the "id" attribute.
func (e *Element) SetID(id string) {
	e.SetAttribute("id", id)
}

// Style returns the element's style declarations, creating them on first
// use.
func (e *Element) Style() *Style {
	if e.style == nil {
		e.style = newStyle(e.binding)
	}
	return e.style
}

// GetElementByID returns the first element in document order, starting
// with e itself, whose id attribute equals id.
func (e *Element) GetElementByID(id string) *Element {
	return findByID(&e.node, id)
}

func findByID(n *node, id string) *Element {
	if el, ok := n.self.(*Element); ok && el.ID() == id {
		return el
	}
	for _, c := range n.children {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// QuerySelector is not supported and always returns nil.
func (e *Element) QuerySelector(string) *Element { return nil }

// QuerySelectorAll is not supported and always returns nil.
func (e *Element) QuerySelectorAll(string) []*Element { return nil }
