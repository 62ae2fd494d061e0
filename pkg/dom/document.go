package dom

// Document is the root of a session's tree. Its children are attached to
// the host root view.
type Document struct {
	node
}

func newDocument(s *Session) *Document {
	d := &Document{}
	d.init(d, s, d, TagDocument, DocumentNode)
	return d
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(localName string) *Element {
	return d.CreateElementNS("", localName)
}

// CreateElementNS creates a detached element in the given namespace.
func (d *Document) CreateElementNS(namespace, localName string) *Element {
	el := &Element{namespace: namespace}
	el.init(el, d.session, d, localName, ElementNode)
	return el
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) *Text {
	t := &Text{}
	t.init(t, d.session, d, TagText, TextNode)
	t.SetData(data)
	return t
}

// CreateDocumentFragment creates an empty fragment. Inserting a fragment
// moves its children and leaves it empty.
func (d *Document) CreateDocumentFragment() *DocumentFragment {
	f := &DocumentFragment{}
	f.init(f, d.session, d, TagFragment, DocumentFragmentNode)
	return f
}

// CreateEvent creates an untrusted event for DispatchEvent.
func (d *Document) CreateEvent(typ string) *Event {
	return NewEvent(typ, EventInit{})
}

// DocumentElement returns the first element child.
func (d *Document) DocumentElement() *Element {
	for _, c := range d.children {
		if el, ok := c.self.(*Element); ok {
			return el
		}
	}
	return nil
}

// GetElementByID returns the first element in document order whose id
// attribute equals id.
func (d *Document) GetElementByID(id string) *Element {
	return findByID(&d.node, id)
}

// TextContent is always empty for a document.
func (d *Document) TextContent() string { return "" }

// SetTextContent is not supported on a document.
func (d *Document) SetTextContent(string) error {
	return errorf(ErrNotSupported, "textContent on %s", &d.node)
}

// Session returns the session that owns the document.
func (d *Document) Session() *Session { return d.session }

// DocumentFragment is a parentless container used to insert several nodes
// at once. It has no host view.
type DocumentFragment struct {
	node
}

// SetTextContent is not supported on a fragment.
func (f *DocumentFragment) SetTextContent(string) error {
	return errorf(ErrNotSupported, "textContent on %s", &f.node)
}
