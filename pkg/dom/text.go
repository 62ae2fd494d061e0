package dom

// Text is a text node. Its data is mirrored into the "text" prop.
type Text struct {
	node
	data string
}

// Data returns the text.
func (t *Text) Data() string { return t.data }

// SetData replaces the text and queues a host update.
func (t *Text) SetData(data string) {
	t.data = data
	t.binding.SetProp("text", data)
}

// TextContent returns the text.
func (t *Text) TextContent() string { return t.data }

// SetTextContent is SetData.
func (t *Text) SetTextContent(text string) error {
	t.SetData(text)
	return nil
}

// AppendChild always fails: text nodes have no children.
func (t *Text) AppendChild(Node) error {
	return errorf(ErrHierarchy, "text nodes cannot have children")
}

// InsertBefore always fails: text nodes have no children.
func (t *Text) InsertBefore(Node, Node) error {
	return errorf(ErrHierarchy, "text nodes cannot have children")
}

// ReplaceChild always fails: text nodes have no children.
func (t *Text) ReplaceChild(Node, Node) error {
	return errorf(ErrHierarchy, "text nodes cannot have children")
}
