package dom

import (
	"fmt"
	"strconv"
)

// Method names a bridge command.
type Method string

const (
	MethodClear          Method = "clear"
	MethodCreate         Method = "create"
	MethodSetProp        Method = "setProp"
	MethodRemoveProp     Method = "removeProp"
	MethodUpdateChildren Method = "updateChildren"
	MethodEvent          Method = "event"
)

// Command is one queued bridge operation. Which fields are meaningful
// depends on Method:
//
//	clear           ID
//	create          ID, Name (local name)
//	setProp         ID, Name (key), Value
//	removeProp      ID, Name (key)
//	updateChildren  ID, Old, New
//	event           Event
type Command struct {
	Method Method
	ID     int
	Name   string
	Value  any
	Old    []int
	New    []int
	Event  HostEvent
}

// String renders the command in call notation, e.g. "setProp(3, text, hi)".
func (c Command) String() string {
	switch c.Method {
	case MethodCreate, MethodRemoveProp:
		return fmt.Sprintf("%s(%d, %s)", c.Method, c.ID, c.Name)
	case MethodSetProp:
		return fmt.Sprintf("%s(%d, %s, %v)", c.Method, c.ID, c.Name, c.Value)
	case MethodUpdateChildren:
		return fmt.Sprintf("%s(%d, %s, %s)", c.Method, c.ID, formatTags(c.Old), formatTags(c.New))
	case MethodEvent:
		return fmt.Sprintf("%s(%d, %s)", c.Method, c.Event.TargetID, c.Event.Type)
	}
	return fmt.Sprintf("%s(%d)", c.Method, c.ID)
}

func formatTags(tags []int) string {
	b := []byte{'['}
	for i, t := range tags {
		if i > 0 {
			b = append(b, ' ')
		}
		b = strconv.AppendInt(b, int64(t), 10)
	}
	return string(append(b, ']'))
}
