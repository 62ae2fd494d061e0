package protocol

import (
	"context"
	"fmt"

	"github.com/vango-dev/hostdom/pkg/host"
)

// CallOp identifies a host call.
type CallOp uint8

const (
	OpCreateView     CallOp = 0x01
	OpUpdateView     CallOp = 0x02
	OpManageChildren CallOp = 0x03
	OpSetChildren    CallOp = 0x04
)

func (op CallOp) String() string {
	switch op {
	case OpCreateView:
		return host.OpCreateView
	case OpUpdateView:
		return host.OpUpdateView
	case OpManageChildren:
		return host.OpManageChildren
	case OpSetChildren:
		return host.OpSetChildren
	}
	return fmt.Sprintf("CallOp(0x%02x)", uint8(op))
}

// HostCall is one host call with the sequence number it was sent under.
// Which fields are meaningful depends on Op:
//
//	createView:     Tag, Class (host type), Root, Props
//	updateView:     Tag, Class (view class), Props
//	manageChildren: Tag (container), MoveFrom, MoveTo, AddTags, AddAt, RemoveAt
//	setChildren:    Tag (container), Children
type HostCall struct {
	Seq      uint64
	Op       CallOp
	Tag      int
	Class    string
	Root     int
	Props    map[string]any
	MoveFrom []int
	MoveTo   []int
	AddTags  []int
	AddAt    []int
	RemoveAt []int
	Children []int
}

// Apply performs the call against h.
func (c *HostCall) Apply(ctx context.Context, h host.Host) error {
	switch c.Op {
	case OpCreateView:
		return h.CreateView(ctx, c.Tag, c.Class, c.Root, c.Props)
	case OpUpdateView:
		return h.UpdateView(ctx, c.Tag, c.Class, c.Props)
	case OpManageChildren:
		return h.ManageChildren(ctx, c.Tag, c.MoveFrom, c.MoveTo, c.AddTags, c.AddAt, c.RemoveAt)
	case OpSetChildren:
		return h.SetChildren(ctx, c.Tag, c.Children)
	}
	return fmt.Errorf("protocol: cannot apply %s", c.Op)
}

// Encode writes the call to e.
func (c *HostCall) Encode(e *Encoder) error {
	e.WriteUvarint(c.Seq)
	e.WriteByte(byte(c.Op))
	e.WriteInt(c.Tag)
	switch c.Op {
	case OpCreateView:
		e.WriteString(c.Class)
		e.WriteInt(c.Root)
		return e.WriteProps(c.Props)
	case OpUpdateView:
		e.WriteString(c.Class)
		return e.WriteProps(c.Props)
	case OpManageChildren:
		e.WriteInts(c.MoveFrom)
		e.WriteInts(c.MoveTo)
		e.WriteInts(c.AddTags)
		e.WriteInts(c.AddAt)
		e.WriteInts(c.RemoveAt)
	case OpSetChildren:
		e.WriteInts(c.Children)
	default:
		return fmt.Errorf("protocol: cannot encode %s", c.Op)
	}
	return nil
}

// DecodeHostCall reads one call.
func DecodeHostCall(d *Decoder) (*HostCall, error) {
	var c HostCall
	var err error
	if c.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	op, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c.Op = CallOp(op)
	if c.Tag, err = d.ReadInt(); err != nil {
		return nil, err
	}

	switch c.Op {
	case OpCreateView:
		if c.Class, err = d.ReadString(); err != nil {
			return nil, err
		}
		if c.Root, err = d.ReadInt(); err != nil {
			return nil, err
		}
		c.Props, err = d.ReadProps()
	case OpUpdateView:
		if c.Class, err = d.ReadString(); err != nil {
			return nil, err
		}
		c.Props, err = d.ReadProps()
	case OpManageChildren:
		for _, dst := range []*[]int{&c.MoveFrom, &c.MoveTo, &c.AddTags, &c.AddAt, &c.RemoveAt} {
			if *dst, err = d.ReadInts(); err != nil {
				return nil, err
			}
		}
	case OpSetChildren:
		c.Children, err = d.ReadInts()
	default:
		return nil, fmt.Errorf("protocol: unknown call op 0x%02x", op)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EncodeCalls encodes a batch of calls as a Calls frame payload.
func EncodeCalls(calls []*HostCall) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(uint64(len(calls)))
	for _, c := range calls {
		if err := c.Encode(e); err != nil {
			return nil, err
		}
	}
	return e.Bytes(), nil
}

// DecodeCalls decodes a Calls frame payload.
func DecodeCalls(data []byte) ([]*HostCall, error) {
	d := NewDecoder(data)
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	calls := make([]*HostCall, 0, n)
	for i := 0; i < n; i++ {
		c, err := DecodeHostCall(d)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		calls = append(calls, c)
	}
	return calls, d.Finish()
}
