package protocol

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ValueTag prefixes every encoded value.
type ValueTag uint8

const (
	ValueNil    ValueTag = 0x00
	ValueFalse  ValueTag = 0x01
	ValueTrue   ValueTag = 0x02
	ValueInt    ValueTag = 0x03 // zigzag varint
	ValueFloat  ValueTag = 0x04 // IEEE 754 double
	ValueString ValueTag = 0x05
	ValueList   ValueTag = 0x06 // count, then values
	ValueMap    ValueTag = 0x07 // count, then sorted key/value pairs
)

// MaxValueDepth limits the nesting of lists and maps.
const MaxValueDepth = 32

// Value errors.
var (
	ErrUnsupportedValue = errors.New("protocol: unsupported value type")
	ErrInvalidValueTag  = errors.New("protocol: invalid value tag")
	ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")
)

// depthContext tracks nesting while walking a value tree.
type depthContext struct {
	current int
	max     int
}

func (dc *depthContext) enter() error {
	if dc.current >= dc.max {
		return ErrMaxDepthExceeded
	}
	dc.current++
	return nil
}

func (dc *depthContext) leave() { dc.current-- }

// WriteValue appends v. Supported types are nil, bool, every Go integer
// kind, float32, float64, string, []any, []string, []int, []float64,
// map[string]any and map[string]string. Integers decode as int and floats
// as float64.
func (e *Encoder) WriteValue(v any) error {
	return e.writeValue(v, &depthContext{max: MaxValueDepth})
}

func (e *Encoder) writeValue(v any, dc *depthContext) error {
	switch x := v.(type) {
	case nil:
		e.WriteByte(byte(ValueNil))
	case bool:
		if x {
			e.WriteByte(byte(ValueTrue))
		} else {
			e.WriteByte(byte(ValueFalse))
		}
	case int:
		e.writeInt(int64(x))
	case int8:
		e.writeInt(int64(x))
	case int16:
		e.writeInt(int64(x))
	case int32:
		e.writeInt(int64(x))
	case int64:
		e.writeInt(x)
	case uint:
		return e.writeUint(uint64(x))
	case uint8:
		e.writeInt(int64(x))
	case uint16:
		e.writeInt(int64(x))
	case uint32:
		e.writeInt(int64(x))
	case uint64:
		return e.writeUint(x)
	case float32:
		e.writeFloat(float64(x))
	case float64:
		e.writeFloat(x)
	case string:
		e.WriteByte(byte(ValueString))
		e.WriteString(x)
	case []any:
		return e.writeList(len(x), func(i int) any { return x[i] }, dc)
	case []string:
		return e.writeList(len(x), func(i int) any { return x[i] }, dc)
	case []int:
		return e.writeList(len(x), func(i int) any { return x[i] }, dc)
	case []float64:
		return e.writeList(len(x), func(i int) any { return x[i] }, dc)
	case map[string]any:
		return e.writeMap(x, dc)
	case map[string]string:
		m := make(map[string]any, len(x))
		for k, s := range x {
			m[k] = s
		}
		return e.writeMap(m, dc)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

func (e *Encoder) writeInt(v int64) {
	e.WriteByte(byte(ValueInt))
	e.WriteSvarint(v)
}

func (e *Encoder) writeUint(v uint64) error {
	if v > math.MaxInt64 {
		return fmt.Errorf("%w: uint64 %d overflows int64", ErrUnsupportedValue, v)
	}
	e.writeInt(int64(v))
	return nil
}

func (e *Encoder) writeFloat(v float64) {
	e.WriteByte(byte(ValueFloat))
	e.WriteFloat64(v)
}

func (e *Encoder) writeList(n int, at func(int) any, dc *depthContext) error {
	if err := dc.enter(); err != nil {
		return err
	}
	defer dc.leave()
	e.WriteByte(byte(ValueList))
	e.WriteUvarint(uint64(n))
	for i := 0; i < n; i++ {
		if err := e.writeValue(at(i), dc); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeMap(m map[string]any, dc *depthContext) error {
	if err := dc.enter(); err != nil {
		return err
	}
	defer dc.leave()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.WriteByte(byte(ValueMap))
	e.WriteUvarint(uint64(len(keys)))
	for _, k := range keys {
		e.WriteString(k)
		if err := e.writeValue(m[k], dc); err != nil {
			return err
		}
	}
	return nil
}

// WriteProps appends a map value, or ValueNil for a nil map.
func (e *Encoder) WriteProps(props map[string]any) error {
	if props == nil {
		e.WriteByte(byte(ValueNil))
		return nil
	}
	return e.writeMap(props, &depthContext{max: MaxValueDepth})
}

// ReadValue reads a value written by WriteValue.
func (d *Decoder) ReadValue() (any, error) {
	return d.readValue(&depthContext{max: MaxValueDepth})
}

func (d *Decoder) readValue(dc *depthContext) (any, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch ValueTag(tag) {
	case ValueNil:
		return nil, nil
	case ValueFalse:
		return false, nil
	case ValueTrue:
		return true, nil
	case ValueInt:
		v, err := d.ReadSvarint()
		if err != nil {
			return nil, err
		}
		return int(v), nil
	case ValueFloat:
		return d.ReadFloat64()
	case ValueString:
		return d.ReadString()
	case ValueList:
		if err := dc.enter(); err != nil {
			return nil, err
		}
		defer dc.leave()
		n, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		list := make([]any, n)
		for i := range list {
			if list[i], err = d.readValue(dc); err != nil {
				return nil, err
			}
		}
		return list, nil
	case ValueMap:
		if err := dc.enter(); err != nil {
			return nil, err
		}
		defer dc.leave()
		return d.readMapBody(dc)
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidValueTag, tag)
}

func (d *Decoder) readMapBody(dc *depthContext) (map[string]any, error) {
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	m := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		if m[k], err = d.readValue(dc); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ReadProps reads a map written by WriteProps. ValueNil yields a nil map.
func (d *Decoder) ReadProps() (map[string]any, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch ValueTag(tag) {
	case ValueNil:
		return nil, nil
	case ValueMap:
		dc := &depthContext{max: MaxValueDepth}
		dc.current = 1
		return d.readMapBody(dc)
	}
	return nil, fmt.Errorf("%w: expected map, got 0x%02x", ErrInvalidValueTag, tag)
}
