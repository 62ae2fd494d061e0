package protocol

import (
	"context"
	"reflect"
	"testing"

	"github.com/vango-dev/hostdom/pkg/host"
)

func sampleCalls() []*HostCall {
	return []*HostCall{
		{Seq: 1, Op: OpCreateView, Tag: 2, Class: host.View, Root: 1, Props: map[string]any{}},
		{Seq: 2, Op: OpCreateView, Tag: 3, Class: host.RawText, Root: 1, Props: map[string]any{"text": "hi"}},
		{Seq: 3, Op: OpUpdateView, Tag: 3, Class: host.RawText, Props: map[string]any{"text": "bye", "gone": nil}},
		{Seq: 4, Op: OpManageChildren, Tag: 2, AddTags: []int{3}, AddAt: []int{0}},
		{Seq: 5, Op: OpSetChildren, Tag: 1, Children: []int{2}},
	}
}

func TestCallsRoundTrip(t *testing.T) {
	calls := sampleCalls()
	data, err := EncodeCalls(calls)
	if err != nil {
		t.Fatalf("EncodeCalls() error = %v", err)
	}
	got, err := DecodeCalls(data)
	if err != nil {
		t.Fatalf("DecodeCalls() error = %v", err)
	}
	if !reflect.DeepEqual(got, calls) {
		t.Errorf("DecodeCalls() mismatch\n got %+v\nwant %+v", got, calls)
	}
}

func TestCallsApplyBuildsTree(t *testing.T) {
	h := host.NewMemoryHost()
	for _, c := range sampleCalls() {
		if err := c.Apply(context.Background(), h); err != nil {
			t.Fatalf("Apply(%s) error = %v", c.Op, err)
		}
	}
	want := "root#1\n  RCTView#2\n    RCTRawText#3 \"bye\"\n"
	if got := h.Dump(1); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}

func TestDecodeHostCallUnknownOp(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteByte(0x7f)
	e.WriteInt(2)
	if _, err := DecodeHostCall(NewDecoder(e.Bytes())); err == nil {
		t.Error("expected error for unknown op")
	}
	if err := (&HostCall{Op: 0x7f}).Encode(NewEncoder()); err == nil {
		t.Error("expected error encoding unknown op")
	}
}

func TestDecodeCallsTruncated(t *testing.T) {
	data, err := EncodeCalls(sampleCalls())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(data)-1; i++ {
		if _, err := DecodeCalls(data[:i]); err == nil {
			t.Fatalf("DecodeCalls(data[:%d]) succeeded", i)
		}
	}
}

func TestCallOpString(t *testing.T) {
	if OpManageChildren.String() != "manageChildren" {
		t.Errorf("String() = %q", OpManageChildren.String())
	}
	if CallOp(0x7f).String() != "CallOp(0x7f)" {
		t.Errorf("String() = %q", CallOp(0x7f).String())
	}
}
