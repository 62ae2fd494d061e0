package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	f := &Frame{Type: FrameCalls, Flags: FlagReplay, Payload: []byte{1, 2, 3}}
	data := f.Encode()
	if want := []byte{0x02, 0x01, 0x00, 0x03, 1, 2, 3}; !bytes.Equal(data, want) {
		t.Fatalf("Encode() = %v, want %v", data, want)
	}

	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if got.Type != FrameCalls || !got.Flags.Has(FlagReplay) || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("DecodeFrame() = %+v", got)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	if _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short header err = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x01, 0x00, 0x00, 0x05, 1}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short payload err = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x09, 0x00, 0x00, 0x00}); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("bad type err = %v", err)
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		{Type: FrameHandshake, Payload: []byte("hello")},
		{Type: FrameAck, Payload: []byte{0x07}},
		{Type: FrameControl},
	}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}
	for _, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		if got.Type != want.Type || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("ReadFrame() = %+v, want %+v", got, want)
		}
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("ReadFrame() at end err = %v, want io.EOF", err)
	}

	truncated := bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x04, 1})
	if _, err := ReadFrame(truncated); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated payload err = %v", err)
	}
}

func TestFrameTooLarge(t *testing.T) {
	big := make([]byte, MaxPayloadSize+1)
	if _, err := NewFrame(FrameCalls, 0, big); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("NewFrame err = %v", err)
	}
	if err := WriteFrame(io.Discard, &Frame{Type: FrameCalls, Payload: big}); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("WriteFrame err = %v", err)
	}
	if _, err := NewFrame(FrameCalls, 0, big[:MaxPayloadSize]); err != nil {
		t.Errorf("NewFrame at limit err = %v", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	if FrameCalls.String() != "Calls" || FrameType(0x42).String() != "Unknown" {
		t.Errorf("String() = %q, %q", FrameCalls.String(), FrameType(0x42).String())
	}
}
