package journal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/vango-dev/hostdom/internal/errors"
	"github.com/vango-dev/hostdom/pkg/protocol"
)

// archiveMagic opens every archive.
var archiveMagic = []byte("HDJ1")

// maxArchiveEntry bounds a single entry read back from an archive.
const maxArchiveEntry = protocol.DefaultMaxAllocation

// Sink stores a finished archive under name.
type Sink interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) error
}

// WriteArchive writes entries to w. The format is the magic "HDJ1"
// followed by one uvarint length and encoded call per entry.
func WriteArchive(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(archiveMagic); err != nil {
		return err
	}
	var lenBuf [binary.MaxVarintLen64]byte
	for _, e := range entries {
		n := binary.PutUvarint(lenBuf[:], uint64(len(e.Call)))
		if _, err := bw.Write(lenBuf[:n]); err != nil {
			return err
		}
		if _, err := bw.Write(e.Call); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Archive writes the retained calls to sink under name.
func (j *Journal) Archive(ctx context.Context, sink Sink, name string) error {
	var buf bytes.Buffer
	if err := WriteArchive(&buf, j.history.Entries()); err != nil {
		return err
	}
	size := int64(buf.Len())
	if err := sink.Put(ctx, name, &buf, size); err != nil {
		return err
	}
	j.logger.Info("journal archived", "name", name, "calls", j.history.Len(), "bytes", size)
	return nil
}

// ReadArchive decodes an archive written by WriteArchive.
func ReadArchive(r io.Reader) ([]*protocol.HostCall, error) {
	br := bufio.NewReader(r)
	magic := make([]byte, len(archiveMagic))
	if _, err := io.ReadFull(br, magic); err != nil || !bytes.Equal(magic, archiveMagic) {
		return nil, errors.New("E302").WithDetail("missing archive header")
	}

	var calls []*protocol.HostCall
	for {
		n, err := binary.ReadUvarint(br)
		if err == io.EOF {
			return calls, nil
		}
		if err != nil {
			return nil, errors.New("E302").WithDetailf("length of entry %d", len(calls)).Wrap(err)
		}
		if n > maxArchiveEntry {
			return nil, errors.New("E302").WithDetailf("entry %d claims %d bytes", len(calls), n)
		}
		data := make([]byte, n)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, errors.New("E302").WithDetailf("entry %d is truncated", len(calls)).Wrap(err)
		}
		d := protocol.NewDecoder(data)
		c, err := protocol.DecodeHostCall(d)
		if err == nil {
			err = d.Finish()
		}
		if err != nil {
			return nil, errors.New("E302").WithDetailf("entry %d", len(calls)).Wrap(err)
		}
		calls = append(calls, c)
	}
}
