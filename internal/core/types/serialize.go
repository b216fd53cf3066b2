package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
)

// Ledger records are serialized with hand-written codecs so the byte form is
// fully deterministic: fixed big-endian integer widths, uvarint length
// prefixes, and big.Int as sign byte plus magnitude. Any codec that leans on
// reflection or map iteration is unusable here.

var ErrTruncatedRecord = errors.New("truncated record")

// Writer accumulates a deterministic binary encoding.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.buf.Write(tmp[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	w.buf.Write(tmp[:])
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteBytes(b []byte) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(b)))
	w.buf.Write(tmp[:n])
	w.buf.Write(b)
}

func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

func (w *Writer) WriteAddress(a Address) {
	w.buf.Write(a[:])
}

// WriteBigInt encodes sign (0, 1 or 2 for negative) followed by the
// magnitude bytes. Nil is encoded as zero.
func (w *Writer) WriteBigInt(v *big.Int) {
	if v == nil || v.Sign() == 0 {
		w.buf.WriteByte(0)
		w.WriteBytes(nil)
		return
	}
	if v.Sign() > 0 {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(2)
	}
	w.WriteBytes(v.Bytes())
}

// Reader decodes a Writer encoding.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) ReadUint8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncatedRecord
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncatedRecord
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, ErrTruncatedRecord
	}
	v := binary.BigEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, sz := binary.Uvarint(r.data[r.off:])
	if sz <= 0 {
		return nil, ErrTruncatedRecord
	}
	r.off += sz
	if uint64(r.remaining()) < n {
		return nil, ErrTruncatedRecord
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:])
	r.off += int(n)
	return out, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	return string(b), err
}

func (r *Reader) ReadAddress() (Address, error) {
	var a Address
	if r.remaining() < len(a) {
		return a, ErrTruncatedRecord
	}
	copy(a[:], r.data[r.off:])
	r.off += len(a)
	return a, nil
}

func (r *Reader) ReadBigInt() (*big.Int, error) {
	sign, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	mag, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	v := new(big.Int).SetBytes(mag)
	switch sign {
	case 0, 1:
	case 2:
		v.Neg(v)
	default:
		return nil, fmt.Errorf("bad big.Int sign byte %d", sign)
	}
	return v, nil
}

// Done returns an error when trailing bytes remain, which indicates a
// corrupted or mis-versioned record.
func (r *Reader) Done() error {
	if r.remaining() != 0 {
		return fmt.Errorf("record has %d trailing bytes", r.remaining())
	}
	return nil
}
