package crowdfund

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/crowdfund/errors"
)

// DiscriminatorLength is the size of the tag that prefixes every
// serialized instruction and account.
const DiscriminatorLength = 8

// Discriminator returns the first 8 bytes of sha256("<namespace>:<name>").
// Instructions use the "global" namespace, stored accounts the
// "account" namespace.
func Discriminator(namespace, name string) []byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return sum[:DiscriminatorLength]
}

// InstructionWriter builds the fixed layout of an instruction:
// discriminator, little endian arguments and ordered accounts.
type InstructionWriter struct {
	buf []byte
}

// NewInstructionWriter starts an instruction with the given tag.
func NewInstructionWriter(discriminator []byte) *InstructionWriter {
	return &InstructionWriter{buf: append([]byte(nil), discriminator...)}
}

// Uint64 appends v in little endian.
func (w *InstructionWriter) Uint64(v uint64) *InstructionWriter {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	w.buf = append(w.buf, raw[:]...)
	return w
}

// Int64 appends v in little endian two's complement.
func (w *InstructionWriter) Int64(v int64) *InstructionWriter {
	return w.Uint64(uint64(v))
}

// Fixed appends raw bytes of a fixed size argument.
func (w *InstructionWriter) Fixed(raw []byte) *InstructionWriter {
	w.buf = append(w.buf, raw...)
	return w
}

// Bytes returns the serialized instruction.
func (w *InstructionWriter) Bytes() []byte {
	return w.buf
}

// InstructionReader consumes an instruction written by
// InstructionWriter. The first failure is kept and all later reads
// return zero values.
type InstructionReader struct {
	raw []byte
	err error
}

// NewInstructionReader validates the discriminator and returns a
// reader positioned on the first argument.
func NewInstructionReader(raw, discriminator []byte) *InstructionReader {
	r := &InstructionReader{raw: raw}
	tag := r.Fixed(DiscriminatorLength)
	if r.err == nil && string(tag) != string(discriminator) {
		r.err = errors.Wrapf(errors.ErrInput, "unknown instruction discriminator %X", tag)
	}
	return r
}

// Fixed reads n raw bytes.
func (r *InstructionReader) Fixed(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.raw) < n {
		r.err = errors.Wrapf(errors.ErrInput, "instruction too short, want %d more bytes, got %d", n, len(r.raw))
		return nil
	}
	out := append([]byte(nil), r.raw[:n]...)
	r.raw = r.raw[n:]
	return out
}

// Uint64 reads a little endian uint64.
func (r *InstructionReader) Uint64() uint64 {
	raw := r.Fixed(8)
	if raw == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(raw)
}

// Int64 reads a little endian int64.
func (r *InstructionReader) Int64() int64 {
	return int64(r.Uint64())
}

// Address reads a 32 byte account key.
func (r *InstructionReader) Address() Address {
	raw := r.Fixed(AddressLength)
	if raw == nil {
		return nil
	}
	return Address(raw)
}

// Done returns the first failure, or an error if unread bytes remain.
func (r *InstructionReader) Done() error {
	if r.err != nil {
		return r.err
	}
	if len(r.raw) != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing instruction bytes", len(r.raw))
	}
	return nil
}
