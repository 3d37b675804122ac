package multisig

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/tendermint/tendermint/crypto/tmhash"
)

// discriminator returns the 8 byte prefix that identifies an account or an
// instruction of given name.
func discriminator(namespace, name string) [8]byte {
	var d [8]byte
	copy(d[:], tmhash.Sum([]byte(namespace+":"+name)))
	return d
}

// borshWriter writes values one after another in the borsh encoding. The
// first failure is kept and all following writes are ignored.
type borshWriter struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

func newBorshWriter() *borshWriter {
	w := &borshWriter{}
	w.enc = bin.NewBorshEncoder(&w.buf)
	return w
}

func (w *borshWriter) put(v interface{}) {
	if w.err == nil {
		w.err = w.enc.Encode(v)
	}
}

// key writes the address as a fixed size 32 byte array.
func (w *borshWriter) key(a quorum.Address) {
	if w.err != nil {
		return
	}
	if len(a) != quorum.AddressLength {
		w.err = errors.Wrapf(errors.ErrInput, "invalid key length %d", len(a))
		return
	}
	var k [quorum.AddressLength]byte
	copy(k[:], a)
	w.put(k)
}

// optionalKey writes a one byte presence flag followed by the key if the
// address is not nil.
func (w *borshWriter) optionalKey(a quorum.Address) {
	w.put(a != nil)
	if a != nil {
		w.key(a)
	}
}

func (w *borshWriter) optionalString(s *string) {
	w.put(s != nil)
	if s != nil {
		w.put(*s)
	}
}

func (w *borshWriter) members(ms []Member) {
	w.put(uint32(len(ms)))
	for _, m := range ms {
		w.key(m.Key)
		w.put(m.Permissions.Mask)
	}
}

func (w *borshWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, errors.Wrap(errors.ErrInput, w.err.Error())
	}
	return w.buf.Bytes(), nil
}

// borshReader is the counterpart of the borshWriter.
type borshReader struct {
	dec *bin.Decoder
	err error
}

func newBorshReader(raw []byte) *borshReader {
	return &borshReader{dec: bin.NewBorshDecoder(raw)}
}

func (r *borshReader) get(v interface{}) {
	if r.err == nil {
		r.err = r.dec.Decode(v)
	}
}

// prefix consumes the discriminator and ensures it is the expected one.
func (r *borshReader) prefix(want [8]byte) {
	var got [8]byte
	r.get(&got)
	if r.err == nil && got != want {
		r.err = errors.Wrapf(errors.ErrType, "unexpected discriminator %X", got[:])
	}
}

func (r *borshReader) key() quorum.Address {
	var k [quorum.AddressLength]byte
	r.get(&k)
	if r.err != nil {
		return nil
	}
	return quorum.Address(k[:])
}

func (r *borshReader) optionalKey() quorum.Address {
	var present bool
	r.get(&present)
	if !present || r.err != nil {
		return nil
	}
	return r.key()
}

func (r *borshReader) optionalString() *string {
	var present bool
	r.get(&present)
	if !present || r.err != nil {
		return nil
	}
	var s string
	r.get(&s)
	return &s
}

func (r *borshReader) members() []Member {
	var n uint32
	r.get(&n)
	if r.err != nil || n == 0 {
		return nil
	}
	// Do not trust the length prefix for the allocation.
	ms := make([]Member, 0, minInt(int(n), 64))
	for i := uint32(0); i < n && r.err == nil; i++ {
		var m Member
		m.Key = r.key()
		r.get(&m.Permissions.Mask)
		ms = append(ms, m)
	}
	return ms
}

// done returns the first decoding error. Bytes left after the last field
// are an error too.
func (r *borshReader) done() error {
	if r.err == nil {
		if n := r.dec.Remaining(); n != 0 {
			return errors.Wrapf(errors.ErrInput, "%d trailing bytes", n)
		}
		return nil
	}
	if errors.ErrType.Is(r.err) {
		return r.err
	}
	return errors.Wrap(errors.ErrInput, r.err.Error())
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
