package appcontext

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Envelope is the parsed binary layout carried inside the context header.
//
// Wire layout, little-endian, no padding:
//
//	[1]        IV length
//	[L_iv]     IV
//	[2]        AAD length (uint16)
//	[L_aad]    AAD
//	[4]        ciphertext length (int32, negative is rejected)
//	[L_ct]     ciphertext
//	[...]      authentication tag (rest of the buffer)
type Envelope struct {
	IV         []byte
	AAD        []byte
	Ciphertext []byte
	Tag        []byte
}

// envelopeReader walks a buffer and refuses to hand out a slice longer than
// what remains.
type envelopeReader struct {
	buf []byte
	off int
}

func (r *envelopeReader) take(n int, field string) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.off {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d remaining", ErrMalformed, field, n, len(r.buf)-r.off)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *envelopeReader) rest() []byte {
	return r.buf[r.off:]
}

// DecodeEnvelope parses raw into its four fields. Returned slices are copies
// and do not alias raw.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	r := &envelopeReader{buf: raw}

	b, err := r.take(1, "iv length")
	if err != nil {
		return nil, err
	}
	iv, err := r.take(int(b[0]), "iv")
	if err != nil {
		return nil, err
	}

	b, err = r.take(2, "aad length")
	if err != nil {
		return nil, err
	}
	aad, err := r.take(int(binary.LittleEndian.Uint16(b)), "aad")
	if err != nil {
		return nil, err
	}

	b, err = r.take(4, "ciphertext length")
	if err != nil {
		return nil, err
	}
	ctLen := int32(binary.LittleEndian.Uint32(b))
	if ctLen < 0 {
		return nil, fmt.Errorf("%w: negative ciphertext length %d", ErrMalformed, ctLen)
	}
	ct, err := r.take(int(ctLen), "ciphertext")
	if err != nil {
		return nil, err
	}

	return &Envelope{
		IV:         clone(iv),
		AAD:        clone(aad),
		Ciphertext: clone(ct),
		Tag:        clone(r.rest()),
	}, nil
}

// Encode serializes the envelope into the wire layout.
func (e *Envelope) Encode() ([]byte, error) {
	if len(e.IV) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: iv length %d exceeds %d", ErrMalformed, len(e.IV), math.MaxUint8)
	}
	if len(e.AAD) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: aad length %d exceeds %d", ErrMalformed, len(e.AAD), math.MaxUint16)
	}
	if len(e.Ciphertext) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: ciphertext length %d exceeds %d", ErrMalformed, len(e.Ciphertext), math.MaxInt32)
	}

	out := make([]byte, 0, 1+len(e.IV)+2+len(e.AAD)+4+len(e.Ciphertext)+len(e.Tag))
	out = append(out, byte(len(e.IV)))
	out = append(out, e.IV...)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(e.AAD)))
	out = append(out, e.AAD...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(e.Ciphertext)))
	out = append(out, e.Ciphertext...)
	out = append(out, e.Tag...)
	return out, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
