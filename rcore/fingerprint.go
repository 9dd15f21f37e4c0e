package rcore

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"

	"github.com/glycerine/blake2b"
	"github.com/tinylib/msgp/msgp"
)

// Blake2bUint64 returns an 8 byte BLAKE2b cryptographic
// hash of the raw.
func Blake2bUint64(raw []byte) uint64 {
	cfg := &blake2b.Config{Size: 8}
	h, err := blake2b.New(cfg)
	panicOn(err)
	h.Write(raw)
	by := h.Sum(nil)
	return binary.LittleEndian.Uint64(by[:8])
}

func panicOn(err error) {
	if err != nil {
		panic(err)
	}
}

// CanonicalEncoding renders v as msgpack such that two values encode to
// the same bytes exactly when identical() holds: attributes are sorted,
// -0 equals 0, every NaN other than NA is the same NaN, and
// environments compare by identity.
func CanonicalEncoding(v Value) []byte {
	return appendCanonical(nil, v)
}

// Fingerprint is a 64 bit hash of the canonical encoding.
func Fingerprint(v Value) uint64 {
	return Blake2bUint64(CanonicalEncoding(v))
}

// Identical is identical(x, y).
func Identical(x, y Value) bool {
	return bytes.Equal(CanonicalEncoding(x), CanonicalEncoding(y))
}

func appendCanonical(b []byte, v Value) []byte {
	if v == nil {
		return msgp.AppendNil(b)
	}
	b = msgp.AppendArrayHeader(b, 3)
	b = msgp.AppendUint32(b, uint32(v.Type()))
	b = appendPayload(b, v)
	return appendAttrs(b, v.Attrs())
}

func appendPayload(b []byte, v Value) []byte {
	switch x := v.(type) {
	case *NullValue:
		return msgp.AppendNil(b)
	case *Logical:
		b = msgp.AppendArrayHeader(b, uint32(len(x.V)))
		for _, e := range x.V {
			b = msgp.AppendInt32(b, e)
		}
	case *Integer:
		b = msgp.AppendArrayHeader(b, uint32(len(x.V)))
		for _, e := range x.V {
			b = msgp.AppendInt32(b, e)
		}
	case *Double:
		b = msgp.AppendArrayHeader(b, uint32(len(x.V)))
		for _, e := range x.V {
			b = msgp.AppendFloat64(b, canonicalFloat(e))
		}
	case *Complex:
		b = msgp.AppendArrayHeader(b, uint32(len(x.V)))
		for _, e := range x.V {
			b = msgp.AppendComplex128(b, complex(canonicalFloat(real(e)), canonicalFloat(imag(e))))
		}
	case *Character:
		b = msgp.AppendArrayHeader(b, uint32(len(x.V)))
		for _, e := range x.V {
			if e == NAString {
				b = msgp.AppendNil(b)
				continue
			}
			b = msgp.AppendString(b, e)
		}
	case *Raw:
		return msgp.AppendBytes(b, x.V)
	case *List:
		b = msgp.AppendArrayHeader(b, uint32(len(x.V)))
		for _, e := range x.V {
			b = appendCanonical(b, e)
		}
	case *Symbol:
		return msgp.AppendString(b, x.Name)
	case *Language:
		b = msgp.AppendArrayHeader(b, 2)
		b = appendCanonical(b, x.Fn)
		return appendArgs(b, x.Args)
	case *Pairlist:
		return appendArgs(b, x.Args)
	case *Dots:
		return appendArgs(b, x.Args)
	case *Closure:
		b = msgp.AppendArrayHeader(b, 3)
		b = appendArgs(b, x.Formals)
		b = appendCanonical(b, x.Body)
		return appendEnvRef(b, x.Env)
	case *Builtin:
		return msgp.AppendString(b, x.Name)
	case *EnvValue:
		return appendEnvRef(b, x.Ref)
	case *Promise:
		if x.state == Forced {
			return appendCanonical(b, x.value)
		}
		return appendCanonical(b, x.Expr)
	default:
		return msgp.AppendNil(b)
	}
	return b
}

func appendArgs(b []byte, args []Arg) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(args)))
	for _, a := range args {
		b = msgp.AppendArrayHeader(b, 2)
		b = msgp.AppendString(b, a.Tag)
		b = appendCanonical(b, a.Value)
	}
	return b
}

func appendEnvRef(b []byte, r EnvRef) []byte {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendInt32(b, r.id)
	return msgp.AppendUint32(b, r.gen)
}

func appendAttrs(b []byte, a *Attrs) []byte {
	names := a.Names()
	sort.Strings(names)
	b = msgp.AppendMapHeader(b, uint32(len(names)))
	for _, n := range names {
		b = msgp.AppendString(b, n)
		b = appendCanonical(b, a.Get(n))
	}
	return b
}

func canonicalFloat(f float64) float64 {
	switch {
	case f == 0:
		return 0
	case IsNA(f):
		return NADouble
	case math.IsNaN(f):
		return math.NaN()
	}
	return f
}
