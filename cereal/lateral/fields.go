package lateral

import (
	"math"
	"strconv"

	"capnproto.org/go/capnp/v3"
)

func getFloat32(s capnp.Struct, off capnp.DataOffset) float32 {
	return math.Float32frombits(s.Uint32(off))
}

func setFloat32(s capnp.Struct, off capnp.DataOffset, v float32) {
	s.SetUint32(off, math.Float32bits(v))
}

func float32List(s capnp.Struct, i uint16) (capnp.Float32List, error) {
	p, err := s.Ptr(i)
	return capnp.Float32List(p.List()), err
}

func newFloat32List(s capnp.Struct, i uint16, n int32) (capnp.Float32List, error) {
	l, err := capnp.NewFloat32List(s.Segment(), n)
	if err != nil {
		return capnp.Float32List{}, err
	}
	err = s.SetPtr(i, l.ToPtr())
	return l, err
}

func itoa(v uint16) string {
	return strconv.Itoa(int(v))
}

// Float64s copies a float32 list, widening every value.
func Float64s(l capnp.Float32List) []float64 {
	out := make([]float64, l.Len())
	for i := range out {
		out[i] = float64(l.At(i))
	}
	return out
}

// SetFloat64s narrows vals into a freshly allocated list created by newList.
func SetFloat64s(newList func(int32) (capnp.Float32List, error), vals []float64) error {
	l, err := newList(int32(len(vals)))
	if err != nil {
		return err
	}
	for i, v := range vals {
		l.Set(i, float32(v))
	}
	return nil
}
