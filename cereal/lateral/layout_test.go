package lateral

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"testing"

	"capnproto.org/go/capnp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemaField struct {
	name    string
	ordinal int
	typ     string
	union   bool
}

type schemaStruct struct {
	name   string
	fields []schemaField
}

var (
	structLine    = regexp.MustCompile(`^struct (\w+) \{$`)
	enumLine      = regexp.MustCompile(`^enum (\w+) \{$`)
	fieldLine     = regexp.MustCompile(`^(\w+) @(\d+) :([\w()]+);$`)
	enumerantLine = regexp.MustCompile(`^(\w+) @(\d+);$`)
)

// parseSchema reads the subset of the capnp grammar lateral.capnp uses.
func parseSchema(t *testing.T, path string) (structs []*schemaStruct, enums map[string][]string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	enums = map[string][]string{}
	var current *schemaStruct
	var enum string
	inUnion := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case structLine.MatchString(line):
			current = &schemaStruct{name: structLine.FindStringSubmatch(line)[1]}
			structs = append(structs, current)
		case enumLine.MatchString(line):
			enum = enumLine.FindStringSubmatch(line)[1]
		case line == "union {":
			inUnion = true
		case line == "}":
			if inUnion {
				inUnion = false
			} else {
				current, enum = nil, ""
			}
		case current != nil && fieldLine.MatchString(line):
			m := fieldLine.FindStringSubmatch(line)
			ordinal, err := strconv.Atoi(m[2])
			require.NoError(t, err)
			current.fields = append(current.fields, schemaField{name: m[1], ordinal: ordinal, typ: m[3], union: inUnion})
		case enum != "" && enumerantLine.MatchString(line):
			m := enumerantLine.FindStringSubmatch(line)
			ordinal, err := strconv.Atoi(m[2])
			require.NoError(t, err)
			require.Equal(t, len(enums[enum]), ordinal, "enumerant %s.%s", enum, m[1])
			enums[enum] = append(enums[enum], m[1])
		}
	}
	require.NoError(t, scanner.Err())
	return structs, enums
}

// dataAllocator hands out data section slots in ordinal order like the capnp compiler. A field
// takes the smallest free hole that fits before the section grows by a word.
type dataAllocator struct {
	holes [6]int // offset in units of 1<<lg bits, -1 when empty
	words int
}

func newDataAllocator() *dataAllocator {
	a := &dataAllocator{}
	for i := range a.holes {
		a.holes[i] = -1
	}
	return a
}

func (a *dataAllocator) tryHole(lg int) (int, bool) {
	if lg >= 6 {
		return 0, false
	}
	if off := a.holes[lg]; off >= 0 {
		a.holes[lg] = -1
		return off, true
	}
	if off, ok := a.tryHole(lg + 1); ok {
		a.holes[lg] = off*2 + 1
		return off * 2, true
	}
	return 0, false
}

// allocate returns the bit offset of a new field of 1<<lg bits.
func (a *dataAllocator) allocate(lg int) int {
	if off, ok := a.tryHole(lg); ok {
		return off << lg
	}
	word := a.words
	a.words++
	for i := lg; i < 6; i++ {
		a.holes[i] = word<<(6-i) + 1
	}
	return word * 64
}

type fieldSlot struct {
	field   schemaField
	bit     int // data fields
	pointer int // pointer fields
}

type structLayout struct {
	slots        []fieldSlot
	dataWords    int
	pointers     int
	discriminant int // bit offset, -1 without a union
	members      []string
}

func dataSize(typ string, enums map[string][]string) (lg int, ok bool) {
	switch typ {
	case "Bool":
		return 0, true
	case "UInt16", "Int16":
		return 4, true
	case "UInt32", "Int32", "Float32":
		return 5, true
	case "UInt64", "Int64", "Float64":
		return 6, true
	}
	if _, isEnum := enums[typ]; isEnum {
		return 4, true
	}
	return 0, false
}

func layoutOf(t *testing.T, s *schemaStruct, enums map[string][]string) structLayout {
	t.Helper()
	fields := append([]schemaField{}, s.fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].ordinal < fields[j].ordinal })

	data := newDataAllocator()
	l := structLayout{discriminant: -1}
	unionPointer := -1
	for _, f := range fields {
		if f.union {
			l.members = append(l.members, f.name)
			if len(l.members) == 2 {
				l.discriminant = data.allocate(4)
			}
		}
		if lg, ok := dataSize(f.typ, enums); ok {
			require.False(t, f.union, "%s.%s: data members of a union are not supported", s.name, f.name)
			l.slots = append(l.slots, fieldSlot{field: f, bit: data.allocate(lg), pointer: -1})
			continue
		}
		ptr := l.pointers
		if f.union && unionPointer >= 0 {
			ptr = unionPointer
		} else {
			l.pointers++
			if f.union {
				unionPointer = ptr
			}
		}
		l.slots = append(l.slots, fieldSlot{field: f, bit: -1, pointer: ptr})
	}
	l.dataWords = data.words
	return l
}

var constructors = map[string]func(*capnp.Segment) (any, error){
	"Event":                 func(s *capnp.Segment) (any, error) { return NewRootEvent(s) },
	"LateralMpcIn":          func(s *capnp.Segment) (any, error) { return NewLateralMpcIn(s) },
	"LateralPlan":           func(s *capnp.Segment) (any, error) { return NewLateralPlan(s) },
	"LateralMpcCommand":     func(s *capnp.Segment) (any, error) { return NewLateralMpcCommand(s) },
	"LateralMpcDiagnostics": func(s *capnp.Segment) (any, error) { return NewLateralMpcDiagnostics(s) },
}

var enumValues = map[string]func(uint16) fmt.Stringer{
	"SolverStatus": func(v uint16) fmt.Stringer { return SolverStatus(v) },
	"CommandType":  func(v uint16) fmt.Stringer { return CommandType(v) },
}

func exported(name string) string {
	return strings.ToUpper(name[:1]) + name[1:]
}

func call(t *testing.T, v reflect.Value, method string, args ...any) []reflect.Value {
	t.Helper()
	m := v.MethodByName(method)
	require.True(t, m.IsValid(), "%s has no method %s", v.Type(), method)
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a).Convert(m.Type().In(i))
	}
	out := m.Call(in)
	if n := len(out); n > 0 {
		if err, ok := out[n-1].Interface().(error); ok {
			require.NoError(t, err, method)
		}
	}
	return out
}

func checkSlot(t *testing.T, obj reflect.Value, raw capnp.Struct, slot fieldSlot, l structLayout) {
	t.Helper()
	f := slot.field
	name := exported(f.name)
	off := capnp.DataOffset(slot.bit / 8)

	switch {
	case f.union:
		call(t, obj, "New"+name)
		index := slices.Index(l.members, f.name)
		assert.Equal(t, uint16(index), raw.Uint16(capnp.DataOffset(l.discriminant/8)), "%s discriminant", name)
		assert.True(t, raw.HasPtr(uint16(slot.pointer)), "%s pointer", name)
	case f.typ == "Bool":
		call(t, obj, "Set"+name, true)
		assert.True(t, raw.Bit(capnp.BitOffset(slot.bit)), name)
		assert.True(t, call(t, obj, name)[0].Bool(), name)
		call(t, obj, "Set"+name, false)
		assert.False(t, raw.Bit(capnp.BitOffset(slot.bit)), name)
	case f.typ == "Float32":
		call(t, obj, "Set"+name, float32(1.5))
		assert.Equal(t, float32(1.5), math.Float32frombits(raw.Uint32(off)), name)
		assert.Equal(t, 1.5, call(t, obj, name)[0].Float(), name)
	case f.typ == "UInt32":
		call(t, obj, "Set"+name, uint32(0xdeadbeef))
		assert.Equal(t, uint32(0xdeadbeef), raw.Uint32(off), name)
		assert.Equal(t, uint64(0xdeadbeef), call(t, obj, name)[0].Uint(), name)
	case f.typ == "UInt64":
		call(t, obj, "Set"+name, uint64(0x0123456789abcdef))
		assert.Equal(t, uint64(0x0123456789abcdef), raw.Uint64(off), name)
		assert.Equal(t, uint64(0x0123456789abcdef), call(t, obj, name)[0].Uint(), name)
	case f.typ == "UInt16" || enumValues[f.typ] != nil:
		call(t, obj, "Set"+name, uint16(3))
		assert.Equal(t, uint16(3), raw.Uint16(off), name)
		assert.Equal(t, uint64(3), call(t, obj, name)[0].Uint(), name)
	case f.typ == "Text":
		call(t, obj, "Set"+name, "lateral")
		p, err := raw.Ptr(uint16(slot.pointer))
		require.NoError(t, err)
		assert.Equal(t, "lateral", p.Text(), name)
		assert.Equal(t, "lateral", call(t, obj, name)[0].String(), name)
	case f.typ == "List(Float32)":
		call(t, obj, "New"+name, int32(3))
		p, err := raw.Ptr(uint16(slot.pointer))
		require.NoError(t, err)
		assert.Equal(t, 3, p.List().Len(), name)
		list := call(t, obj, name)[0].Interface().(capnp.Float32List)
		assert.Equal(t, 3, list.Len(), name)
	default:
		t.Errorf("%s: no check for type %s", name, f.typ)
	}
}

func TestAccessorsMatchSchemaLayout(t *testing.T) {
	structs, enums := parseSchema(t, "lateral.capnp")
	require.Len(t, structs, len(constructors))

	for _, s := range structs {
		t.Run(s.name, func(t *testing.T) {
			l := layoutOf(t, s, enums)
			construct, ok := constructors[s.name]
			require.True(t, ok, "no constructor for %s", s.name)
			_, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
			require.NoError(t, err)
			v, err := construct(seg)
			require.NoError(t, err)

			obj := reflect.ValueOf(v)
			raw := obj.Convert(reflect.TypeOf(capnp.Struct{})).Interface().(capnp.Struct)
			size := raw.Size()
			assert.Equal(t, capnp.Size(l.dataWords*8), size.DataSize, "data section")
			assert.Equal(t, uint16(l.pointers), size.PointerCount, "pointer section")

			for _, slot := range l.slots {
				checkSlot(t, obj, raw, slot, l)
			}
		})
	}
}

func TestEnumerantsMatchSchema(t *testing.T) {
	_, enums := parseSchema(t, "lateral.capnp")
	require.Len(t, enums, len(enumValues))
	for name, enumerants := range enums {
		value, ok := enumValues[name]
		require.True(t, ok, "no go type for enum %s", name)
		for i, e := range enumerants {
			assert.Equal(t, e, value(uint16(i)).String(), "%s @%d", name, i)
		}
	}
}
