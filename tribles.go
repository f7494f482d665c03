// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

// Package tribles implements an in-memory triple store over persistent
// adaptive tries, together with a worst-case-optimal join engine for
// queries expressed as triple patterns and a content-addressed blob
// store tied into the triple data for garbage collection.
package tribles

import (
	"crypto/rand"
	"fmt"

	"github.com/triblespace/go-tribles/patch"
)

const (
	// IdLen is the length of entity and attribute identifiers.
	IdLen = 16
	// ValueLen is the length of a value and of a content digest.
	ValueLen = 32
	// TribleLen is the length of a stored triple.
	TribleLen = IdLen + IdLen + ValueLen
)

// Id identifies an entity or an attribute.
type Id [IdLen]byte

// Value is the 32-byte value slot of a triple. Identifiers embed into
// a value as its low 16 bytes.
type Value [ValueLen]byte

// Trible is one triple record: entity, attribute, value.
type Trible [TribleLen]byte

// NewTrible assembles a triple from its fields.
func NewTrible(e, a Id, v Value) Trible {
	var t Trible
	copy(t[0:IdLen], e[:])
	copy(t[IdLen:2*IdLen], a[:])
	copy(t[2*IdLen:], v[:])
	return t
}

// E returns the entity id.
func (t *Trible) E() Id {
	var id Id
	copy(id[:], t[0:IdLen])
	return id
}

// A returns the attribute id.
func (t *Trible) A() Id {
	var id Id
	copy(id[:], t[IdLen:2*IdLen])
	return id
}

// V returns the value.
func (t *Trible) V() Value {
	var v Value
	copy(v[:], t[2*IdLen:])
	return v
}

// IdValue embeds an id into the low 16 bytes of a value.
func IdValue(id Id) Value {
	var v Value
	copy(v[IdLen:], id[:])
	return v
}

// ValueParseError reports that a 32-byte value could not be read as the
// requested semantic type.
type ValueParseError struct {
	Reason string
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("cannot parse value: %s", e.Reason)
}

// ValueId extracts an embedded id from a value. It fails with a
// ValueParseError if the high 16 bytes are not zero.
func ValueId(v Value) (Id, error) {
	var id Id
	for _, b := range v[:IdLen] {
		if b != 0 {
			return id, &ValueParseError{Reason: "high bytes not zero for an embedded id"}
		}
	}
	copy(id[:], v[IdLen:])
	return id, nil
}

// NewId returns a fresh random identifier.
func NewId() Id {
	var id Id
	if _, err := rand.Read(id[:]); err != nil {
		panic(fmt.Sprintf("tribles: id generation failed: %v", err))
	}
	return id
}

// The six orderings under which a triple set is indexed, named by the
// field order in which they sort. Segments split at the field
// boundaries, depths 16 and 32 of the canonical key.
var (
	orderEAV = tripleSchema(0, 1, 2)
	orderEVA = tripleSchema(0, 2, 1)
	orderAEV = tripleSchema(1, 0, 2)
	orderAVE = tripleSchema(1, 2, 0)
	orderVEA = tripleSchema(2, 0, 1)
	orderVAE = tripleSchema(2, 1, 0)

	valueSchema = patch.Identity(ValueLen)
)

// tripleSchema builds the patch schema that sorts triples by the given
// field order. Fields are numbered e=0, a=1, v=2 and occupy the key
// ranges [0,16), [16,32) and [32,64).
func tripleSchema(fields ...int) *patch.Schema {
	bounds := [4]int{0, IdLen, 2 * IdLen, TribleLen}

	order := make([]int, 0, TribleLen)
	for _, f := range fields {
		for i := bounds[f]; i < bounds[f+1]; i++ {
			order = append(order, i)
		}
	}

	segs := make([]int, TribleLen)
	for i := range segs {
		switch {
		case i < IdLen:
			segs[i] = 0
		case i < 2*IdLen:
			segs[i] = 1
		default:
			segs[i] = 2
		}
	}
	return patch.NewSchema(TribleLen, order, segs)
}
