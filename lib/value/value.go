// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import "fmt"

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindDouble
	KindBool
	KindNull
	KindBlob
	KindList
	KindMap
	KindDescriptor
	KindPort
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindBlob:
		return "blob"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindDescriptor:
		return "descriptor"
	case KindPort:
		return "port"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is one node of a protocol message. The interface is sealed:
// only types in this package implement it.
type Value interface {
	Kind() Kind
	sealed()
}

// String is a UTF-8 string.
type String string

// Int is a signed 64-bit integer.
type Int int64

// Double is a 64-bit float.
type Double float64

// Bool is a boolean.
type Bool bool

// Null is the explicit absence of a value. Requests use it to unset
// entries (for example, environment variables).
type Null struct{}

// Blob is opaque binary data.
type Blob []byte

// List is an ordered sequence of values.
type List []Value

// Descriptor is a file descriptor carried alongside a message. On the
// sending side FD is a descriptor owned by the caller; on the receiving
// side it is the descriptor installed by the kernel.
type Descriptor struct {
	FD int
}

// Port is a kernel port name. It is carried for completeness and never
// resolved.
type Port struct {
	Name uint32
}

func (String) Kind() Kind     { return KindString }
func (Int) Kind() Kind        { return KindInt }
func (Double) Kind() Kind     { return KindDouble }
func (Bool) Kind() Kind       { return KindBool }
func (Null) Kind() Kind       { return KindNull }
func (Blob) Kind() Kind       { return KindBlob }
func (List) Kind() Kind       { return KindList }
func (*Map) Kind() Kind       { return KindMap }
func (Descriptor) Kind() Kind { return KindDescriptor }
func (Port) Kind() Kind       { return KindPort }

func (String) sealed()     {}
func (Int) sealed()        {}
func (Double) sealed()     {}
func (Bool) sealed()       {}
func (Null) sealed()       {}
func (Blob) sealed()       {}
func (List) sealed()       {}
func (*Map) sealed()       {}
func (Descriptor) sealed() {}
func (Port) sealed()       {}
