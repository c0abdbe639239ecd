// Package registry implements the ThingSet object model: a fixed tree of
// named, typed data objects declared at process start, plus the mutable
// per-object metadata (subset membership, access flags) handlers are allowed
// to change at runtime.
//
// An Object never owns the storage behind its value: it borrows a pointer
// supplied by the declaring application and only reads and writes through
// it.
package registry

import "fmt"

// ObjectType tags the kind of value (if any) an Object carries: a small
// enum with a String() method callers branch on instead of comparing raw
// numbers.
type ObjectType int

const (
	TypeBool ObjectType = iota
	TypeU8
	TypeI8
	TypeU16
	TypeI16
	TypeU32
	TypeI32
	TypeU64
	TypeI64
	TypeF32
	TypeDecFrac
	TypeString
	TypeBytes
	TypeArray
	TypeGroup
	TypeSubset
	TypeExec
)

func (t ObjectType) String() string {
	switch t {
	case TypeBool:
		return "BOOL"
	case TypeU8:
		return "U8"
	case TypeI8:
		return "I8"
	case TypeU16:
		return "U16"
	case TypeI16:
		return "I16"
	case TypeU32:
		return "U32"
	case TypeI32:
		return "I32"
	case TypeU64:
		return "U64"
	case TypeI64:
		return "I64"
	case TypeF32:
		return "F32"
	case TypeDecFrac:
		return "DECFRAC"
	case TypeString:
		return "STRING"
	case TypeBytes:
		return "BYTES"
	case TypeArray:
		return "ARRAY"
	case TypeGroup:
		return "GROUP"
	case TypeSubset:
		return "SUBSET"
	case TypeExec:
		return "EXEC"
	default:
		return fmt.Sprintf("ObjectType(%d)", int(t))
	}
}

// IsContainer reports whether GET/FETCH may walk this object's children.
func (t ObjectType) IsContainer() bool {
	return t == TypeGroup || t == TypeExec
}

// IsScalar reports whether the type is encoded as a single CBOR/JSON leaf
// value rather than a composite (ARRAY) or container (GROUP/EXEC/SUBSET).
func (t ObjectType) IsScalar() bool {
	switch t {
	case TypeArray, TypeGroup, TypeSubset, TypeExec:
		return false
	default:
		return true
	}
}

// Role selects an access right.
type Role uint8

const (
	RoleUser   Role = 1 << 0
	RoleExpert Role = 1 << 1
	RoleMaker  Role = 1 << 2
)

// RoleMask is the 16-bit mask consumed from the host: low byte read roles,
// high byte write roles.
type RoleMask uint16

func NewRoleMask(read, write Role) RoleMask {
	return RoleMask(uint16(read) | uint16(write)<<8)
}

func (m RoleMask) Read() Role  { return Role(m & 0xFF) }
func (m RoleMask) Write() Role { return Role(m >> 8) }

// Access is the object's own 16-bit access mask: low byte is the set of
// roles allowed to read, high byte the set of roles allowed to write.
type Access uint16

func NewAccess(read, write Role) Access {
	return Access(uint16(read) | uint16(write)<<8)
}

func (a Access) ReadRoles() Role  { return Role(a & 0xFF) }
func (a Access) WriteRoles() Role { return Role(a >> 8) }

// CanRead reports whether caller (as a read-role bitmask) may read an object
// with this access mask: permitted iff the intersection is non-empty.
func (a Access) CanRead(caller Role) bool {
	return uint8(a.ReadRoles())&uint8(caller) != 0
}

func (a Access) CanWrite(caller Role) bool {
	return uint8(a.WriteRoles())&uint8(caller) != 0
}

// Reserved object ids. 0x16 and 0x17 are never assigned to a real object:
// they are the wire grammar's virtual discovery endpoints, resolved by the
// dispatcher before any registry lookup happens.
const (
	IDRoot        uint16 = 0x0000
	IDTime        uint16 = 0x0010
	IDMetadataURL uint16 = 0x0018
	IDDeviceID    uint16 = 0x001D
	IDInvalid     uint16 = 0xFFFF

	// Request-only virtual discovery endpoints; never appear in the registry.
	IDDiscoverIDs   uint16 = 0x0016
	IDDiscoverPaths uint16 = 0x0017
)

// GroupCallback fires at most once per successful PATCH that touched any
// child of the group, after all writes in that PATCH have committed.
type GroupCallback func() error

// ExecFunc is the bounded function object an EXEC object carries. args are
// already-decoded, in the declared order of the EXEC's child parameters.
// It returns an optional result value (nil for no content) or an error.
type ExecFunc func(args []interface{}) (interface{}, error)

// Object is a single addressable node in the server tree. Structural fields
// (ID, ParentID, Name, Type, Detail and the value storage pointer) are set at
// construction and never change; Subsets and Access are the mutable meta the
// handler suite is allowed to rewrite under the context mutex.
type Object struct {
	ID       uint16
	ParentID uint16
	Name     string
	Type     ObjectType
	// Detail carries a type-specific integer: decimal digits for F32,
	// base-10 exponent for DECFRAC, buffer capacity for STRING/BYTES,
	// subset bitmask for SUBSET, ignored otherwise.
	Detail int32

	Subsets uint16
	Access  Access

	storage storage

	// Group carries an optional post-write callback; only meaningful for
	// TypeGroup.
	Group GroupCallback

	// Exec carries the invocable function; only meaningful for TypeExec.
	Exec ExecFunc
}

// storage is the borrowed backing value. Exactly one concrete kind is ever
// installed on an Object, selected by Type; the New* constructors enforce
// that pairing so the codec and handlers never have to guess.
type storage interface {
	isStorage()
}

func (o *Object) setStorage(s storage) { o.storage = s }
