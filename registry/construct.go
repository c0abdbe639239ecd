package registry

// NewBool declares a BOOL object backed by p.
func NewBool(id, parent uint16, name string, p *bool, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeBool, Access: access, Subsets: subsets}
	o.setStorage(boolStorage{p})
	return o
}

func NewU8(id, parent uint16, name string, p *uint8, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeU8, Access: access, Subsets: subsets}
	o.setStorage(u8Storage{p})
	return o
}

func NewI8(id, parent uint16, name string, p *int8, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeI8, Access: access, Subsets: subsets}
	o.setStorage(i8Storage{p})
	return o
}

func NewU16(id, parent uint16, name string, p *uint16, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeU16, Access: access, Subsets: subsets}
	o.setStorage(u16Storage{p})
	return o
}

func NewI16(id, parent uint16, name string, p *int16, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeI16, Access: access, Subsets: subsets}
	o.setStorage(i16Storage{p})
	return o
}

func NewU32(id, parent uint16, name string, p *uint32, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeU32, Access: access, Subsets: subsets}
	o.setStorage(u32Storage{p})
	return o
}

func NewI32(id, parent uint16, name string, p *int32, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeI32, Access: access, Subsets: subsets}
	o.setStorage(i32Storage{p})
	return o
}

func NewU64(id, parent uint16, name string, p *uint64, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeU64, Access: access, Subsets: subsets}
	o.setStorage(u64Storage{p})
	return o
}

func NewI64(id, parent uint16, name string, p *int64, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeI64, Access: access, Subsets: subsets}
	o.setStorage(i64Storage{p})
	return o
}

// NewF32 declares a FLOAT32 object; digits is the number of fractional
// digits used by the text codec, and zero digits makes the binary codec
// encode the rounded integer instead of a float.
func NewF32(id, parent uint16, name string, p *float32, digits int32, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeF32, Detail: digits, Access: access, Subsets: subsets}
	o.setStorage(f32Storage{p})
	return o
}

// NewDecFrac declares a DECFRAC object: value = *p * 10^exponent.
// exponent must be in [-24, 23].
func NewDecFrac(id, parent uint16, name string, p *int64, exponent int32, access Access, subsets uint16) Object {
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeDecFrac, Detail: exponent, Access: access, Subsets: subsets}
	o.setStorage(decFracStorage{p})
	return o
}

// NewString declares a STRING object. capacity is the full buffer size
// (including the reserved terminator byte).
func NewString(id, parent uint16, name string, capacity int, access Access, subsets uint16) (Object, *StringStorage) {
	s := &StringStorage{Buf: make([]byte, capacity)}
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeString, Detail: int32(capacity), Access: access, Subsets: subsets}
	o.setStorage(s)
	return o, s
}

// NewBytes declares a BYTES object with the given buffer capacity.
func NewBytes(id, parent uint16, name string, capacity int, access Access, subsets uint16) (Object, *BytesStorage) {
	s := &BytesStorage{Buf: make([]byte, capacity)}
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeBytes, Detail: int32(capacity), Access: access, Subsets: subsets}
	o.setStorage(s)
	return o, s
}

// NewArray declares an ARRAY object with a homogeneous element type and the
// given capacity.
func NewArray(id, parent uint16, name string, elem ObjectType, capacity int, access Access, subsets uint16) (Object, *ArrayStorage) {
	s := &ArrayStorage{Elem: elem, Values: make([]interface{}, capacity)}
	o := Object{ID: id, ParentID: parent, Name: name, Type: TypeArray, Detail: int32(capacity), Access: access, Subsets: subsets}
	o.setStorage(s)
	return o, s
}

// NewGroup declares a container object. cb, if non-nil, fires at most once
// per successful PATCH that wrote any of its children.
func NewGroup(id, parent uint16, name string, access Access, subsets uint16, cb GroupCallback) Object {
	return Object{ID: id, ParentID: parent, Name: name, Type: TypeGroup, Access: access, Subsets: subsets, Group: cb}
}

// NewSubset declares a virtual SUBSET object; mask is the subset bit this
// object represents (its Detail field).
func NewSubset(id, parent uint16, name string, mask uint16, access Access) Object {
	return Object{ID: id, ParentID: parent, Name: name, Type: TypeSubset, Detail: int32(mask), Access: access}
}

// NewExec declares an invocable object. Its children (added to the registry
// separately, with ParentID == id) are its positional parameters in
// declaration order.
func NewExec(id, parent uint16, name string, fn ExecFunc, access Access) Object {
	return Object{ID: id, ParentID: parent, Name: name, Type: TypeExec, Access: access, Exec: fn}
}
