package registry

// Scalar storage kinds borrow a pointer to the application-owned value. The
// registry never allocates or frees these; it only reads and writes through
// the pointer.

type boolStorage struct{ p *bool }
type u8Storage struct{ p *uint8 }
type i8Storage struct{ p *int8 }
type u16Storage struct{ p *uint16 }
type i16Storage struct{ p *int16 }
type u32Storage struct{ p *uint32 }
type i32Storage struct{ p *int32 }
type u64Storage struct{ p *uint64 }
type i64Storage struct{ p *int64 }
type f32Storage struct{ p *float32 }

// decFracStorage backs a DECFRAC value: value = *p * 10^Detail.
type decFracStorage struct{ p *int64 }

func (boolStorage) isStorage()    {}
func (u8Storage) isStorage()      {}
func (i8Storage) isStorage()      {}
func (u16Storage) isStorage()     {}
func (i16Storage) isStorage()     {}
func (u32Storage) isStorage()     {}
func (i32Storage) isStorage()     {}
func (u64Storage) isStorage()     {}
func (i64Storage) isStorage()     {}
func (f32Storage) isStorage()     {}
func (decFracStorage) isStorage() {}

// StringStorage backs a STRING object: Buf has the stated capacity, Len is
// the number of valid bytes currently stored (analogous to strlen).
type StringStorage struct {
	Buf []byte
	Len int
}

func (*StringStorage) isStorage() {}

func (s *StringStorage) Capacity() int { return len(s.Buf) }

// WouldFit reports whether v can be stored without writing it.
func (s *StringStorage) WouldFit(v string) bool { return len(v) <= len(s.Buf)-1 }

func (s *StringStorage) Get() string { return string(s.Buf[:s.Len]) }

// Set stores v, failing if it does not fit within capacity - 1; the last
// byte is reserved the way a C string reserves its terminator, so a value
// of exactly capacity bytes fails and capacity-1 succeeds.
func (s *StringStorage) Set(v string) error {
	if len(v) > len(s.Buf)-1 {
		return Newf(ErrKindBadRequest, "string value exceeds capacity %d", len(s.Buf)-1)
	}
	n := copy(s.Buf, v)
	s.Len = n
	return nil
}

// BytesStorage backs a BYTES object: Buf has the stated capacity, Len the
// number of valid bytes.
type BytesStorage struct {
	Buf []byte
	Len int
}

func (*BytesStorage) isStorage() {}

func (b *BytesStorage) Capacity() int { return len(b.Buf) }

// WouldFit reports whether v can be stored without writing it.
func (b *BytesStorage) WouldFit(v []byte) bool { return len(v) <= len(b.Buf) }

func (b *BytesStorage) Get() []byte { return b.Buf[:b.Len] }

func (b *BytesStorage) Set(v []byte) error {
	if len(v) > len(b.Buf) {
		return Newf(ErrKindBadRequest, "bytes value exceeds capacity %d", len(b.Buf))
	}
	n := copy(b.Buf, v)
	b.Len = n
	return nil
}

// ArrayStorage backs a homogeneous ARRAY object. Elem is the element type
// (must be scalar); Values holds up to Cap elements, Len of them valid.
type ArrayStorage struct {
	Elem   ObjectType
	Values []interface{}
	Len    int
}

func (*ArrayStorage) isStorage() {}

func (a *ArrayStorage) Capacity() int { return len(a.Values) }

// WouldFit reports whether vals can be stored without writing them.
func (a *ArrayStorage) WouldFit(vals []interface{}) bool { return len(vals) <= len(a.Values) }

func (a *ArrayStorage) Get() []interface{} { return a.Values[:a.Len] }

func (a *ArrayStorage) Set(vals []interface{}) error {
	if len(vals) > len(a.Values) {
		return Newf(ErrKindBadRequest, "array value exceeds capacity %d", len(a.Values))
	}
	copy(a.Values, vals)
	a.Len = len(vals)
	return nil
}

// GetIndex returns the record at i.
func (a *ArrayStorage) GetIndex(i int) (interface{}, error) {
	if i < 0 || i >= a.Len {
		return nil, Newf(ErrKindNotFound, "array index %d out of range (len=%d)", i, a.Len)
	}
	return a.Values[i], nil
}

func (a *ArrayStorage) SetIndex(i int, v interface{}) error {
	if i < 0 || i >= a.Len {
		return Newf(ErrKindNotFound, "array index %d out of range (len=%d)", i, a.Len)
	}
	a.Values[i] = v
	return nil
}

// --- typed Get/Set on Object, dispatched by Type. ---

func (o *Object) wrongType(op string) error {
	return Newf(ErrKindUnsupportedFormat, "%s: object %q has type %s", op, o.Name, o.Type)
}

// Bool returns the current value of a TypeBool object.
func (o *Object) Bool() (bool, error) {
	s, ok := o.storage.(boolStorage)
	if !ok {
		return false, o.wrongType("Bool")
	}
	return *s.p, nil
}

func (o *Object) SetBool(v bool) error {
	s, ok := o.storage.(boolStorage)
	if !ok {
		return o.wrongType("SetBool")
	}
	*s.p = v
	return nil
}

// Int returns any signed/unsigned integer-typed object widened to int64.
func (o *Object) Int() (int64, error) {
	switch s := o.storage.(type) {
	case u8Storage:
		return int64(*s.p), nil
	case i8Storage:
		return int64(*s.p), nil
	case u16Storage:
		return int64(*s.p), nil
	case i16Storage:
		return int64(*s.p), nil
	case u32Storage:
		return int64(*s.p), nil
	case i32Storage:
		return int64(*s.p), nil
	case u64Storage:
		return int64(*s.p), nil
	case i64Storage:
		return *s.p, nil
	default:
		return 0, o.wrongType("Int")
	}
}

// SetInt stores v into any integer-typed object, range-checking against the
// target width/signedness.
func (o *Object) SetInt(v int64) error {
	if err := o.CheckInt(v); err != nil {
		return err
	}
	switch s := o.storage.(type) {
	case u8Storage:
		*s.p = uint8(v)
	case i8Storage:
		*s.p = int8(v)
	case u16Storage:
		*s.p = uint16(v)
	case i16Storage:
		*s.p = int16(v)
	case u32Storage:
		*s.p = uint32(v)
	case i32Storage:
		*s.p = int32(v)
	case u64Storage:
		*s.p = uint64(v)
	case i64Storage:
		*s.p = v
	default:
		return o.wrongType("SetInt")
	}
	return nil
}

// CheckInt reports whether v fits the target integer width/signedness
// without writing it, so callers (the PATCH handler's validate pass) can
// type-check an entire request before committing any of it.
func (o *Object) CheckInt(v int64) error {
	switch o.storage.(type) {
	case u8Storage:
		if v < 0 || v > 0xFF {
			return Newf(ErrKindBadRequest, "value %d out of range for U8", v)
		}
	case i8Storage:
		if v < -0x80 || v > 0x7F {
			return Newf(ErrKindBadRequest, "value %d out of range for I8", v)
		}
	case u16Storage:
		if v < 0 || v > 0xFFFF {
			return Newf(ErrKindBadRequest, "value %d out of range for U16", v)
		}
	case i16Storage:
		if v < -0x8000 || v > 0x7FFF {
			return Newf(ErrKindBadRequest, "value %d out of range for I16", v)
		}
	case u32Storage:
		if v < 0 || v > 0xFFFFFFFF {
			return Newf(ErrKindBadRequest, "value %d out of range for U32", v)
		}
	case i32Storage:
		if v < -0x80000000 || v > 0x7FFFFFFF {
			return Newf(ErrKindBadRequest, "value %d out of range for I32", v)
		}
	case u64Storage:
		if v < 0 {
			return Newf(ErrKindBadRequest, "value %d out of range for U64", v)
		}
	case i64Storage:
		// no narrower than int64 itself
	default:
		return o.wrongType("SetInt")
	}
	return nil
}

// Float returns the value of a TypeF32 or TypeDecFrac object as a float64.
func (o *Object) Float() (float64, error) {
	switch s := o.storage.(type) {
	case f32Storage:
		return float64(*s.p), nil
	case decFracStorage:
		return decFracToFloat(*s.p, o.Detail), nil
	default:
		return 0, o.wrongType("Float")
	}
}

// SetFloat stores v, accepting an integer-valued float the same as a real
// one.
func (o *Object) SetFloat(v float64) error {
	switch s := o.storage.(type) {
	case f32Storage:
		*s.p = float32(v)
		return nil
	case decFracStorage:
		m, err := floatToDecFrac(v, o.Detail)
		if err != nil {
			return err
		}
		*s.p = m
		return nil
	default:
		return o.wrongType("SetFloat")
	}
}

// CheckFloat reports whether v can be stored without writing it.
func (o *Object) CheckFloat(v float64) error {
	switch o.storage.(type) {
	case f32Storage:
		return nil
	case decFracStorage:
		_, err := floatToDecFrac(v, o.Detail)
		return err
	default:
		return o.wrongType("SetFloat")
	}
}

// DecFracRaw returns the raw mantissa of a DECFRAC object (exponent is o.Detail).
func (o *Object) DecFracRaw() (int64, error) {
	s, ok := o.storage.(decFracStorage)
	if !ok {
		return 0, o.wrongType("DecFracRaw")
	}
	return *s.p, nil
}

func (o *Object) SetDecFracRaw(mantissa int64) error {
	s, ok := o.storage.(decFracStorage)
	if !ok {
		return o.wrongType("SetDecFracRaw")
	}
	*s.p = mantissa
	return nil
}

// String_ returns the storage of a TypeString object.
func (o *Object) String_() (*StringStorage, error) {
	s, ok := o.storage.(*StringStorage)
	if !ok {
		return nil, o.wrongType("String")
	}
	return s, nil
}

func (o *Object) Bytes() (*BytesStorage, error) {
	s, ok := o.storage.(*BytesStorage)
	if !ok {
		return nil, o.wrongType("Bytes")
	}
	return s, nil
}

func (o *Object) Array() (*ArrayStorage, error) {
	s, ok := o.storage.(*ArrayStorage)
	if !ok {
		return nil, o.wrongType("Array")
	}
	return s, nil
}

func decFracToFloat(mantissa int64, exponent int32) float64 {
	f := float64(mantissa)
	for i := int32(0); i < exponent; i++ {
		f *= 10
	}
	for i := int32(0); i > exponent; i-- {
		f /= 10
	}
	return f
}

func floatToDecFrac(v float64, exponent int32) (int64, error) {
	if exponent < -24 || exponent > 23 {
		return 0, Newf(ErrKindInternal, "DECFRAC exponent %d out of range [-24,23]", exponent)
	}
	scaled := v
	for i := int32(0); i < -exponent; i++ {
		scaled *= 10
	}
	for i := int32(0); i > -exponent; i-- {
		scaled /= 10
	}
	return int64(scaled + sign(scaled)*0.5), nil
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
