package binary

import (
	"github.com/thingset-io/thingset-core/registry"
)

// EncodeValue writes obj's current value to w, selecting the wire form from
// obj.Type.
func EncodeValue(w *Writer, obj *registry.Object) error {
	switch obj.Type {
	case registry.TypeBool:
		v, err := obj.Bool()
		if err != nil {
			return err
		}
		return w.WriteBool(v)
	case registry.TypeU8, registry.TypeU16, registry.TypeU32, registry.TypeU64,
		registry.TypeI8, registry.TypeI16, registry.TypeI32, registry.TypeI64:
		v, err := obj.Int()
		if err != nil {
			return err
		}
		return w.WriteInt(v)
	case registry.TypeF32:
		v, err := obj.Float()
		if err != nil {
			return err
		}
		return w.WriteFloat32(float32(v), obj.Detail == 0)
	case registry.TypeDecFrac:
		m, err := obj.DecFracRaw()
		if err != nil {
			return err
		}
		return w.WriteDecFrac(m, obj.Detail)
	case registry.TypeString:
		s, err := obj.String_()
		if err != nil {
			return err
		}
		return w.WriteTextString(s.Get())
	case registry.TypeBytes:
		b, err := obj.Bytes()
		if err != nil {
			return err
		}
		return w.WriteByteString(b.Get())
	case registry.TypeArray:
		arr, err := obj.Array()
		if err != nil {
			return err
		}
		vals := arr.Get()
		if err := w.WriteArrayHeader(len(vals)); err != nil {
			return err
		}
		for _, v := range vals {
			if err := writeScalar(w, arr.Elem, v); err != nil {
				return err
			}
		}
		return nil
	default:
		return registry.Newf(registry.ErrKindBadRequest, "object %q has no scalar value (type %s)", obj.Name, obj.Type)
	}
}

// EncodeArrayElement writes the single record at index within obj's
// ArrayStorage, the binary-wire half of record-index addressing.
func EncodeArrayElement(w *Writer, obj *registry.Object, index int) error {
	arr, err := obj.Array()
	if err != nil {
		return err
	}
	v, err := arr.GetIndex(index)
	if err != nil {
		return err
	}
	return writeScalar(w, arr.Elem, v)
}

func writeScalar(w *Writer, elem registry.ObjectType, v interface{}) error {
	switch elem {
	case registry.TypeBool:
		return w.WriteBool(v.(bool))
	case registry.TypeF32:
		return w.WriteFloat32(v.(float32), false)
	default:
		return w.WriteInt(toInt64(v))
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int8:
		return int64(n)
	case uint64:
		return int64(n)
	case uint32:
		return int64(n)
	case uint16:
		return int64(n)
	case uint8:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// DecodeInto parses item and stores it into obj, type-checking the item
// against obj's declared type; a failed decode or type mismatch reports
// Unsupported Format.
func DecodeInto(obj *registry.Object, item Item) error {
	switch obj.Type {
	case registry.TypeBool:
		if item.Kind != KindBool {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected bool for %q", obj.Name)
		}
		return obj.SetBool(item.Bool)
	case registry.TypeU8, registry.TypeU16, registry.TypeU32, registry.TypeU64,
		registry.TypeI8, registry.TypeI16, registry.TypeI32, registry.TypeI64:
		v, err := item.AsInt()
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding integer for "+obj.Name)
		}
		return obj.SetInt(v)
	case registry.TypeF32:
		v, err := item.AsFloat()
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding float for "+obj.Name)
		}
		return obj.SetFloat(v)
	case registry.TypeDecFrac:
		// A wire decimal fraction carries its own exponent, which need not
		// match the object's fixed one: store the mantissa raw only when
		// they agree, otherwise rescale through SetFloat.
		if item.Kind == KindDecFrac && item.DecFracE == obj.Detail {
			return obj.SetDecFracRaw(item.DecFracM)
		}
		v, err := item.AsFloat()
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding decfrac for "+obj.Name)
		}
		return obj.SetFloat(v)
	case registry.TypeString:
		if item.Kind != KindText {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected string for %q", obj.Name)
		}
		s, err := obj.String_()
		if err != nil {
			return err
		}
		return s.Set(item.Text)
	case registry.TypeBytes:
		if item.Kind != KindBytes {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected bytes for %q", obj.Name)
		}
		b, err := obj.Bytes()
		if err != nil {
			return err
		}
		return b.Set(item.Bytes)
	default:
		return registry.Newf(registry.ErrKindUnsupportedFormat, "object %q is not writable", obj.Name)
	}
}

// CheckAssignable reports whether item can be decoded into obj without
// storing it, letting PATCH validate an entire request before committing any
// of it.
func CheckAssignable(obj *registry.Object, item Item) error {
	switch obj.Type {
	case registry.TypeBool:
		if item.Kind != KindBool {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected bool for %q", obj.Name)
		}
		return nil
	case registry.TypeU8, registry.TypeU16, registry.TypeU32, registry.TypeU64,
		registry.TypeI8, registry.TypeI16, registry.TypeI32, registry.TypeI64:
		v, err := item.AsInt()
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding integer for "+obj.Name)
		}
		return obj.CheckInt(v)
	case registry.TypeF32:
		v, err := item.AsFloat()
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding float for "+obj.Name)
		}
		return obj.CheckFloat(v)
	case registry.TypeDecFrac:
		if item.Kind == KindDecFrac && item.DecFracE == obj.Detail {
			return nil
		}
		v, err := item.AsFloat()
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding decfrac for "+obj.Name)
		}
		return obj.CheckFloat(v)
	case registry.TypeString:
		if item.Kind != KindText {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected string for %q", obj.Name)
		}
		s, err := obj.String_()
		if err != nil {
			return err
		}
		if !s.WouldFit(item.Text) {
			return registry.Newf(registry.ErrKindBadRequest, "string value exceeds capacity %d", s.Capacity()-1)
		}
		return nil
	case registry.TypeBytes:
		if item.Kind != KindBytes {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected bytes for %q", obj.Name)
		}
		b, err := obj.Bytes()
		if err != nil {
			return err
		}
		if !b.WouldFit(item.Bytes) {
			return registry.Newf(registry.ErrKindBadRequest, "bytes value exceeds capacity %d", b.Capacity())
		}
		return nil
	default:
		return registry.Newf(registry.ErrKindUnsupportedFormat, "object %q is not writable", obj.Name)
	}
}

// DecodeArray reads n scalar items from r and stores them into obj's
// ArrayStorage (obj must be TypeArray). Used by PATCH/POST when an ARRAY
// object itself is the write target.
func DecodeArray(r *Reader, obj *registry.Object, n int) error {
	arr, err := obj.Array()
	if err != nil {
		return err
	}
	vals, err := DecodeArrayElements(r, arr.Elem, n)
	if err != nil {
		return err
	}
	return arr.Set(vals)
}

// DecodeArrayElements reads n scalar items of the given element type from r
// without storing them anywhere, so callers (the PATCH handler's validate
// pass) can stage a decoded array value before committing it.
func DecodeArrayElements(r *Reader, elem registry.ObjectType, n int) ([]interface{}, error) {
	vals := make([]interface{}, n)
	for i := 0; i < n; i++ {
		item, err := r.ReadItem()
		if err != nil {
			return nil, registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding array element")
		}
		v, err := scalarFromItem(elem, item)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func scalarFromItem(elem registry.ObjectType, item Item) (interface{}, error) {
	switch elem {
	case registry.TypeBool:
		if item.Kind != KindBool {
			return nil, registry.Newf(registry.ErrKindUnsupportedFormat, "expected bool array element")
		}
		return item.Bool, nil
	case registry.TypeF32:
		v, err := item.AsFloat()
		if err != nil {
			return nil, registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding float array element")
		}
		return float32(v), nil
	default:
		v, err := item.AsInt()
		if err != nil {
			return nil, registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding integer array element")
		}
		return v, nil
	}
}
