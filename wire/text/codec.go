package text

import (
	"strings"

	"github.com/thingset-io/thingset-core/registry"
)

// EncodeValue renders obj's current value as JSON text. ARRAY
// values render as a JSON array; an empty array renders as "[]" regardless
// of element type.
func EncodeValue(obj *registry.Object) (string, error) {
	switch obj.Type {
	case registry.TypeBool:
		v, err := obj.Bool()
		if err != nil {
			return "", err
		}
		if v {
			return "true", nil
		}
		return "false", nil
	case registry.TypeU8, registry.TypeU16, registry.TypeU32, registry.TypeU64,
		registry.TypeI8, registry.TypeI16, registry.TypeI32, registry.TypeI64:
		v, err := obj.Int()
		if err != nil {
			return "", err
		}
		return itoa(v), nil
	case registry.TypeF32:
		v, err := obj.Float()
		if err != nil {
			return "", err
		}
		return RenderFloat(v, obj.Detail), nil
	case registry.TypeDecFrac:
		m, err := obj.DecFracRaw()
		if err != nil {
			return "", err
		}
		if obj.Detail < -24 || obj.Detail > 23 {
			return "", registry.Newf(registry.ErrKindInternal, "DECFRAC exponent %d out of range [-24,23]", obj.Detail)
		}
		return RenderDecFrac(m, obj.Detail), nil
	case registry.TypeString:
		s, err := obj.String_()
		if err != nil {
			return "", err
		}
		return RenderString(s.Get()), nil
	case registry.TypeBytes:
		b, err := obj.Bytes()
		if err != nil {
			return "", err
		}
		return RenderString(hexEncode(b.Get())), nil
	case registry.TypeArray:
		arr, err := obj.Array()
		if err != nil {
			return "", err
		}
		vals := arr.Get()
		if len(vals) == 0 {
			return "[]", nil
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = renderScalar(arr.Elem, v, obj.Detail)
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	default:
		return "", registry.Newf(registry.ErrKindBadRequest, "object %q has no scalar value (type %s)", obj.Name, obj.Type)
	}
}

// EncodeArrayElement renders the single record at index within obj's
// ArrayStorage as JSON text, the text-wire half of record-index addressing.
func EncodeArrayElement(obj *registry.Object, index int) (string, error) {
	arr, err := obj.Array()
	if err != nil {
		return "", err
	}
	v, err := arr.GetIndex(index)
	if err != nil {
		return "", err
	}
	return renderScalar(arr.Elem, v, obj.Detail), nil
}

func renderScalar(elem registry.ObjectType, v interface{}, digits int32) string {
	switch elem {
	case registry.TypeBool:
		if v.(bool) {
			return "true"
		}
		return "false"
	case registry.TypeF32:
		return RenderFloat(float64(v.(float32)), digits)
	default:
		return itoa(toInt64(v))
	}
}

// DecodeInto stores val into obj, type-checking against obj's declared
// type; a mismatch reports Unsupported Format.
func DecodeInto(obj *registry.Object, val Value) error {
	switch obj.Type {
	case registry.TypeBool:
		if val.Kind != VKBool {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected bool for %q", obj.Name)
		}
		return obj.SetBool(val.Bool)
	case registry.TypeU8, registry.TypeU16, registry.TypeU32, registry.TypeU64,
		registry.TypeI8, registry.TypeI16, registry.TypeI32, registry.TypeI64:
		n, err := asInt(val)
		if err != nil {
			return err
		}
		return obj.SetInt(n)
	case registry.TypeF32:
		f, err := asFloat(val)
		if err != nil {
			return err
		}
		return obj.SetFloat(f)
	case registry.TypeDecFrac:
		// A wire decimal fraction carries its own exponent, which need not
		// match the object's fixed one: store the mantissa raw only when
		// they agree, otherwise rescale through SetFloat.
		if val.Kind == VKDecFrac && val.DecE == obj.Detail {
			return obj.SetDecFracRaw(val.DecM)
		}
		f, err := asFloat(val)
		if err != nil {
			return err
		}
		return obj.SetFloat(f)
	case registry.TypeString:
		if val.Kind != VKString {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected string for %q", obj.Name)
		}
		s, err := obj.String_()
		if err != nil {
			return err
		}
		return s.Set(val.Text)
	case registry.TypeBytes:
		if val.Kind != VKString {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected hex-string for %q", obj.Name)
		}
		decoded, err := hexDecode(val.Text)
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding bytes for "+obj.Name)
		}
		b, err := obj.Bytes()
		if err != nil {
			return err
		}
		return b.Set(decoded)
	default:
		return registry.Newf(registry.ErrKindUnsupportedFormat, "object %q is not writable", obj.Name)
	}
}

// CheckAssignable reports whether val can be decoded into obj without
// storing it.
func CheckAssignable(obj *registry.Object, val Value) error {
	switch obj.Type {
	case registry.TypeBool:
		if val.Kind != VKBool {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected bool for %q", obj.Name)
		}
		return nil
	case registry.TypeU8, registry.TypeU16, registry.TypeU32, registry.TypeU64,
		registry.TypeI8, registry.TypeI16, registry.TypeI32, registry.TypeI64:
		n, err := asInt(val)
		if err != nil {
			return err
		}
		return obj.CheckInt(n)
	case registry.TypeF32:
		f, err := asFloat(val)
		if err != nil {
			return err
		}
		return obj.CheckFloat(f)
	case registry.TypeDecFrac:
		if val.Kind == VKDecFrac && val.DecE == obj.Detail {
			return nil
		}
		f, err := asFloat(val)
		if err != nil {
			return err
		}
		return obj.CheckFloat(f)
	case registry.TypeString:
		if val.Kind != VKString {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected string for %q", obj.Name)
		}
		s, err := obj.String_()
		if err != nil {
			return err
		}
		if !s.WouldFit(val.Text) {
			return registry.Newf(registry.ErrKindBadRequest, "string value exceeds capacity %d", s.Capacity()-1)
		}
		return nil
	case registry.TypeBytes:
		if val.Kind != VKString {
			return registry.Newf(registry.ErrKindUnsupportedFormat, "expected hex-string for %q", obj.Name)
		}
		decoded, err := hexDecode(val.Text)
		if err != nil {
			return registry.Wrap(registry.ErrKindUnsupportedFormat, err, "decoding bytes for "+obj.Name)
		}
		b, err := obj.Bytes()
		if err != nil {
			return err
		}
		if !b.WouldFit(decoded) {
			return registry.Newf(registry.ErrKindBadRequest, "bytes value exceeds capacity %d", b.Capacity())
		}
		return nil
	default:
		return registry.Newf(registry.ErrKindUnsupportedFormat, "object %q is not writable", obj.Name)
	}
}

// DecodeArray stores val (must be VKArray) into obj's ArrayStorage.
func DecodeArray(obj *registry.Object, val Value) error {
	if val.Kind != VKArray {
		return registry.Newf(registry.ErrKindUnsupportedFormat, "expected array for %q", obj.Name)
	}
	arr, err := obj.Array()
	if err != nil {
		return err
	}
	vals, err := DecodeArrayElements(arr.Elem, val.Array)
	if err != nil {
		return err
	}
	return arr.Set(vals)
}

// DecodeArrayElements converts items to stored element values of the given
// type without writing them anywhere, so callers (the PATCH handler's
// validate pass) can stage a decoded array value before committing it.
func DecodeArrayElements(elem registry.ObjectType, items []Value) ([]interface{}, error) {
	vals := make([]interface{}, len(items))
	for i, item := range items {
		switch elem {
		case registry.TypeBool:
			if item.Kind != VKBool {
				return nil, registry.Newf(registry.ErrKindUnsupportedFormat, "expected bool array element")
			}
			vals[i] = item.Bool
		case registry.TypeF32:
			f, err := asFloat(item)
			if err != nil {
				return nil, err
			}
			vals[i] = float32(f)
		default:
			n, err := asInt(item)
			if err != nil {
				return nil, err
			}
			vals[i] = n
		}
	}
	return vals, nil
}

func asInt(v Value) (int64, error) {
	switch v.Kind {
	case VKInt:
		return v.Int, nil
	case VKFloat:
		return int64(v.Float), nil
	default:
		return 0, registry.Newf(registry.ErrKindUnsupportedFormat, "expected integer")
	}
}

func asFloat(v Value) (float64, error) {
	switch v.Kind {
	case VKFloat:
		return v.Float, nil
	case VKInt:
		return float64(v.Int), nil
	case VKDecFrac:
		return decFracValue(v.DecM, v.DecE), nil
	default:
		return 0, registry.Newf(registry.ErrKindUnsupportedFormat, "expected number")
	}
}

func decFracValue(m int64, e int32) float64 {
	f := float64(m)
	for i := int32(0); i < e; i++ {
		f *= 10
	}
	for i := int32(0); i > e; i-- {
		f /= 10
	}
	return f
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
