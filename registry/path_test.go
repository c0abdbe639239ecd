package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pathTestRegistry(t *testing.T) *Registry {
	t.Helper()
	var batV, batA float32
	objs := []Object{
		NewGroup(0x200, IDRoot, "meas", NewAccess(RoleUser, 0), 0, nil),
		NewF32(0x201, 0x200, "Bat_V", &batV, 2, NewAccess(RoleUser, 0), 0),
		NewF32(0x202, 0x200, "Bat_A", &batA, 2, NewAccess(RoleUser, 0), 0),
	}
	r, err := New(objs)
	require.NoError(t, err)
	return r
}

func TestResolvePath_Root(t *testing.T) {
	r := pathTestRegistry(t)

	res, err := r.ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, IDRoot, res.Object.ID)

	res, err = r.ResolvePath("/")
	require.NoError(t, err)
	require.True(t, res.Listing)
}

func TestResolvePath_Nested(t *testing.T) {
	r := pathTestRegistry(t)

	res, err := r.ResolvePath("meas/Bat_V")
	require.NoError(t, err)
	require.Equal(t, "Bat_V", res.Object.Name)
	require.False(t, res.Listing)
}

func TestResolvePath_TrailingSlashIsListing(t *testing.T) {
	r := pathTestRegistry(t)

	res, err := r.ResolvePath("meas/")
	require.NoError(t, err)
	require.Equal(t, "meas", res.Object.Name)
	require.True(t, res.Listing)
}

func TestResolvePath_NoPartialStateOnFailure(t *testing.T) {
	r := pathTestRegistry(t)

	_, err := r.ResolvePath("meas/NoSuchThing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.ResolvePath("NoSuchGroup/Bat_V")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePath_RecordIndex(t *testing.T) {
	r := pathTestRegistry(t)
	var vals [4]interface{}
	obj, arr := NewArray(0x210, 0x200, "Log", TypeF32, 4, NewAccess(RoleUser, 0), 0)
	_ = arr.Set([]interface{}{float32(1), float32(2), float32(3)})
	_ = vals

	reg, err := New(append([]Object{obj}, r.objects...))
	require.NoError(t, err)

	res, err := reg.ResolvePath("meas/Log/1")
	require.NoError(t, err)
	require.True(t, res.HasRecord)
	require.Equal(t, 1, res.RecordIndex)
	require.Equal(t, "Log", res.Object.Name)
}
