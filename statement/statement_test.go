package statement

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/binary"
)

func buildTree(t *testing.T) (*registry.Registry, *registry.Object, *registry.Object) {
	t.Helper()
	var batV, batA float32 = 14.1, 5.1

	grp := registry.NewGroup(0x100, registry.IDRoot, "meas", registry.NewAccess(registry.RoleUser, 0), 0, nil)
	oa := registry.NewF32(0x101, 0x100, "Bat_V", &batV, 1, registry.NewAccess(registry.RoleUser, 0), 1)
	ob := registry.NewF32(0x102, 0x100, "Bat_A", &batA, 1, registry.NewAccess(registry.RoleUser, 0), 1)
	sub := registry.NewSubset(0x110, registry.IDRoot, ".report", 1, registry.NewAccess(registry.RoleUser, registry.RoleUser))

	reg, err := registry.New([]registry.Object{grp, oa, ob, sub})
	require.NoError(t, err)

	group, err := reg.ByID(0x100)
	require.NoError(t, err)
	subset, err := reg.ByID(0x110)
	require.NoError(t, err)
	return reg, group, subset
}

func TestBuildText_Group(t *testing.T) {
	reg, grp, _ := buildTree(t)
	s, err := BuildText(reg, grp)
	require.NoError(t, err)
	require.Equal(t, `#meas {"Bat_V":14.1,"Bat_A":5.1}`, s)
}

func TestBuildText_Subset(t *testing.T) {
	reg, _, sub := buildTree(t)
	s, err := BuildText(reg, sub)
	require.NoError(t, err)
	require.Equal(t, `#.report {"Bat_V":14.1,"Bat_A":5.1}`, s)
}

func TestBuildText_NestedEndpointYieldsEmpty(t *testing.T) {
	reg, grp, _ := buildTree(t)
	child, err := reg.ByID(0x101)
	require.NoError(t, err)
	_ = grp
	s, err := BuildText(reg, child)
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestBuildBinary_Group(t *testing.T) {
	reg, grp, _ := buildTree(t)
	out, err := BuildBinary(reg, grp, 0)
	require.NoError(t, err)
	require.Equal(t, byte(0x1F), out[0])

	r := binary.NewReader(out[1:])
	idItem, err := r.ReadItem()
	require.NoError(t, err)
	require.EqualValues(t, 0x100, idItem.Uint)

	arrItem, err := r.ReadItem()
	require.NoError(t, err)
	require.Equal(t, binary.KindArray, arrItem.Kind)
	require.Equal(t, 2, arrItem.ArrayLen)
}

func TestBuildBinary_NestedEndpointYieldsNil(t *testing.T) {
	reg, _, _ := buildTree(t)
	child, err := reg.ByID(0x101)
	require.NoError(t, err)
	out, err := BuildBinary(reg, child, 0)
	require.NoError(t, err)
	require.Nil(t, out)
}
