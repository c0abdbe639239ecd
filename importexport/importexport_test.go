package importexport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thingset-io/thingset-core/registry"
)

func buildRegistry(t *testing.T) (*registry.Registry, *float32, *int64) {
	t.Helper()
	var v float32 = 11.25
	var n int64 = 7

	objs := []registry.Object{
		registry.NewF32(0x401, registry.IDRoot, "LoadDisconnect_V", &v, 2, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 1),
		registry.NewI64(0x402, registry.IDRoot, "Count", &n, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 0),
	}
	reg, err := registry.New(objs)
	require.NoError(t, err)
	return reg, &v, &n
}

func TestExport_OnlyIncludesTaggedObjects(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	buf, err := Export(reg, 1, 0)
	require.NoError(t, err)
	require.NotEmpty(t, buf)

	var v2 float32
	var n2 int64
	reg2, err := registry.New([]registry.Object{
		registry.NewF32(0x401, registry.IDRoot, "LoadDisconnect_V", &v2, 2, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 1),
		registry.NewI64(0x402, registry.IDRoot, "Count", &n2, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 0),
	})
	require.NoError(t, err)

	require.NoError(t, Import(reg2, buf))
	require.InDelta(t, 11.25, v2, 0.001)
	require.EqualValues(t, 0, n2) // not tagged, not exported, unchanged
}

func TestImport_BypassesRoleCheck(t *testing.T) {
	reg, v, _ := buildRegistry(t)
	buf, err := Export(reg, 1, 0)
	require.NoError(t, err)

	*v = 0
	require.NoError(t, Import(reg, buf))
	require.InDelta(t, 11.25, *v, 0.001)
}

func TestImport_SkipsUnknownIDs(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	buf, err := Export(reg, 1, 0)
	require.NoError(t, err)

	var extra float32 = 99
	extraObj := registry.NewF32(0x999, registry.IDRoot, "Ghost", &extra, 1, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 1)
	biggerReg, err := registry.New([]registry.Object{extraObj})
	require.NoError(t, err)

	require.NoError(t, Import(biggerReg, buf))
}

func TestImport_TypeMismatchAbortsAtomically(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	buf, err := Export(reg, 1, 0)
	require.NoError(t, err)

	var mismatched bool
	var other int64 = 5
	reg2, err := registry.New([]registry.Object{
		registry.NewBool(0x401, registry.IDRoot, "LoadDisconnect_V", &mismatched, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 1),
		registry.NewI64(0x402, registry.IDRoot, "Count", &other, registry.NewAccess(registry.RoleUser, registry.RoleMaker), 0),
	})
	require.NoError(t, err)

	err = Import(reg2, buf)
	require.Error(t, err)
	require.False(t, mismatched)
}
