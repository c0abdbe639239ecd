package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thingset-io/thingset-core/registry"
	"github.com/thingset-io/thingset-core/wire/binary"
)

const (
	idConf       uint16 = 0x200
	idLoadDiscV  uint16 = 0x201
	idInfo       uint16 = 0x210
	idTimestampS uint16 = 0x211
	idRPC        uint16 = 0x220
	idReset      uint16 = 0x221
	idReport     uint16 = 0x230
	idMeas       uint16 = 0x240
	idBatV       uint16 = 0x241
	idBatA       uint16 = 0x242
	idLog        uint16 = 0x243
)

func buildDemoRegistry(t *testing.T, resetCalled *bool) (*registry.Registry, *float32, *int64) {
	t.Helper()

	var loadDisconnect float32 = 10.8
	var timestamp int64 = 1

	resetFn := registry.ExecFunc(func(args []interface{}) (interface{}, error) {
		*resetCalled = true
		return nil, nil
	})

	objs := []registry.Object{
		registry.NewGroup(idConf, registry.IDRoot, "conf", registry.NewAccess(registry.RoleUser|registry.RoleExpert, registry.RoleExpert), 0, nil),
		registry.NewF32(idLoadDiscV, idConf, "LoadDisconnect_V", &loadDisconnect, 2,
			registry.NewAccess(registry.RoleUser|registry.RoleExpert, registry.RoleExpert), 0),

		registry.NewGroup(idInfo, registry.IDRoot, "info", registry.NewAccess(registry.RoleUser|registry.RoleExpert, registry.RoleMaker), 0, nil),
		registry.NewI64(idTimestampS, idInfo, "Timestamp_s", &timestamp,
			registry.NewAccess(registry.RoleUser|registry.RoleExpert, registry.RoleMaker), 0),

		registry.NewGroup(idRPC, registry.IDRoot, "rpc", registry.NewAccess(registry.RoleUser|registry.RoleExpert, 0), 0, nil),
		registry.NewExec(idReset, idRPC, "x-reset", resetFn, registry.NewAccess(0, registry.RoleUser|registry.RoleExpert)),

		registry.NewSubset(idReport, registry.IDRoot, ".report", 1, registry.NewAccess(registry.RoleUser|registry.RoleExpert, registry.RoleUser|registry.RoleExpert)),

		registry.NewGroup(idMeas, registry.IDRoot, "meas", registry.NewAccess(registry.RoleUser|registry.RoleExpert, 0), 0, nil),
	}
	var batV float32 = 14.104
	var batA float32 = 5.134
	logObj, logStore := registry.NewArray(idLog, idMeas, "log", registry.TypeI32, 8,
		registry.NewAccess(registry.RoleUser|registry.RoleExpert, 0), 0)
	require.NoError(t, logStore.Set([]interface{}{int64(10), int64(20), int64(30), int64(40)}))
	objs = append(objs,
		registry.NewF32(idBatV, idMeas, "Bat_V", &batV, 2, registry.NewAccess(registry.RoleUser|registry.RoleExpert, 0), 0),
		registry.NewF32(idBatA, idMeas, "Bat_A", &batA, 2, registry.NewAccess(registry.RoleUser|registry.RoleExpert, 0), 0),
		logObj,
	)

	reg, err := registry.New(objs)
	require.NoError(t, err)
	return reg, &loadDisconnect, &timestamp
}

func userCtx(reg *registry.Registry) *Context {
	return NewContext(reg, registry.NewRoleMask(registry.RoleUser, registry.RoleUser))
}

func TestTextGet_RootListing(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, "?/")
	require.Contains(t, resp, ":85 Content.")
	require.Contains(t, resp, `"conf"`)
	require.Contains(t, resp, `"meas"`)
}

func TestTextGet_RecordIndexAddressesArrayElement(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, "?meas/log/2")
	require.Equal(t, ":85 Content. 30", resp)
}

func TestTextGet_RecordIndexOutOfRange(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, "?meas/log/99")
	require.Equal(t, ":A4 Not Found.", resp)
}

func TestBinaryGet_RecordIndexAddressesArrayElement(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	res, err := reg.ResolvePath("meas/log/2")
	require.NoError(t, err)
	require.True(t, res.HasRecord)

	w := binary.NewWriter(0)
	require.NoError(t, w.WriteTextString("meas/log/2"))
	req := append([]byte{wireGet}, w.Bytes()...)
	resp := DispatchBinary(ctx, req)
	require.Equal(t, byte(StatusContent), resp[0])

	item, err := binary.NewReader(resp[1:]).ReadItem()
	require.NoError(t, err)
	v, err := item.AsInt()
	require.NoError(t, err)
	require.EqualValues(t, 30, v)
}

func TestTextPatch_ChangesValueAndFiresNoCallbackWhenUnwatched(t *testing.T) {
	var fired bool
	reg, loadDisc, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)
	ctx.Role = registry.NewRoleMask(registry.RoleUser|registry.RoleExpert, registry.RoleExpert)
	updated := false
	ctx.UpdateCallback = func() { updated = true }

	resp := DispatchText(ctx, `=conf {"LoadDisconnect_V":11.25}`)
	require.Equal(t, ":84 Changed.", resp)
	require.InDelta(t, 11.25, *loadDisc, 0.001)
	require.False(t, updated)
}

func TestTextPatch_UnauthorizedLeavesValueUnchanged(t *testing.T) {
	var fired bool
	reg, _, timestamp := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg) // USER role only, Timestamp_s needs MAKER to write

	resp := DispatchText(ctx, `=info {"Timestamp_s":99}`)
	require.Equal(t, ":A1 Unauthorized.", resp)
	require.EqualValues(t, 1, *timestamp)
}

func TestTextFetch_ArraySelection(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, `?meas ["Bat_V","Bat_A"]`)
	require.Equal(t, ":85 Content. [14.10,5.13]", resp)
}

func TestTextPost_ExecInvokes(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, "!rpc/x-reset")
	require.Equal(t, ":83 Valid.", resp)
	require.True(t, fired)
}

func TestTextPost_SubsetAppendThenDelete(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, `+.report "Bat_V"`)
	require.Equal(t, ":84 Changed.", resp)

	batV, err := reg.ByID(idBatV)
	require.NoError(t, err)
	require.EqualValues(t, 1, batV.Subsets)

	resp = DispatchText(ctx, `-.report "Bat_V"`)
	require.Equal(t, ":82 Deleted.", resp)
	require.EqualValues(t, 0, batV.Subsets)
}

func TestTextGet_DiscoverPaths(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, "?_paths")
	require.Contains(t, resp, ":85 Content.")
	require.Contains(t, resp, `"meas/Bat_V"`)
}

func TestCompactResponses_OmitsHumanMessage(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)
	ctx.CompactResponses = true

	resp := DispatchText(ctx, "!rpc/x-reset")
	require.Equal(t, ":83.", resp)
}

func TestBinaryGet_SingleValue(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	w := binary.NewWriter(0)
	require.NoError(t, w.WriteUint(uint64(idBatV)))
	req := append([]byte{wireGet}, w.Bytes()...)

	resp := DispatchBinary(ctx, req)
	require.Equal(t, byte(StatusContent), resp[0])

	r := binary.NewReader(resp[1:])
	item, err := r.ReadItem()
	require.NoError(t, err)
	f, err := item.AsFloat()
	require.NoError(t, err)
	require.InDelta(t, 14.104, f, 0.001)
}

func TestBinaryPatch_MapOfScalars(t *testing.T) {
	var fired bool
	reg, loadDisc, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)
	ctx.Role = registry.NewRoleMask(registry.RoleUser|registry.RoleExpert, registry.RoleExpert)

	w := binary.NewWriter(0)
	require.NoError(t, w.WriteTextString("conf"))
	require.NoError(t, w.WriteMapHeader(1))
	require.NoError(t, w.WriteTextString("LoadDisconnect_V"))
	require.NoError(t, w.WriteFloat32(12.5, false))
	req := append([]byte{wirePatch}, w.Bytes()...)

	resp := DispatchBinary(ctx, req)
	require.Equal(t, []byte{byte(StatusChanged)}, resp)
	require.InDelta(t, 12.5, *loadDisc, 0.01)
}

func TestBinaryDiscoverIDs(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	w := binary.NewWriter(0)
	require.NoError(t, w.WriteUint(uint64(registry.IDDiscoverIDs)))
	req := append([]byte{wireGet}, w.Bytes()...)

	resp := DispatchBinary(ctx, req)
	require.Equal(t, byte(StatusContent), resp[0])
	r := binary.NewReader(resp[1:])
	item, err := r.ReadItem()
	require.NoError(t, err)
	require.Equal(t, binary.KindArray, item.Kind)
	require.Greater(t, item.ArrayLen, 0)
}

func TestGroupCallback_FiresOnceForMultiplePatchedChildren(t *testing.T) {
	var calls int
	var a, b float32 = 1, 2
	grp := registry.NewGroup(0x300, registry.IDRoot, "g", registry.NewAccess(registry.RoleUser, registry.RoleUser), 0, func() error {
		calls++
		return nil
	})
	oa := registry.NewF32(0x301, 0x300, "A", &a, 1, registry.NewAccess(registry.RoleUser, registry.RoleUser), 0)
	ob := registry.NewF32(0x302, 0x300, "B", &b, 1, registry.NewAccess(registry.RoleUser, registry.RoleUser), 0)
	reg, err := registry.New([]registry.Object{grp, oa, ob})
	require.NoError(t, err)

	ctx := NewContext(reg, registry.NewRoleMask(registry.RoleUser, registry.RoleUser))
	resp := DispatchText(ctx, `=g {"A":3,"B":4}`)
	require.Equal(t, ":84 Changed.", resp)
	require.Equal(t, 1, calls)
}

func TestBufferPool_AcquireTimeoutIsInternal(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	pool := NewFixedBufferPool(1, 256)
	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(held)

	ctx.Pool = pool
	ctx.BufferTimeout = time.Millisecond

	resp := DispatchText(ctx, "?/")
	require.Equal(t, ":C0 Internal Server Error.", resp)

	bresp := DispatchBinary(ctx, []byte{wireGet, 0x60})
	require.Equal(t, []byte{byte(StatusInternal)}, bresp)
}

func TestBufferPool_ResponseOverflowIsTooLarge(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)
	ctx.Pool = NewFixedBufferPool(1, 4)

	resp := DispatchText(ctx, "?/")
	require.Equal(t, ":E1 Response Too Large.", resp)
}

func TestSubsetMember_RequiresWriteAccess(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	rep, err := reg.ByID(idReport)
	require.NoError(t, err)
	rep.Access = registry.NewAccess(registry.RoleUser|registry.RoleExpert, registry.RoleMaker)

	resp := DispatchText(ctx, `+.report "Bat_V"`)
	require.Equal(t, ":A1 Unauthorized.", resp)
}

func TestSubsetMember_AcceptsPathPayload(t *testing.T) {
	var fired bool
	reg, _, _ := buildDemoRegistry(t, &fired)
	ctx := userCtx(reg)

	resp := DispatchText(ctx, `+.report "meas/Bat_V"`)
	require.Equal(t, ":84 Changed.", resp)

	batV, err := reg.ByID(idBatV)
	require.NoError(t, err)
	require.EqualValues(t, 1, batV.Subsets)
}

func TestTextPatch_ArrayElementMismatchCommitsNothing(t *testing.T) {
	var a float32 = 1.5
	grp := registry.NewGroup(0x300, registry.IDRoot, "g", registry.NewAccess(registry.RoleUser, registry.RoleUser), 0, nil)
	oa := registry.NewF32(0x301, 0x300, "A", &a, 1, registry.NewAccess(registry.RoleUser, registry.RoleUser), 0)
	logObj, logStore := registry.NewArray(0x302, 0x300, "log", registry.TypeI32, 4,
		registry.NewAccess(registry.RoleUser, registry.RoleUser), 0)
	require.NoError(t, logStore.Set([]interface{}{int64(1), int64(2)}))
	reg, err := registry.New([]registry.Object{grp, oa, logObj})
	require.NoError(t, err)

	ctx := NewContext(reg, registry.NewRoleMask(registry.RoleUser, registry.RoleUser))

	// The scalar entry is valid; the array entry's second element is not.
	// Nothing may commit, including the scalar that validated first.
	resp := DispatchText(ctx, `=g {"A":9.5,"log":[3,"x",5]}`)
	require.Equal(t, ":AF Unsupported Format.", resp)
	require.InDelta(t, 1.5, a, 0.001)
	require.Equal(t, []interface{}{int64(1), int64(2)}, logStore.Get())
}
