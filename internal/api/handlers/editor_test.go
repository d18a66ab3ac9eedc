package handlers

import (
	"net/http"
	"testing"

	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	b := bridge.New()
	b.Register("A", 4)
	r := newTestRouter(b)

	w := do(t, r, http.MethodPost, "/editor/execute", `{"Code": "print(1)", "File": "main.lua"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[wire.ExecuteResponse](t, w)
	require.NotEmpty(t, resp.Job.ID)
	require.Equal(t, "Edit", resp.Job.Context)
	require.Equal(t, int64(4), *resp.Job.TargetPlaceID)
	require.Equal(t, 8, resp.Job.Bytes)
	require.Equal(t, 1, b.Snapshot().Queued[bridge.ContextEdit])
}

func TestExecute_InvalidInput(t *testing.T) {
	r := newTestRouter(bridge.New())

	w := do(t, r, http.MethodPost, "/editor/execute", `{"Code": "   "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, string(bridge.ErrCodeInvalidInput), decode[wire.ErrorResponse](t, w).Code)

	w = do(t, r, http.MethodPost, "/editor/execute", `nope`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTargetPlace(t *testing.T) {
	b := bridge.New()
	b.Register("A", 1)
	b.Register("B", 2)
	r := newTestRouter(b)

	w := do(t, r, http.MethodPost, "/editor/target/place", `{"PlaceId": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[wire.State](t, w)
	require.Equal(t, int64(2), *state.TargetPlaceID)
	require.Equal(t, "B", state.TargetPlaceName)

	state = decode[wire.State](t, do(t, r, http.MethodPost, "/editor/target/place/next", ""))
	require.Equal(t, int64(1), *state.TargetPlaceID)

	state = decode[wire.State](t, do(t, r, http.MethodPost, "/editor/target/place", `{"PlaceId": null}`))
	require.Nil(t, state.TargetPlaceID)

	require.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/editor/target/place", `[`).Code)
}

func TestTargetContext(t *testing.T) {
	b := bridge.New()
	b.Register("A", 1)
	r := newTestRouter(b)

	w := do(t, r, http.MethodPost, "/editor/target/context", `{"Context": "Server"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, string(bridge.ErrCodeContextInactive), decode[wire.ErrorResponse](t, w).Code)

	w = do(t, r, http.MethodPost, "/editor/target/context", `{"Context": "Studio"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/editor/target/context/next", "").Code)

	b.ReportActivity(1, bridge.ContextServer, true)
	b.ReportActivity(1, bridge.ContextClient, true)

	state := decode[wire.State](t, do(t, r, http.MethodPost, "/editor/target/context", `{"Context": "server"}`))
	require.Equal(t, "Server", state.TargetContext)
	require.True(t, state.ShowContextSwitch)

	state = decode[wire.State](t, do(t, r, http.MethodPost, "/editor/target/context/next", ""))
	require.Equal(t, "Client", state.TargetContext)

	state = decode[wire.State](t, do(t, r, http.MethodGet, "/editor/state", ""))
	require.Equal(t, "Client", state.TargetContext)
	require.Equal(t, []string{"Server", "Client"}, state.ActiveContexts)
}
