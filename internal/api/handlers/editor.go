package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/wire"
)

// EditorHandler serves the endpoints used by editor integrations.
type EditorHandler struct {
	bridge *bridge.Bridge
}

func NewEditorHandler(b *bridge.Bridge) *EditorHandler {
	return &EditorHandler{bridge: b}
}

// Execute handles POST /editor/execute
func (h *EditorHandler) Execute(c *gin.Context) {
	var req wire.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: err.Error(), Code: string(bridge.ErrCodeInvalidInput)})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: "code is empty", Code: string(bridge.ErrCodeInvalidInput)})
		return
	}

	job := h.bridge.Execute(req.Code, req.File)
	c.JSON(http.StatusCreated, wire.ExecuteResponse{Job: wire.FromQueuedJob(job)})
}

// GetState handles GET /editor/state
func (h *EditorHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, wire.FromSnapshot(h.bridge.Snapshot()))
}

// SetTargetPlace handles POST /editor/target/place
func (h *EditorHandler) SetTargetPlace(c *gin.Context) {
	var req wire.TargetPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: err.Error(), Code: string(bridge.ErrCodeInvalidInput)})
		return
	}
	c.JSON(http.StatusOK, wire.FromSnapshot(h.bridge.SetTargetPlace(req.PlaceID)))
}

// NextTargetPlace handles POST /editor/target/place/next
func (h *EditorHandler) NextTargetPlace(c *gin.Context) {
	c.JSON(http.StatusOK, wire.FromSnapshot(h.bridge.CycleTargetPlace()))
}

// SetTargetContext handles POST /editor/target/context
func (h *EditorHandler) SetTargetContext(c *gin.Context) {
	var req wire.TargetContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: err.Error(), Code: string(bridge.ErrCodeInvalidInput)})
		return
	}
	ctx, ok := bridge.ParseContext(req.Context)
	if !ok {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Error: "unknown context " + req.Context, Code: string(bridge.ErrCodeInvalidInput)})
		return
	}

	snapshot, err := h.bridge.SetTargetContext(ctx)
	if err != nil {
		writeBridgeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromSnapshot(snapshot))
}

// NextTargetContext handles POST /editor/target/context/next
func (h *EditorHandler) NextTargetContext(c *gin.Context) {
	snapshot, err := h.bridge.CycleTargetContext()
	if err != nil {
		writeBridgeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.FromSnapshot(snapshot))
}

func writeBridgeError(c *gin.Context, err error) {
	code := bridge.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case bridge.ErrCodeContextInactive, bridge.ErrCodeTargetMismatch:
		status = http.StatusConflict
	case bridge.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	}
	c.JSON(status, wire.ErrorResponse{Error: err.Error(), Code: string(code)})
}
