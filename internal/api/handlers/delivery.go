package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/logger"
	"github.com/rbxbridge/rbxbridge/internal/wire"
)

// DeliveryHandler serves the endpoints polled by places.
type DeliveryHandler struct {
	bridge *bridge.Bridge
}

func NewDeliveryHandler(b *bridge.Bridge) *DeliveryHandler {
	return &DeliveryHandler{bridge: b}
}

// Receive handles GET /api/receive?context=&placeId=
//
// 200 carries a batch, 204 means nothing is queued and 409 means the poll is
// not for the current target (the body advertises the target).
//
// A missing context means Edit. A context name that is not recognised never
// drains a queue and is answered with 409.
func (h *DeliveryHandler) Receive(c *gin.Context) {
	placeID := parsePlaceID(c.Query("placeId"))
	ctx := bridge.ContextEdit
	if raw, ok := c.GetQuery("context"); ok && raw != "" {
		parsed, known := bridge.ParseContext(raw)
		if !known {
			s := h.bridge.Snapshot()
			c.JSON(http.StatusConflict, wire.MismatchResponse{
				Error:         "unknown context " + raw,
				TargetContext: string(s.TargetContext),
				TargetPlaceID: s.TargetPlaceID,
			})
			return
		}
		ctx = parsed
	}

	jobs, err := h.bridge.Drain(ctx, placeID)
	if err != nil {
		resp := wire.MismatchResponse{Error: err.Error()}
		var mismatch *bridge.MismatchError
		if errors.As(err, &mismatch) {
			resp.TargetContext = string(mismatch.TargetContext)
			resp.TargetPlaceID = mismatch.TargetPlaceID
		}
		c.JSON(http.StatusConflict, resp)
		return
	}
	if len(jobs) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, wire.DrainResponse{Jobs: wire.FromJobs(jobs)})
}

// ListPlaces handles GET /api/places
func (h *DeliveryHandler) ListPlaces(c *gin.Context) {
	c.JSON(http.StatusOK, wire.FromPlaces(h.bridge.Places()))
}

// ActiveContexts handles GET /api/contexts
func (h *DeliveryHandler) ActiveContexts(c *gin.Context) {
	active := h.bridge.ActiveContexts()
	names := make([]string, len(active))
	for i, ctx := range active {
		names[i] = string(ctx)
	}
	c.JSON(http.StatusOK, wire.ContextsResponse{ActiveContexts: names})
}

// GetStatus handles GET /api/status
func (h *DeliveryHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, wire.StatusResponse{TargetContext: string(h.bridge.TargetContext())})
}

// PostStatus handles POST /api/status
//
// The report is always acknowledged, even when it cannot be used, so one
// misbehaving agent never sees errors it might retry in a loop.
func (h *DeliveryHandler) PostStatus(c *gin.Context) {
	var req wire.StatusReport
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warnf("[delivery] ignoring malformed status report: %v", err)
		c.JSON(http.StatusOK, wire.Ack{Success: true})
		return
	}

	report, ok := wire.FromStatusReport(req)
	if !ok {
		logger.Warnf("[delivery] ignoring status report without PlaceId")
		c.JSON(http.StatusOK, wire.Ack{Success: true})
		return
	}
	logger.Debugf("[delivery] status: place %d %s active=%t", report.PlaceID, report.Context, report.Active)
	h.bridge.ReportStatus(report)
	c.JSON(http.StatusOK, wire.Ack{Success: true})
}

// Disconnect handles POST /api/disconnect
func (h *DeliveryHandler) Disconnect(c *gin.Context) {
	var req wire.DisconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PlaceID == nil {
		logger.Warnf("[delivery] ignoring disconnect without PlaceId")
		c.JSON(http.StatusOK, wire.Ack{Success: true})
		return
	}
	h.bridge.Deregister(*req.PlaceID)
	c.JSON(http.StatusOK, wire.Ack{Success: true})
}

// Ping handles GET /api/ping
func (h *DeliveryHandler) Ping(c *gin.Context) {
	h.bridge.Ping()
	c.String(http.StatusOK, "OK")
}

// parsePlaceID parses a place id query value; empty or unparsable values are
// treated as absent, which a targeted bridge rejects with its target.
func parsePlaceID(raw string) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
