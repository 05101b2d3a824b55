package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// SyncHandler serves /api/sync.
type SyncHandler struct {
	Svc *service.SyncService
}

func NewSyncHandler(sync *service.SyncService) *SyncHandler {
	return &SyncHandler{Svc: sync}
}

// Sync replays a batch of offline changes. Per-item failures are reported
// in syncResults; the response is 200 as long as the batch was accepted.
func (h *SyncHandler) Sync(c echo.Context) error {
	var req service.SyncRequest
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Sync(ctx, actor(c), req)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(res.SyncResults), res)
}

// Services returns the catalog changed after ?lastSync (RFC 3339). A
// missing or unparsable value returns everything.
func (h *SyncHandler) Services(c echo.Context) error {
	var since *time.Time
	if v := c.QueryParam("lastSync"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = &t
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	snap, err := h.Svc.UpdatedServices(ctx, since)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(snap.Services), snap)
}
