// Package httpapi serves the dispatcher's action contract as plain JSON over gin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/ridesplit/internal/dispatch"
	"github.com/mmynk/ridesplit/internal/metrics"
)

// LedgerHandler exposes the ledger actions under /api/ledger.
type LedgerHandler struct {
	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Metrics
}

func NewLedgerHandler(dispatcher *dispatch.Dispatcher, m *metrics.Metrics) *LedgerHandler {
	return &LedgerHandler{dispatcher: dispatcher, metrics: m}
}

// NewRouter builds the gin engine serving the JSON API.
func NewRouter(h *LedgerHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/ledger", h.Snapshot)
	api.POST("/ledger", h.Action)
	return r
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(kind dispatch.Kind) int {
	switch kind {
	case dispatch.KindValidation:
		return http.StatusBadRequest
	case dispatch.KindNotFound:
		return http.StatusNotFound
	case dispatch.KindConflict:
		return http.StatusConflict
	case dispatch.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *LedgerHandler) Snapshot(c *gin.Context) {
	h.serve(c, dispatch.Request{Action: dispatch.ActionSnapshot})
}

func (h *LedgerHandler) Action(c *gin.Context) {
	var req dispatch.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dispatch.Response{Error: &dispatch.ErrorBody{
			Kind:    dispatch.KindValidation,
			Message: "malformed request body: " + err.Error(),
		}})
		return
	}
	h.serve(c, req)
}

func (h *LedgerHandler) serve(c *gin.Context, req dispatch.Request) {
	start := time.Now()

	resp, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		body := dispatch.NewErrorBody(err)
		h.observe(req.Action, string(body.Kind), start)
		c.JSON(StatusFor(body.Kind), dispatch.Response{Error: body})
		return
	}

	h.observe(req.Action, "ok", start)
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) observe(action, code string, start time.Time) {
	if h.metrics == nil {
		return
	}
	if action == "" {
		action = "none"
	}
	h.metrics.Observe(metrics.TransportHTTP, action, code, time.Since(start))
}
