package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scanview/frontend/internal/model"
	"github.com/scanview/frontend/internal/scanclient"
	"github.com/scanview/frontend/internal/service"
)

// DashboardHandler serves the scan page and its JSON API. Both surfaces drive
// the same page commands on the dashboard.
type DashboardHandler struct {
	dashboard *service.Dashboard
	hub       *Hub
	logger    *slog.Logger
}

func NewDashboardHandler(dashboard *service.Dashboard, hub *Hub, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		hub:       hub,
		logger:    logger.With("area", "handler"),
	}
}

// pageView is the data of the "page" template.
type pageView struct {
	Page   service.Snapshot
	Alert  string
	Target string
}

type scanForm struct {
	Page string `form:"page"`
	URL  string `form:"url"`
}

// Index opens a new page. Each load starts with empty results and the
// history replayed from the scan service.
func (h *DashboardHandler) Index(c *gin.Context) {
	p := h.dashboard.Open(c.Request.Context())
	c.HTML(http.StatusOK, "page", pageView{Page: p.Snapshot()})
}

// Show renders an existing page along with the outcome of its last form post.
func (h *DashboardHandler) Show(c *gin.Context) {
	p, err := h.dashboard.Page(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	f := p.TakeFlash()
	c.HTML(http.StatusOK, "page", pageView{Page: p.Snapshot(), Alert: f.Alert, Target: f.Target})
}

// Scan handles the form post and redirects to the page, which shows the
// result or the alert. A post for a page that has expired runs on a fresh
// page.
func (h *DashboardHandler) Scan(c *gin.Context) {
	var form scanForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Info("failed to parse scan form", "error", err)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	ctx := scanContext(c)
	p, err := h.dashboard.Page(form.Page)
	if err != nil {
		p = h.dashboard.Open(ctx)
		h.logger.Info("scan posted for unknown page, opened a new one", "page", form.Page, "new_page", p.ID())
	}

	flash := service.Flash{Target: form.URL}
	if _, err := h.dashboard.Submit(ctx, p.ID(), form.URL); err != nil {
		flash.Alert = scanclient.AlertMessage(err)
	}
	p.SetFlash(flash)
	c.Redirect(http.StatusSeeOther, "/pages/"+p.ID())
}

// scanContext detaches a submission from the request. Once sent, a scan runs
// until the scan service answers or the client timeout fires.
func scanContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (h *DashboardHandler) OpenPage(c *gin.Context) {
	p := h.dashboard.Open(c.Request.Context())
	c.JSON(http.StatusCreated, p.Snapshot())
}

func (h *DashboardHandler) GetPage(c *gin.Context) {
	p, err := h.dashboard.Page(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

func (h *DashboardHandler) PageHistory(c *gin.Context) {
	p, err := h.dashboard.Page(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": p.History()})
}

func (h *DashboardHandler) ScanPage(c *gin.Context) {
	var request model.ScanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Info("failed to parse scan request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	snap, err := h.dashboard.Submit(scanContext(c), c.Param("id"), request.URL)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(submissionStatus(err), gin.H{"error": scanclient.AlertMessage(err)})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *DashboardHandler) ClosePage(c *gin.Context) {
	if err := h.dashboard.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe upgrades to a websocket that receives the page's new history
// entries.
func (h *DashboardHandler) Subscribe(c *gin.Context) {
	pageID := c.Query("page")
	if _, err := h.dashboard.Page(pageID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.hub.Serve(c.Writer, c.Request, pageID)
}

// submissionStatus maps a failed submission to a response status. Client
// errors reported by the scan service pass through; everything else from
// upstream is a bad gateway.
func submissionStatus(err error) int {
	if errors.Is(err, service.ErrScanInProgress) {
		return http.StatusConflict
	}
	var se *scanclient.SubmissionError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch {
	case se.StatusCode >= 400 && se.StatusCode < 500:
		return se.StatusCode
	case se.StatusCode == 0 && se.Err == nil:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
