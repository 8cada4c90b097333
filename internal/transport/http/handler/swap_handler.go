package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewear-api/internal/swap"
	resp "rewear-api/internal/transport/http/response"
)

type SwapHandler struct {
	engine *swap.Engine
}

func NewSwapHandler(engine *swap.Engine) *SwapHandler { return &SwapHandler{engine: engine} }

func (h *SwapHandler) MountAPI(_, authed *gin.RouterGroup) {
	authed.POST("/swaps", h.Create)
	authed.GET("/swaps", h.List)
	authed.PUT("/swaps/:id/accept", h.Accept)
	authed.PUT("/swaps/:id/reject", h.Reject)
	authed.PUT("/swaps/:id/complete", h.Complete)
}

type createSwapIn struct {
	RequestedItem string `json:"requestedItem" binding:"required"`
	OfferedItem   string `json:"offeredItem" binding:"omitempty"`
	PointsOffered int    `json:"pointsOffered" binding:"omitempty,gte=0"`
	Message       string `json:"message" binding:"omitempty,max=500"`
}

func (h *SwapHandler) Create(c *gin.Context) {
	var in createSwapIn
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.engine.Create(c, userID(c), swap.CreateInput{
		RequestedItemID: in.RequestedItem,
		OfferedItemID:   in.OfferedItem,
		PointsOffered:   in.PointsOffered,
		Message:         in.Message,
	})
	if err != nil {
		writeWorkflowErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK("Swap request created successfully", gin.H{"swap": s}))
}

func (h *SwapHandler) List(c *gin.Context) {
	page, limit, offset := pageParams(c, 10)
	swaps, total, err := h.engine.List(c, userID(c), c.Query("status"), offset, limit)
	if err != nil {
		writeWorkflowErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK("OK", gin.H{
		"swaps":      swaps,
		"pagination": resp.NewPagination(page, limit, total),
	}))
}

func (h *SwapHandler) Accept(c *gin.Context) {
	s, err := h.engine.Accept(c, userID(c), c.Param("id"))
	if err != nil {
		writeWorkflowErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK("Swap request accepted successfully", gin.H{"swap": s}))
}

type rejectIn struct {
	RejectionReason string `json:"rejectionReason" binding:"required,min=1,max=300"`
}

func (h *SwapHandler) Reject(c *gin.Context) {
	var in rejectIn
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.engine.Reject(c, userID(c), c.Param("id"), in.RejectionReason)
	if err != nil {
		writeWorkflowErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK("Swap request rejected successfully", gin.H{"swap": s}))
}

func (h *SwapHandler) Complete(c *gin.Context) {
	s, err := h.engine.Complete(c, userID(c), c.Param("id"))
	if err != nil {
		writeWorkflowErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK("Swap completed successfully", gin.H{"swap": s}))
}
