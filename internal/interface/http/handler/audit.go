package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appaudit "github.com/xiebiao/logitrax/internal/application/audit"
	"github.com/xiebiao/logitrax/pkg/response"
)

const maxAuditLimit = 500

// AuditHandler 审计日志查询（只读）
type AuditHandler struct {
	recorder *appaudit.Recorder
}

func NewAuditHandler(recorder *appaudit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// AuditEntryResponse 审计日志条目
type AuditEntryResponse struct {
	ID        uint      `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// Recent 最近的审计日志
// @Summary      最近的审计日志
// @Tags         审计模块
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "条数,默认50"
// @Success      200 {object} response.Response{data=[]AuditEntryResponse}
// @Failure      403 {object} response.Response "非管理员"
// @Router       /audit [get]
func (h *AuditHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.recorder.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		list[i] = AuditEntryResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Actor:     e.Actor,
			Action:    e.Action,
			Details:   e.Details,
		}
	}
	response.Success(c, list)
}
