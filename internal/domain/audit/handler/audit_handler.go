package handler

import (
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/audit/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/response"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	recorder service.Recorder
}

func NewAuditHandler(r service.Recorder) *AuditHandler {
	return &AuditHandler{recorder: r}
}

// GetEntries lists audit entries, newest first.
// @Summary List audit log entries
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/audit [get]
func (h *AuditHandler) GetEntries(c *gin.Context) {
	offset, limit := utils.Pagination(c)

	entries, total, err := h.recorder.GetList(c.Request.Context(), offset, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"entries": entries,
		"total":   total,
	})
}
