package server

import (
	"net/http"
	"time"

	planchangedomain "github.com/FresyMetal/isr-crm/internal/planchange/domain"
	"github.com/gin-gonic/gin"
)

type planChangeRequest struct {
	NewPlanID int64  `json:"new_plan_id"`
	ChangeAt  string `json:"change_at"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	Actor     string `json:"actor"`
}

func (s *Server) PreviewPlanChange(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req planChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	changeAt, ok := parseChangeAt(c, req.ChangeAt)
	if !ok {
		return
	}

	resp, err := s.planChangeSvc.Preview(c.Request.Context(), planchangedomain.PreviewRequest{
		CustomerID: id,
		NewPlanID:  req.NewPlanID,
		ChangeAt:   changeAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ChangePlan(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req planChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	changeAt, ok := parseChangeAt(c, req.ChangeAt)
	if !ok {
		return
	}

	resp, err := s.planChangeSvc.Execute(c.Request.Context(), planchangedomain.ChangeRequest{
		CustomerID: id,
		NewPlanID:  req.NewPlanID,
		ChangeAt:   changeAt,
		Reason:     req.Reason,
		Notes:      req.Notes,
		Actor:      req.Actor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomerPlanChanges(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := s.planChangeSvc.History(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseChangeAt(c *gin.Context, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Accept plain dates too.
		parsed, err = time.Parse("2006-01-02", value)
		if err != nil {
			AbortWithError(c, newValidationError("change_at", "invalid_change_at", "invalid change_at"))
			return nil, false
		}
	}
	return &parsed, true
}
