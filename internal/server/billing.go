package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type runBillingRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// RunBilling triggers a billing sweep. Without an explicit month the target
// period follows the cutover rule.
func (s *Server) RunBilling(c *gin.Context) {
	var req runBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		AbortWithError(c, invalidRequestError())
		return
	}

	month, year := s.billingSvc.NextPeriod()
	if req.Month != 0 || req.Year != 0 {
		if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
			AbortWithError(c, newValidationError("month", "invalid_period", "invalid billing period"))
			return
		}
		month = time.Month(req.Month)
		year = req.Year
	}

	result := s.billingSvc.GenerateMonthlyInvoices(c.Request.Context(), month, year, "manual")

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) NextBillingPeriod(c *gin.Context) {
	month, year := s.billingSvc.NextPeriod()

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"month": int(month),
		"year":  year,
	}})
}
