package server

import (
	invoicedomain "github.com/classbill/classbill/internal/invoice/domain"
	"github.com/gin-gonic/gin"
)

type generateInvoicesRequest struct {
	Month string `json:"month" binding:"required"`
	Year  int    `json:"year" binding:"required"`
}

// GenerateInvoices creates the monthly fee for every eligible student of the
// calling tenant for one explicit period.
func (s *Server) GenerateInvoices(c *gin.Context) {
	var req generateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.GeneratePeriod(c.Request.Context(), invoicedomain.GenerateRequest{
		Month: req.Month,
		Year:  req.Year,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}
