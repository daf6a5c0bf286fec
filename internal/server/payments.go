package server

import (
	"time"

	paymentdomain "github.com/classbill/classbill/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

type recordPaymentRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Date   string `json:"date"`
	Method string `json:"method"`
	Note   string `json:"note"`
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	record := paymentdomain.RecordRequest{
		FeeID:  c.Param("id"),
		Amount: req.Amount,
		Method: req.Method,
		Note:   req.Note,
	}
	if req.Date != "" {
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			AbortWithError(c, errInvalidRequest)
			return
		}
		record.Date = date
	}

	resp, err := s.paymentSvc.Record(c.Request.Context(), record)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}
