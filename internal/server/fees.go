package server

import (
	"time"

	feedomain "github.com/classbill/classbill/internal/fee/domain"
	"github.com/gin-gonic/gin"
)

type createFeeRequest struct {
	StudentID string         `json:"student_id" binding:"required"`
	Amount    int64          `json:"amount" binding:"required"`
	Type      string         `json:"type" binding:"required"`
	DueDate   string         `json:"due_date"`
	Month     string         `json:"month"`
	Year      int            `json:"year"`
	Metadata  map[string]any `json:"metadata"`
}

func (s *Server) CreateFee(c *gin.Context) {
	var req createFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	create := feedomain.CreateRequest{
		StudentID: req.StudentID,
		Amount:    req.Amount,
		Type:      feedomain.Type(req.Type),
		Month:     req.Month,
		Year:      req.Year,
		Metadata:  req.Metadata,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.DateOnly, req.DueDate)
		if err != nil {
			AbortWithError(c, errInvalidRequest)
			return
		}
		create.DueDate = due
	}

	fee, err := s.feeSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, fee)
}

func (s *Server) ListFees(c *gin.Context) {
	fees, err := s.feeSvc.List(c.Request.Context(), feedomain.ListRequest{
		StudentID: c.Query("student_id"),
		TeacherID: c.Query("teacher_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, fees)
}

func (s *Server) GetFee(c *gin.Context) {
	fee, err := s.feeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, fee)
}

func (s *Server) DeleteFee(c *gin.Context) {
	if err := s.feeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, gin.H{"deleted": true})
}

type setFeeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetFeeStatus is the manual override endpoint; marking a fee paid behaves
// like a payment covering the balance, including rollover.
func (s *Server) SetFeeStatus(c *gin.Context) {
	var req setFeeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	fee, err := s.feeSvc.SetStatus(c.Request.Context(), c.Param("id"), feedomain.Status(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, fee)
}
