package domain

import (
	"context"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Fee, error)
	List(ctx context.Context, req ListRequest) ([]Fee, error)
	Get(ctx context.Context, id string) (*Fee, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status Status) (*Fee, error)
}

// CreateRequest adds a manual (non-generated) fee: one-time charges, class
// packages, per-class billing or custom amounts. Monthly fees may also be
// created manually for an explicit period.
type CreateRequest struct {
	StudentID string         `json:"student_id"`
	Amount    int64          `json:"amount"`
	Type      Type           `json:"type"`
	DueDate   time.Time      `json:"due_date"`
	Month     string         `json:"month,omitempty"`
	Year      int            `json:"year,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ListRequest struct {
	StudentID string
	// TeacherID narrows a superadmin query to one tenant; regular callers
	// are always scoped to their own tenant id from the context.
	TeacherID string
}
