package scheduling

import (
	"context"
	"errors"
	"time"

	common "flowify/internal/domain/common"
)

// ========================================
// 入出力DTO
// ========================================

// UpdateSchedulingInput は部分更新。nil のフィールドは変更しない。
type UpdateSchedulingInput struct {
	CustomerName  *string
	CustomerPhone *string
	Address       *Address
	ProductID     *string
	ProductName   *string
	Quantity      *int
	Platform      *common.Platform
	Status        *Status
	ScheduledFor  *time.Time
}

// Filter は一覧取得の条件（空値は無条件）。
type Filter struct {
	Status   Status
	Platform common.Platform
	Created  common.TimeRange
}

// Matches applies the filter in memory.
func (f Filter) Matches(s Scheduling) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.Platform != "" && s.Platform != f.Platform {
		return false
	}
	if !f.Created.Contains(s.CreatedAt) {
		return false
	}
	return true
}

// ========================================
// Repository Port
// ========================================

// Repository is scoped per tenant: every call carries the owner uid and
// touches users/{uid}/agendamentos only.
type Repository interface {
	GetByID(ctx context.Context, uid, id string) (Scheduling, error)
	List(ctx context.Context, uid string, filter Filter) ([]Scheduling, error)
	Count(ctx context.Context, uid string, filter Filter) (int, error)

	Create(ctx context.Context, uid string, s Scheduling) (Scheduling, error)
	Update(ctx context.Context, uid, id string, in UpdateSchedulingInput) (Scheduling, error)
	Delete(ctx context.Context, uid, id string) error
}

// 共通エラー（契約）
var (
	ErrNotFound = errors.New("scheduling: not found")
)
