package prescheduling

import (
	"context"
	"errors"
	"time"

	common "flowify/internal/domain/common"
)

// UpdatePreSchedulingInput は部分更新。nil のフィールドは変更しない。
type UpdatePreSchedulingInput struct {
	CustomerName     *string
	CustomerWhatsapp *string
	Address          *Address
	ProductID        *string
	ProductName      *string
	Quantity         *int
	Platform         *common.Platform
	ExpectedDate     *time.Time
	Status           *Status
}

// Apply returns p with the non-nil fields of in set, normalized.
func (p PreScheduling) Apply(in UpdatePreSchedulingInput) PreScheduling {
	if in.CustomerName != nil {
		p.CustomerName = *in.CustomerName
	}
	if in.CustomerWhatsapp != nil {
		p.CustomerWhatsapp = *in.CustomerWhatsapp
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.ProductID != nil {
		p.ProductID = *in.ProductID
	}
	if in.ProductName != nil {
		p.ProductName = *in.ProductName
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.Platform != nil {
		p.Platform = *in.Platform
	}
	if in.ExpectedDate != nil {
		p.ExpectedDate = in.ExpectedDate.UTC()
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	return p.normalize()
}

// Filter は一覧取得の条件（空値は無条件）。
type Filter struct {
	Status  Status
	Created common.TimeRange
}

func (f Filter) Matches(p PreScheduling) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return f.Created.Contains(p.CreatedAt)
}

// Repository is scoped to users/{uid}/preAgendamentos. List returns newest first.
type Repository interface {
	GetByID(ctx context.Context, uid, id string) (PreScheduling, error)
	List(ctx context.Context, uid string, filter Filter) ([]PreScheduling, error)
	Count(ctx context.Context, uid string, filter Filter) (int, error)

	Create(ctx context.Context, uid string, p PreScheduling) (PreScheduling, error)
	Update(ctx context.Context, uid, id string, in UpdatePreSchedulingInput) (PreScheduling, error)
	Delete(ctx context.Context, uid, id string) error
}

var ErrNotFound = errors.New("prescheduling: not found")
