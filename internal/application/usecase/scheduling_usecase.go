// internal/application/usecase/scheduling_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	common "flowify/internal/domain/common"
	productdom "flowify/internal/domain/product"
	schedulingdom "flowify/internal/domain/scheduling"
)

// DefaultWhatsappTemplate は利用者がテンプレートを設定していない場合の文面。
const DefaultWhatsappTemplate = "Olá {cliente}, tudo bem? Sua entrega do produto {produto} (x{quantidade}) está agendada para o dia {data}. Por favor, confirme o endereço: {endereco}. Obrigado!"

// SchedulingUsecase manages the actor's pending deliveries.
type SchedulingUsecase struct {
	repo         schedulingdom.Repository
	products     ConversionProductReader
	entitlements *EntitlementUsecase

	// 月次上限の「月」を決めるタイムゾーン
	loc *time.Location
	now func() time.Time
}

func NewSchedulingUsecase(
	repo schedulingdom.Repository,
	products ConversionProductReader,
	entitlements *EntitlementUsecase,
	loc *time.Location,
) *SchedulingUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulingUsecase{
		repo:         repo,
		products:     products,
		entitlements: entitlements,
		loc:          loc,
		now:          time.Now,
	}
}

func (u *SchedulingUsecase) WithNow(now func() time.Time) *SchedulingUsecase {
	u.now = now
	return u
}

type CreateSchedulingInput struct {
	CustomerName  string
	CustomerPhone string
	Address       schedulingdom.Address
	ProductID     string
	Quantity      int
	Platform      common.Platform
	Status        schedulingdom.Status
	ScheduledFor  time.Time
}

// ============================================================
// Queries
// ============================================================

func (u *SchedulingUsecase) GetByID(ctx context.Context, actor *Actor, id string) (schedulingdom.Scheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}
	return u.repo.GetByID(ctx, uid, strings.TrimSpace(id))
}

func (u *SchedulingUsecase) List(ctx context.Context, actor *Actor, filter schedulingdom.Filter) ([]schedulingdom.Scheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	return u.repo.List(ctx, uid, filter)
}

// MonthlyCount counts schedulings created in the current calendar month.
func (u *SchedulingUsecase) MonthlyCount(ctx context.Context, actor *Actor) (int, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return 0, err
	}
	return u.repo.Count(ctx, uid, schedulingdom.Filter{
		Created: common.MonthRange(u.now().In(u.loc)),
	})
}

// ============================================================
// Commands
// ============================================================

// Create stores a new scheduling after checking the product reference and
// the plan's monthly limit. The product name is cached on the record.
func (u *SchedulingUsecase) Create(ctx context.Context, actor *Actor, in CreateSchedulingInput) (schedulingdom.Scheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}

	now := u.now()
	s, err := schedulingdom.New(
		"",
		in.CustomerName,
		in.CustomerPhone,
		in.Address,
		in.ProductID,
		"",
		in.Quantity,
		in.Platform,
		in.Status,
		in.ScheduledFor,
		now,
	)
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}

	prod, err := u.products.GetByID(ctx, uid, s.ProductID)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return schedulingdom.Scheduling{}, fmt.Errorf("%w: productId=%s", ErrProductNotFound, s.ProductID)
		}
		return schedulingdom.Scheduling{}, err
	}
	s.ProductName = prod.Name

	if u.entitlements != nil {
		pl, err := u.entitlements.ActivePlan(ctx, actor)
		if err != nil {
			return schedulingdom.Scheduling{}, err
		}
		count, err := u.MonthlyCount(ctx, actor)
		if err != nil {
			return schedulingdom.Scheduling{}, err
		}
		if !pl.CanAddScheduling(count) {
			return schedulingdom.Scheduling{}, ErrPlanLimitReached
		}
	}

	return u.repo.Create(ctx, uid, s)
}

// Update applies a partial edit. When the product changes, its cached name
// is refreshed from the catalog.
func (u *SchedulingUsecase) Update(ctx context.Context, actor *Actor, id string, in schedulingdom.UpdateSchedulingInput) (schedulingdom.Scheduling, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return schedulingdom.Scheduling{}, schedulingdom.ErrInvalidID
	}

	cur, err := u.repo.GetByID(ctx, uid, id)
	if err != nil {
		return schedulingdom.Scheduling{}, err
	}

	if in.ProductID = trimPtr(in.ProductID); in.ProductID != nil && *in.ProductID != cur.ProductID {
		prod, err := u.products.GetByID(ctx, uid, *in.ProductID)
		if err != nil {
			if errors.Is(err, productdom.ErrNotFound) {
				return schedulingdom.Scheduling{}, fmt.Errorf("%w: productId=%s", ErrProductNotFound, *in.ProductID)
			}
			return schedulingdom.Scheduling{}, err
		}
		in.ProductName = ptr(prod.Name)
	}

	// 保存される値と検証する値を一致させるため、先に正規化する
	in = normalizeSchedulingPatch(in)

	// 適用後の値で検証してから保存する
	next := applySchedulingPatch(cur, in)
	if err := next.Validate(); err != nil {
		return schedulingdom.Scheduling{}, err
	}
	return u.repo.Update(ctx, uid, id, in)
}

// Confirm moves Agendar → Agendado. Independent of conversion.
func (u *SchedulingUsecase) Confirm(ctx context.Context, actor *Actor, id string) (schedulingdom.Scheduling, error) {
	st := schedulingdom.StatusScheduled
	return u.Update(ctx, actor, id, schedulingdom.UpdateSchedulingInput{Status: &st})
}

func (u *SchedulingUsecase) Delete(ctx context.Context, actor *Actor, id string) error {
	uid, err := requireActor(actor)
	if err != nil {
		return err
	}
	return u.repo.Delete(ctx, uid, strings.TrimSpace(id))
}

// ============================================================
// WhatsApp confirmation
// ============================================================

// WhatsappLink builds the api.whatsapp.com link that asks the customer to
// confirm the delivery. Requires a plan with a non-zero confirmation allowance.
func (u *SchedulingUsecase) WhatsappLink(ctx context.Context, actor *Actor, id string) (string, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return "", err
	}

	template := DefaultWhatsappTemplate
	if u.entitlements != nil {
		pl, err := u.entitlements.ActivePlan(ctx, actor)
		if err != nil {
			return "", err
		}
		if !pl.CanSendWhatsapp() {
			return "", ErrFeatureNotInPlan
		}
		usr, err := u.entitlements.Profile(ctx, actor)
		if err != nil {
			return "", err
		}
		if t := strings.TrimSpace(usr.WhatsappMessageTemplate); t != "" {
			template = t
		}
	}

	s, err := u.repo.GetByID(ctx, uid, strings.TrimSpace(id))
	if err != nil {
		return "", err
	}
	return BuildWhatsappLink(template, s, u.loc), nil
}

// BuildWhatsappLink fills the template placeholders (first occurrence of each)
// and returns the share URL.
func BuildWhatsappLink(template string, s schedulingdom.Scheduling, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	msg := template
	msg = strings.Replace(msg, "{cliente}", s.CustomerName, 1)
	msg = strings.Replace(msg, "{produto}", s.ProductName, 1)
	msg = strings.Replace(msg, "{quantidade}", strconv.Itoa(s.Quantity), 1)
	msg = strings.Replace(msg, "{data}", s.ScheduledFor.In(loc).Format("02/01/2006"), 1)
	msg = strings.Replace(msg, "{endereco}", s.DisplayAddress(), 1)

	// encodeURIComponent 相当（空白は %20）
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return "https://api.whatsapp.com/send?phone=" + url.QueryEscape(s.CustomerPhone) + "&text=" + text
}

// ============================================================
// Helpers
// ============================================================

// normalizeSchedulingPatch trims the string fields of a patch. Blank values
// stay non-nil so that validation rejects them instead of skipping them.
func normalizeSchedulingPatch(in schedulingdom.UpdateSchedulingInput) schedulingdom.UpdateSchedulingInput {
	in.CustomerName = trimKeep(in.CustomerName)
	in.CustomerPhone = trimKeep(in.CustomerPhone)
	in.ProductName = trimKeep(in.ProductName)
	if in.Address != nil {
		in.Address = ptr(in.Address.Normalize())
	}
	if in.Platform != nil {
		in.Platform = ptr(common.Platform(strings.TrimSpace(string(*in.Platform))))
	}
	if in.Status != nil {
		in.Status = ptr(schedulingdom.Status(strings.TrimSpace(string(*in.Status))))
	}
	return in
}

func applySchedulingPatch(s schedulingdom.Scheduling, in schedulingdom.UpdateSchedulingInput) schedulingdom.Scheduling {
	if in.CustomerName != nil {
		s.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		s.CustomerPhone = *in.CustomerPhone
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.ProductID != nil {
		s.ProductID = *in.ProductID
	}
	if in.ProductName != nil {
		s.ProductName = *in.ProductName
	}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	if in.Platform != nil {
		s.Platform = *in.Platform
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	if in.ScheduledFor != nil {
		s.ScheduledFor = *in.ScheduledFor
	}
	return s
}
