// internal/application/usecase/scheduling_conversion_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	productdom "flowify/internal/domain/product"
	saledom "flowify/internal/domain/sale"
	schedulingdom "flowify/internal/domain/scheduling"
)

// ============================================================
// Ports
// ============================================================

// ConversionProductReader reads the owner's product catalog.
type ConversionProductReader interface {
	GetByID(ctx context.Context, uid, id string) (productdom.Product, error)
}

// ConversionSchedulingReader is used by ConvertByID to load the source record.
type ConversionSchedulingReader interface {
	GetByID(ctx context.Context, uid, id string) (schedulingdom.Scheduling, error)
}

// ConversionTx は 1 トランザクション内の操作。書き込みはコミット成功時にのみ反映される。
// Firestore の制約に合わせ、読み取りは書き込みより前に行うこと。
type ConversionTx interface {
	GetScheduling(ctx context.Context, id string) (schedulingdom.Scheduling, error)
	CreateSale(ctx context.Context, s saledom.Sale) (saledom.Sale, error)
	DeleteScheduling(ctx context.Context, id string) error
}

// SchedulingConversionStore runs fn atomically inside users/{uid}.
// fn may be invoked more than once when the store retries on contention.
type SchedulingConversionStore interface {
	RunConversion(ctx context.Context, uid string, fn func(ctx context.Context, tx ConversionTx) error) error
}

// ============================================================
// Errors
// ============================================================

var (
	// ErrProductNotFound: scheduling が参照する商品がカタログに無い（削除済みなど）。
	ErrProductNotFound = errors.New("usecase: product referenced by scheduling not found")

	// ErrPriceNotFound: 価格表に該当プラットフォームの行が無い。
	// 詳細は *productdom.PriceNotFoundError で取得できる。
	ErrPriceNotFound = productdom.ErrPriceNotFound

	// ErrSchedulingNotFound: トランザクション内で scheduling が既に存在しなかった
	// （二重変換・別タブでの削除など）。
	ErrSchedulingNotFound = errors.New("usecase: scheduling not found (already converted or deleted)")

	// ErrSchedulingChanged: 読み込み後に scheduling が編集された。売上は作成されない。
	ErrSchedulingChanged = errors.New("usecase: scheduling changed since it was read")

	// ErrTransactionFailure: 作成+削除がコミットされなかった、または結果不明。
	ErrTransactionFailure = errors.New("usecase: conversion transaction failed")
)

// IsRetryable reports whether a conversion error is transient. Only
// transaction failures qualify; callers must re-check that the scheduling
// still exists before retrying because a timed-out commit may have landed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransactionFailure)
}

// DefaultConversionTimeout bounds the atomic step.
const DefaultConversionTimeout = 10 * time.Second

// ============================================================
// Usecase
// ============================================================

// SchedulingConversionUsecase converts a pending Scheduling into a paid Sale.
type SchedulingConversionUsecase struct {
	products    ConversionProductReader
	schedulings ConversionSchedulingReader
	store       SchedulingConversionStore

	timeout time.Duration
	now     func() time.Time
}

func NewSchedulingConversionUsecase(
	products ConversionProductReader,
	schedulings ConversionSchedulingReader,
	store SchedulingConversionStore,
) *SchedulingConversionUsecase {
	return &SchedulingConversionUsecase{
		products:    products,
		schedulings: schedulings,
		store:       store,
		timeout:     DefaultConversionTimeout,
		now:         time.Now,
	}
}

func (u *SchedulingConversionUsecase) WithNow(now func() time.Time) *SchedulingConversionUsecase {
	u.now = now
	return u
}

// WithTimeout overrides the transaction timeout. Non-positive values are ignored.
func (u *SchedulingConversionUsecase) WithTimeout(d time.Duration) *SchedulingConversionUsecase {
	if d > 0 {
		u.timeout = d
	}
	return u
}

// ConvertByID loads the scheduling from the actor's namespace and converts it.
func (u *SchedulingConversionUsecase) ConvertByID(ctx context.Context, actor *Actor, schedulingID string) (saledom.Sale, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return saledom.Sale{}, err
	}
	id := strings.TrimSpace(schedulingID)
	if id == "" {
		return saledom.Sale{}, schedulingdom.ErrInvalidID
	}

	// 読み込みと変換の間に編集が入った場合は読み直して 1 回だけやり直す
	for attempt := 0; ; attempt++ {
		s, err := u.schedulings.GetByID(ctx, uid, id)
		if err != nil {
			if errors.Is(err, schedulingdom.ErrNotFound) {
				return saledom.Sale{}, ErrSchedulingNotFound
			}
			return saledom.Sale{}, err
		}
		sale, err := u.Convert(ctx, actor, s)
		if errors.Is(err, ErrSchedulingChanged) && attempt == 0 {
			continue
		}
		return sale, err
	}
}

// Convert turns s into a Sale and deletes s in one transaction.
//
// Product lookup, price resolution and address composition happen before
// any write, so every failure up to the transaction leaves s untouched.
func (u *SchedulingConversionUsecase) Convert(ctx context.Context, actor *Actor, s schedulingdom.Scheduling) (saledom.Sale, error) {
	uid, err := requireActor(actor)
	if err != nil {
		return saledom.Sale{}, err
	}
	schedulingID := strings.TrimSpace(s.ID)
	if schedulingID == "" {
		return saledom.Sale{}, schedulingdom.ErrInvalidID
	}

	// 1) product
	prod, err := u.products.GetByID(ctx, uid, s.ProductID)
	if err != nil {
		if errors.Is(err, productdom.ErrNotFound) {
			return saledom.Sale{}, fmt.Errorf("%w: productId=%s", ErrProductNotFound, s.ProductID)
		}
		return saledom.Sale{}, fmt.Errorf("load product %s: %w", s.ProductID, err)
	}

	// 2) price (exact match, then platform fallback)
	pc, err := prod.ResolvePrice(s.Platform, s.Quantity)
	if err != nil {
		return saledom.Sale{}, err
	}

	// 3) sale draft
	productName := s.ProductName
	if strings.TrimSpace(productName) == "" {
		productName = prod.Name
	}
	draft, err := saledom.New(
		"",
		s.CustomerName,
		s.CustomerPhone,
		s.FullAddress(),
		s.ProductID,
		productName,
		s.Platform,
		s.Quantity,
		pc.Price,
		pc.Commission,
		u.now(),
	)
	if err != nil {
		return saledom.Sale{}, err
	}

	// 4) atomic create + delete
	txCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var created saledom.Sale
	err = u.store.RunConversion(txCtx, uid, func(ctx context.Context, tx ConversionTx) error {
		cur, err := tx.GetScheduling(ctx, schedulingID)
		if err != nil {
			return err
		}
		if !sameSaleSource(cur, s) {
			return ErrSchedulingChanged
		}
		c, err := tx.CreateSale(ctx, draft)
		if err != nil {
			return err
		}
		if err := tx.DeleteScheduling(ctx, schedulingID); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, schedulingdom.ErrNotFound):
			return saledom.Sale{}, ErrSchedulingNotFound
		case errors.Is(err, ErrSchedulingChanged):
			return saledom.Sale{}, ErrSchedulingChanged
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(txCtx.Err(), context.DeadlineExceeded):
			log.Warn().
				Str("uid", uid).
				Str("schedulingId", schedulingID).
				Dur("timeout", u.timeout).
				Msg("[conversion] transaction timed out; outcome unknown")
			return saledom.Sale{}, fmt.Errorf("%w: timed out after %s, outcome unknown: %w", ErrTransactionFailure, u.timeout, err)
		default:
			return saledom.Sale{}, fmt.Errorf("%w: %w", ErrTransactionFailure, err)
		}
	}

	ev := log.Info().
		Str("uid", uid).
		Str("schedulingId", schedulingID).
		Str("saleId", created.ID).
		Str("platform", string(created.Platform)).
		Int("quantity", created.Quantity)
	if actor.IsImpersonated() {
		ev = ev.Str("impersonatorUid", actor.ImpersonatorUID)
	}
	ev.Msg("[conversion] scheduling converted to sale")

	return created, nil
}

// sameSaleSource reports whether the stored scheduling still carries the
// values the sale draft was built from.
func sameSaleSource(stored, s schedulingdom.Scheduling) bool {
	eq := func(a, b string) bool { return strings.TrimSpace(a) == strings.TrimSpace(b) }
	return eq(stored.CustomerName, s.CustomerName) &&
		eq(stored.CustomerPhone, s.CustomerPhone) &&
		stored.Address.Normalize() == s.Address.Normalize() &&
		eq(stored.ProductID, s.ProductID) &&
		eq(stored.ProductName, s.ProductName) &&
		stored.Platform == s.Platform &&
		stored.Quantity == s.Quantity
}
