// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"
	"time"

	"flowify/internal/adapters/in/http/handlers"
	"flowify/internal/adapters/in/http/middleware"
	"flowify/internal/adapters/in/http/webhook"
	usecase "flowify/internal/application/usecase"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	ProductUC     *usecase.ProductUsecase
	SchedulingUC  *usecase.SchedulingUsecase
	ConversionUC  *usecase.SchedulingConversionUsecase
	SaleUC        *usecase.SaleUsecase
	BillingUC     *usecase.BillingUsecase
	SalesExportUC *usecase.SalesExportUsecase // nil: EXPORT_BUCKET 未設定
	PlanUC        *usecase.PlanUsecase
	EntitlementUC *usecase.EntitlementUsecase
	ApprovalUC    *usecase.ApprovalUsecase
	SignupUC      *usecase.SignupUsecase // nil: POST /api/me は 405

	PreSchedulingUC *usecase.PreSchedulingUsecase
	AdminUC         *usecase.AdminUsecase

	// /api/ 配下の認証
	Auth *middleware.AuthMiddleware

	// Kirvano webhook の共有シークレット（空なら検証しない）
	KirvanoWebhookToken string

	Location *time.Location

	// Ready は /readyz で使う疎通確認（nil なら常に ok）
	Ready func(r *http.Request) error
}

// NewRouter sets up HTTP routing for all domain endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(r); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 公開エンドポイント
	if deps.PlanUC != nil {
		mux.Handle("/api/plans", handlers.NewPlanHandler(deps.PlanUC))
	}
	if deps.ApprovalUC != nil {
		mux.Handle("/webhooks/kirvano", webhook.NewKirvanoWebhookHandler(deps.ApprovalUC, deps.KirvanoWebhookToken))
	}

	// 以降は認証必須。Usecase が存在するものだけマウントする
	api := http.NewServeMux()
	mount := func(path string, h http.Handler) {
		api.Handle(path, h)
		api.Handle(path+"/", h)
	}

	if deps.ProductUC != nil {
		mount("/api/products", handlers.NewProductHandler(deps.ProductUC))
	}
	if deps.SchedulingUC != nil {
		mount("/api/schedulings", handlers.NewSchedulingHandler(deps.SchedulingUC, deps.ConversionUC, deps.Location))
	}
	if deps.PreSchedulingUC != nil {
		mount("/api/pre-schedulings", handlers.NewPreSchedulingHandler(deps.PreSchedulingUC, deps.Location))
	}
	if deps.SaleUC != nil {
		mount("/api/sales", handlers.NewSaleHandler(deps.SaleUC, deps.SalesExportUC, deps.Location))
	}
	if deps.BillingUC != nil {
		api.Handle("/api/billing", handlers.NewBillingHandler(deps.BillingUC))
	}
	if deps.EntitlementUC != nil {
		api.Handle("/api/me", handlers.NewMeHandler(deps.EntitlementUC, deps.SignupUC))
	}
	if deps.AdminUC != nil {
		mount("/api/admin", handlers.NewAdminHandler(deps.AdminUC, deps.Location))
	}

	mux.Handle("/api/", deps.Auth.Handler(api))

	return mux
}
