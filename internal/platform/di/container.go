// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	httpin "flowify/internal/adapters/in/http"
	"flowify/internal/adapters/in/http/middleware"
	fs "flowify/internal/adapters/out/firestore"
	gcs "flowify/internal/adapters/out/gcs"
	"flowify/internal/adapters/out/mail"
	usecase "flowify/internal/application/usecase"
	appcfg "flowify/internal/infra/config"
	"flowify/internal/infra/jobs"
	"flowify/internal/platform/di/shared"
)

const (
	accessSweepJob     = "access-sweep"
	accessSweepTimeout = 2 * time.Minute
)

// ========================================
// Container (Firestore edition)
// ========================================
//
// main.go / cmd/admin から使う依存オブジェクトの束。
// Infra（外部クライアント）→ Repository → Usecase の順に組み立てる。
type Container struct {
	Config *appcfg.Config
	Infra  *shared.Infra

	// Repositories (Firestore)
	ProductRepo       *fs.ProductRepositoryFS
	SchedulingRepo    *fs.SchedulingRepositoryFS
	PreSchedulingRepo *fs.PreSchedulingRepositoryFS
	SaleRepo          *fs.SaleRepositoryFS
	PlanRepo          *fs.PlanRepositoryFS
	UserRepo          *fs.UserRepositoryFS
	ApprovedEmailRepo *fs.ApprovedEmailRepositoryFS

	// Usecases
	EntitlementUC   *usecase.EntitlementUsecase
	SignupUC        *usecase.SignupUsecase
	ProductUC       *usecase.ProductUsecase
	SchedulingUC    *usecase.SchedulingUsecase
	PreSchedulingUC *usecase.PreSchedulingUsecase
	ConversionUC    *usecase.SchedulingConversionUsecase
	SaleUC          *usecase.SaleUsecase
	BillingUC       *usecase.BillingUsecase
	SalesExportUC   *usecase.SalesExportUsecase // nil: EXPORT_BUCKET 未設定 or GCS 初期化失敗
	PlanUC          *usecase.PlanUsecase
	ApprovalUC      *usecase.ApprovalUsecase
	AdminUC         *usecase.AdminUsecase
	AccessSweepUC   *usecase.AccessSweepUsecase

	Scheduler *jobs.Scheduler
}

// NewContainer loads config and wires every dependency.
func NewContainer(ctx context.Context) (*Container, error) {
	return NewContainerWithConfig(ctx, appcfg.Load())
}

func NewContainerWithConfig(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	infra, err := shared.NewInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st := infra.Settings
	client := infra.Firestore.Client

	c := &Container{
		Config: cfg,
		Infra:  infra,

		ProductRepo:       fs.NewProductRepositoryFS(client),
		SchedulingRepo:    fs.NewSchedulingRepositoryFS(client),
		PreSchedulingRepo: fs.NewPreSchedulingRepositoryFS(client),
		SaleRepo:          fs.NewSaleRepositoryFS(client),
		PlanRepo:          fs.NewPlanRepositoryFS(client),
		UserRepo:          fs.NewUserRepositoryFS(client),
		ApprovedEmailRepo: fs.NewApprovedEmailRepositoryFS(client),
	}

	// ---- usecases ----
	c.EntitlementUC = usecase.NewEntitlementUsecase(c.UserRepo, c.PlanRepo)
	c.SignupUC = usecase.NewSignupUsecase(c.UserRepo, c.ApprovedEmailRepo)
	c.ProductUC = usecase.NewProductUsecase(c.ProductRepo, c.EntitlementUC)
	c.SchedulingUC = usecase.NewSchedulingUsecase(c.SchedulingRepo, c.ProductRepo, c.EntitlementUC, st.Location)
	c.PreSchedulingUC = usecase.NewPreSchedulingUsecase(c.PreSchedulingRepo, c.ProductRepo, c.EntitlementUC, st.Location)
	c.ConversionUC = usecase.NewSchedulingConversionUsecase(
		c.ProductRepo,
		c.SchedulingRepo,
		fs.NewSchedulingConversionFS(client),
	).WithTimeout(st.ConversionTimeout)
	c.SaleUC = usecase.NewSaleUsecase(c.SaleRepo, c.ProductRepo)
	c.BillingUC = usecase.NewBillingUsecase(c.SaleRepo, st.Location)
	c.PlanUC = usecase.NewPlanUsecase(c.PlanRepo)
	c.AdminUC = usecase.NewAdminUsecase(c.UserRepo, c.SaleRepo, c.PlanRepo)
	c.AccessSweepUC = usecase.NewAccessSweepUsecase(c.UserRepo)

	if infra.GCS != nil && st.ExportBucket != "" {
		c.SalesExportUC = usecase.NewSalesExportUsecase(
			c.SaleRepo,
			gcs.NewExportWriterGCS(infra.GCS, st.ExportBucket),
			c.EntitlementUC,
			st.Location,
		)
	}

	// mailer は任意（nil なら承認メールを送らない）
	var mailer usecase.ApprovalMailerPort
	if st.SendGridAPIKey != "" && st.MailFrom != "" {
		mailer = mail.NewApprovalMailer(mail.NewSendGridClient(st.SendGridAPIKey, "FlowiFy"), st.MailFrom, st.AppBaseURL)
	}
	c.ApprovalUC = usecase.NewApprovalUsecase(c.ApprovedEmailRepo, mailer)

	// ---- jobs ----
	c.Scheduler = jobs.NewScheduler(st.Location)
	if st.AccessSweepSchedule != "" {
		if err := c.Scheduler.Add(accessSweepJob, st.AccessSweepSchedule, accessSweepTimeout, c.runAccessSweep); err != nil {
			c.Close()
			return nil, err
		}
	}

	log.Info().
		Str("projectId", infra.ProjectID).
		Bool("export", c.SalesExportUC != nil).
		Bool("mail", mailer != nil).
		Bool("auth", infra.FirebaseAuth != nil).
		Strs("jobs", c.Scheduler.Names()).
		Msg("[di] container initialized")

	return c, nil
}

func (c *Container) runAccessSweep(ctx context.Context) error {
	res, err := c.AccessSweepUC.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("deactivated", len(res.Deactivated)).Int("failed", len(res.Failed)).Msg("[di] access sweep done")
	return nil
}

// RouterDeps builds the HTTP router dependencies.
func (c *Container) RouterDeps() httpin.RouterDeps {
	var auth *middleware.AuthMiddleware
	if c.Infra.FirebaseAuth != nil {
		auth = &middleware.AuthMiddleware{Verifier: c.Infra.FirebaseAuth, Users: c.UserRepo}
	}

	return httpin.RouterDeps{
		ProductUC:     c.ProductUC,
		SchedulingUC:  c.SchedulingUC,
		ConversionUC:  c.ConversionUC,
		SaleUC:        c.SaleUC,
		BillingUC:     c.BillingUC,
		SalesExportUC: c.SalesExportUC,
		PlanUC:        c.PlanUC,
		EntitlementUC: c.EntitlementUC,
		ApprovalUC:    c.ApprovalUC,
		SignupUC:      c.SignupUC,

		PreSchedulingUC: c.PreSchedulingUC,
		AdminUC:         c.AdminUC,

		Auth:                auth,
		KirvanoWebhookToken: c.Infra.Settings.KirvanoWebhookToken,
		Location:            c.Infra.Settings.Location,
		Ready: func(r *http.Request) error {
			return c.Infra.Firestore.Ping(r.Context())
		},
	}
}

// Close stops jobs and closes clients.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Infra != nil {
		_ = c.Infra.Close()
	}
}
