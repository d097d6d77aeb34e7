package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billablehq/billable/internal/auth"
	authdomain "github.com/billablehq/billable/internal/auth/domain"
	"github.com/billablehq/billable/internal/auth/session"
	"github.com/billablehq/billable/internal/client"
	clientdomain "github.com/billablehq/billable/internal/client/domain"
	"github.com/billablehq/billable/internal/clock"
	"github.com/billablehq/billable/internal/config"
	"github.com/billablehq/billable/internal/invoice"
	invoicedomain "github.com/billablehq/billable/internal/invoice/domain"
	"github.com/billablehq/billable/internal/lock"
	"github.com/billablehq/billable/internal/metrics"
	"github.com/billablehq/billable/internal/notification"
	notificationdomain "github.com/billablehq/billable/internal/notification/domain"
	"github.com/billablehq/billable/internal/profile"
	profiledomain "github.com/billablehq/billable/internal/profile/domain"
	"github.com/billablehq/billable/internal/sla"
	sladomain "github.com/billablehq/billable/internal/sla/domain"
	"github.com/billablehq/billable/internal/ticket"
	ticketdomain "github.com/billablehq/billable/internal/ticket/domain"
	"github.com/billablehq/billable/internal/timeentry"
	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
)

var Module = fx.Module("http.server",
	clock.Module,
	lock.Module,
	fx.Provide(NewEngine),
	auth.Module,
	profile.Module,
	client.Module,
	ticket.Module,
	timeentry.Module,
	invoice.Module,
	sla.Module,
	notification.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	db       *gorm.DB
	genID    *snowflake.Node
	sessions *session.Manager

	authsvc         authdomain.Service
	profileSvc      profiledomain.Service
	clientSvc       clientdomain.Service
	ticketSvc       ticketdomain.Service
	timeEntrySvc    timeentrydomain.Service
	invoiceSvc      invoicedomain.Service
	slaSvc          sladomain.Service
	notificationSvc notificationdomain.Service
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	DB       *gorm.DB
	GenID    *snowflake.Node
	Sessions *session.Manager

	Authsvc         authdomain.Service
	ProfileSvc      profiledomain.Service
	ClientSvc       clientdomain.Service
	TicketSvc       ticketdomain.Service
	TimeEntrySvc    timeentrydomain.Service
	InvoiceSvc      invoicedomain.Service
	SlaSvc          sladomain.Service
	NotificationSvc notificationdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:   p.Gin,
		cfg:      p.Cfg,
		db:       p.DB,
		genID:    p.GenID,
		sessions: p.Sessions,

		authsvc:         p.Authsvc,
		profileSvc:      p.ProfileSvc,
		clientSvc:       p.ClientSvc,
		ticketSvc:       p.TicketSvc,
		timeEntrySvc:    p.TimeEntrySvc,
		invoiceSvc:      p.InvoiceSvc,
		slaSvc:          p.SlaSvc,
		notificationSvc: p.NotificationSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	adminOnly := s.RequireRole(profiledomain.RoleOwner, profiledomain.RoleAdmin)

	// -------- Profiles --------
	api.GET("/profiles", s.ListProfiles)
	api.POST("/profiles", adminOnly, s.CreateProfile)
	api.GET("/profiles/:id", s.GetProfileByID)

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.POST("/clients/:id/archive", s.ArchiveClient)

	// -------- Tickets --------
	api.GET("/tickets", s.ListTickets)
	api.POST("/tickets", s.CreateTicket)
	api.GET("/tickets/:id", s.GetTicketByID)
	api.PATCH("/tickets/:id", s.UpdateTicket)

	// -------- Time entries --------
	api.GET("/time-entries", s.ListTimeEntries)
	api.POST("/time-entries", s.LogTimeEntry)
	api.GET("/time-entries/:id", s.GetTimeEntryByID)
	api.PATCH("/time-entries/:id", s.UpdateTimeEntry)
	api.POST("/time-entries/:id/submit", s.SubmitTimeEntry)
	api.POST("/time-entries/:id/approve", adminOnly, s.ApproveTimeEntry)
	api.POST("/time-entries/:id/reject", adminOnly, s.RejectTimeEntry)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices/generate", adminOnly, s.GenerateInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/status", adminOnly, s.UpdateInvoiceStatus)

	// -------- SLA --------
	api.GET("/sla/report", s.GetSLAReport)
	api.GET("/sla/rules", s.ListSLARules)
	api.POST("/sla/rules", adminOnly, s.CreateSLARule)
	api.PATCH("/sla/rules/:id", adminOnly, s.UpdateSLARule)
	api.DELETE("/sla/rules/:id", adminOnly, s.DeleteSLARule)

	// -------- Notifications --------
	api.GET("/notifications", adminOnly, s.ListNotifications)
}
