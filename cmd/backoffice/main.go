package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/equipdesk/backoffice/internal/auth"
	"github.com/equipdesk/backoffice/internal/config"
	"github.com/equipdesk/backoffice/internal/customers"
	"github.com/equipdesk/backoffice/internal/database"
	"github.com/equipdesk/backoffice/internal/distance"
	"github.com/equipdesk/backoffice/internal/domain"
	"github.com/equipdesk/backoffice/internal/employees"
	"github.com/equipdesk/backoffice/internal/fulfillment"
	"github.com/equipdesk/backoffice/internal/inbox"
	"github.com/equipdesk/backoffice/internal/messaging"
	"github.com/equipdesk/backoffice/internal/orders"
	"github.com/equipdesk/backoffice/internal/products"
	"github.com/equipdesk/backoffice/internal/settings"
	"github.com/equipdesk/backoffice/internal/telemetry"
	"github.com/equipdesk/backoffice/internal/transport"
	"github.com/equipdesk/backoffice/internal/warehouses"
)

const (
	serviceName    = "backoffice"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	if cfg.Database.URL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB("postgres", cfg.Database.URL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var orderProducer, quoteProducer, fulfillmentProducer *messaging.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		orderProducer = messaging.NewProducer(cfg.Kafka.Brokers, messaging.TopicOrderCreated)
		quoteProducer = messaging.NewProducer(cfg.Kafka.Brokers, messaging.TopicQuoteAccepted)
		fulfillmentProducer = messaging.NewProducer(cfg.Kafka.Brokers, messaging.TopicFulfillmentUpdated)
		defer func() {
			_ = orderProducer.Close()
			_ = quoteProducer.Close()
			_ = fulfillmentProducer.Close()
		}()
	}

	var distanceProvider distance.Provider
	if cfg.Routing.APIURL != "" {
		distanceProvider = distance.NewRoutingClient(cfg.Routing.APIURL, cfg.Routing.Timeout)
	} else {
		distanceProvider = distance.NewStatic(nil)
	}

	customerRepo := customers.NewRepository(db)
	productRepo := products.NewRepository(db)
	warehouseRepo := warehouses.NewRepository(db)
	orderRepo := orders.NewOrderRepository(db)
	quoteRepo := transport.NewQuoteRepository(db)
	fulfillmentRepo := fulfillment.NewRepository(db)
	employeeRepo := employees.NewRepository(db)
	inboxRepo := inbox.NewRepository(db)
	settingsRepo := settings.NewRepository(db)
	authRepo := auth.NewRepository(db)

	bootstrapAdmin(ctx, authRepo, logger)

	quoteService := transport.NewService(quoteRepo, orderRepo, warehouseRepo, distanceProvider, quoteProducer, logger)

	customerHandler := customers.NewHandler(customerRepo, logger)
	productHandler := products.NewHandler(productRepo, logger)
	warehouseHandler := warehouses.NewHandler(warehouseRepo, logger)
	orderHandler := orders.NewHandler(orderRepo, orderProducer, logger)
	quoteHandler := transport.NewHandler(quoteService, logger)
	fulfillmentHandler := fulfillment.NewHandler(fulfillmentRepo, fulfillmentProducer, logger)
	employeeHandler := employees.NewHandler(employeeRepo, logger)
	inboxHandler := inbox.NewHandler(inboxRepo, logger)
	settingsHandler := settings.NewHandler(settingsRepo, logger)
	authHandler := auth.NewHandler(authRepo, logger)

	api := http.NewServeMux()

	api.HandleFunc("POST /customers", telemetry.WithHTTPRoute(customerHandler.HandleCreate))
	api.HandleFunc("GET /customers", telemetry.WithHTTPRoute(customerHandler.HandleList))
	api.HandleFunc("GET /customers/{id}", telemetry.WithHTTPRoute(customerHandler.HandleGet))
	api.HandleFunc("PUT /customers/{id}", telemetry.WithHTTPRoute(customerHandler.HandleUpdate))
	api.HandleFunc("DELETE /customers/{id}", telemetry.WithHTTPRoute(customerHandler.HandleDelete))

	api.HandleFunc("POST /products", telemetry.WithHTTPRoute(productHandler.HandleCreate))
	api.HandleFunc("GET /products", telemetry.WithHTTPRoute(productHandler.HandleList))
	api.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(productHandler.HandleGet))
	api.HandleFunc("PUT /products/{id}", telemetry.WithHTTPRoute(productHandler.HandleUpdate))
	api.HandleFunc("DELETE /products/{id}", telemetry.WithHTTPRoute(productHandler.HandleDelete))

	api.HandleFunc("POST /warehouses", telemetry.WithHTTPRoute(warehouseHandler.HandleCreate))
	api.HandleFunc("GET /warehouses", telemetry.WithHTTPRoute(warehouseHandler.HandleList))
	api.HandleFunc("GET /warehouses/{id}", telemetry.WithHTTPRoute(warehouseHandler.HandleGet))

	api.HandleFunc("POST /orders", telemetry.WithHTTPRoute(orderHandler.HandleCreate))
	api.HandleFunc("GET /orders", telemetry.WithHTTPRoute(orderHandler.HandleList))
	api.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	api.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(orderHandler.HandleUpdateStatus))
	api.HandleFunc("DELETE /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleDelete))

	api.HandleFunc("POST /orders/{id}/quotes", telemetry.WithHTTPRoute(quoteHandler.HandleGenerate))
	api.HandleFunc("GET /orders/{id}/quotes", telemetry.WithHTTPRoute(quoteHandler.HandleList))
	api.HandleFunc("POST /orders/{id}/quotes/{quoteID}/accept", telemetry.WithHTTPRoute(quoteHandler.HandleAccept))

	api.HandleFunc("GET /orders/{id}/fulfillment", telemetry.WithHTTPRoute(fulfillmentHandler.HandleGet))
	api.HandleFunc("PATCH /orders/{id}/fulfillment/status", telemetry.WithHTTPRoute(fulfillmentHandler.HandleUpdateStatus))
	api.HandleFunc("PUT /orders/{id}/fulfillment/tracking", telemetry.WithHTTPRoute(fulfillmentHandler.HandleSetTracking))

	api.HandleFunc("POST /employees", telemetry.WithHTTPRoute(employeeHandler.HandleCreate))
	api.HandleFunc("GET /employees", telemetry.WithHTTPRoute(employeeHandler.HandleList))
	api.HandleFunc("GET /employees/{id}", telemetry.WithHTTPRoute(employeeHandler.HandleGet))
	api.HandleFunc("PUT /employees/{id}", telemetry.WithHTTPRoute(employeeHandler.HandleUpdate))
	api.HandleFunc("GET /employees/{id}/payroll", telemetry.WithHTTPRoute(employeeHandler.HandlePayroll))

	api.HandleFunc("POST /inbox/messages", telemetry.WithHTTPRoute(inboxHandler.HandleSendMessage))
	api.HandleFunc("GET /inbox/messages", telemetry.WithHTTPRoute(inboxHandler.HandleListMessages))
	api.HandleFunc("POST /inbox/messages/{id}/read", telemetry.WithHTTPRoute(inboxHandler.HandleMarkMessageRead))
	api.HandleFunc("GET /inbox/notifications", telemetry.WithHTTPRoute(inboxHandler.HandleListNotifications))
	api.HandleFunc("POST /inbox/notifications/{id}/read", telemetry.WithHTTPRoute(inboxHandler.HandleMarkNotificationRead))

	api.HandleFunc("GET /settings", telemetry.WithHTTPRoute(settingsHandler.HandleGet))
	api.HandleFunc("PUT /settings", telemetry.WithHTTPRoute(settingsHandler.HandlePut))

	requireSession := auth.Middleware(authRepo, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", telemetry.WithHTTPRoute(authHandler.HandleLogin))
	mux.HandleFunc("POST /logout", telemetry.WithHTTPRoute(authHandler.HandleLogout))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", metricsHandler)
	mux.Handle("/", requireSession(api))

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	expireCtx, stopExpiry := context.WithCancel(ctx)
	defer stopExpiry()
	go expireQuotes(expireCtx, quoteService, logger)

	go func() {
		logger.Info("starting backoffice service", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// expireQuotes sweeps pending quotes past their validity window so
// stale quotes cannot be accepted between requests.
func expireQuotes(ctx context.Context, service *transport.Service, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := service.ExpireStale(ctx); err != nil {
				logger.Error("quote expiry sweep failed", "error", err)
			}
		}
	}
}

// bootstrapAdmin seeds the first login from ADMIN_EMAIL/ADMIN_PASSWORD.
// Existing users are left alone.
func bootstrapAdmin(ctx context.Context, repo *auth.Repository, logger *slog.Logger) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      "Administrator",
		Role:      "admin",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user, password); err != nil {
		if database.IsUniqueViolation(err) {
			return
		}
		logger.Error("failed to seed admin user", "error", err)
	}
}
