package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"example.com/voltcart/app/internal/config"
	domorder "example.com/voltcart/app/internal/domain/order"
	domproduct "example.com/voltcart/app/internal/domain/product"
	"example.com/voltcart/app/internal/infra/cache"
	"example.com/voltcart/app/internal/infra/gateway"
	"example.com/voltcart/app/internal/infra/mail"
	"example.com/voltcart/app/internal/infra/messaging/kafka"
	"example.com/voltcart/app/internal/infra/persistence/mysql"
	"example.com/voltcart/app/internal/infra/persistence/postgres"
	"example.com/voltcart/app/internal/infra/security"
	httpapi "example.com/voltcart/app/internal/interface/http"
	authuc "example.com/voltcart/app/internal/usecase/auth"
	cartuc "example.com/voltcart/app/internal/usecase/cart"
	categoryuc "example.com/voltcart/app/internal/usecase/category"
	checkoutuc "example.com/voltcart/app/internal/usecase/checkout"
	orderuc "example.com/voltcart/app/internal/usecase/order"
	productuc "example.com/voltcart/app/internal/usecase/product"
	reconuc "example.com/voltcart/app/internal/usecase/reconciliation"
	useruc "example.com/voltcart/app/internal/usecase/user"
)

func main() {
	// hash-password prints a bcrypt hash for seeding the users table.
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hash, err := security.NewBcryptService(bcrypt.DefaultCost).Hash(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return fmt.Errorf("mysql open: %w", err)
	}
	defer db.Close()
	if err := mysql.EnsureSchema(ctx, db); err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pool.Close()

	reconRepo := postgres.NewReconciliationRepository(pool)
	if err := reconRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}

	checks := map[string]httpapi.HealthCheck{
		"mysql":    db.PingContext,
		"postgres": pool.Ping,
	}

	gatewayOpts := gateway.Options{
		BaseURL:      cfg.Gateway.BaseURL,
		Timeout:      cfg.Gateway.Timeout,
		MaxFailures:  cfg.Gateway.MaxFailures,
		OpenDuration: cfg.Gateway.OpenDuration,
	}

	catalog, catalogWriter, closeCatalog, err := newCatalog(cfg, db, gatewayOpts, checks)
	if err != nil {
		return err
	}
	defer closeCatalog()

	// Order history is read from wherever checkout records orders.
	var orderRepo domorder.Repository = mysql.NewOrderRepository(db)
	if cfg.Gateway.OrderDriver == config.OrderDriverREST {
		orderRepo = gateway.NewOrderClient(gatewayOpts)
	}

	var notifiers []reconuc.Notifier
	var events checkoutuc.EventPublisher
	if cfg.KafkaEnabled() {
		publisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, cfg.Kafka.ReconciliationTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Printf("[main] close kafka publisher: %v", err)
			}
		}()
		events = publisher
		notifiers = append(notifiers, publisher)
	}
	if cfg.MailEnabled() {
		notifiers = append(notifiers, mail.NewMailer(cfg.Mail.SMTPAddr, cfg.Mail.From, cfg.Mail.Operator))
	}

	tokenSvc := security.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL)
	passwordSvc := security.NewBcryptService(bcrypt.DefaultCost)

	categoryRepo := mysql.NewCategoryRepository(db)
	userRepo := mysql.NewUserRepository(db)
	categorySvc := categoryuc.NewService(categoryRepo)
	cartSvc := cartuc.NewService(catalog)
	reconSvc := reconuc.NewService(reconRepo, notifiers...)
	checkoutSvc := checkoutuc.NewService(checkoutuc.Dependencies{
		Carts:      cartSvc,
		Payments:   gateway.NewPaymentClient(gatewayOpts),
		Orders:     orderRepo,
		Reconciler: reconSvc,
		Events:     events,
		Currency:   cfg.Checkout.Currency,
	})

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService:           authuc.NewService(userRepo, passwordSvc, tokenSvc),
		CategoryService:       categorySvc,
		ProductService:        productuc.NewService(catalog, categorySvc),
		CategoryAdmin:         categoryuc.NewAdminService(categoryRepo, categoryRepo),
		ProductAdmin:          productuc.NewAdminService(catalog, catalogWriter, categoryRepo),
		UserService:           useruc.NewService(userRepo, passwordSvc),
		CartService:           cartSvc,
		CheckoutService:       checkoutSvc,
		OrderService:          orderuc.NewService(orderRepo),
		ReconciliationService: reconSvc,
		TokenService:          tokenSvc,
		HealthChecks:          checks,
	})

	go sweepSessions(ctx, cartSvc, checkoutSvc, cfg.Session.MaxIdle, cfg.Session.SweepInterval)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      api.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on :%s (catalog=%s orders=%s)", cfg.HTTP.Port, cfg.Catalog.Driver, cfg.Gateway.OrderDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCatalog picks where product snapshots come from. The writer is nil when
// the storefront backend owns the catalog.
func newCatalog(cfg *config.Config, db *sql.DB, opts gateway.Options, checks map[string]httpapi.HealthCheck) (domproduct.Repository, domproduct.Writer, func(), error) {
	noop := func() {}
	switch cfg.Catalog.Driver {
	case config.CatalogDriverREST:
		return gateway.NewCatalogClient(opts), nil, noop, nil
	case config.CatalogDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		source := mysql.NewProductRepository(db)
		productCache := cache.NewProductCache(client, cfg.Catalog.CacheTTL)
		repo := cache.NewCachedProductRepository(source, productCache)
		return repo, cache.NewEvictingWriter(source, productCache), func() { _ = client.Close() }, nil
	case config.CatalogDriverMySQL, "":
		repo := mysql.NewProductRepository(db)
		return repo, repo, noop, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown catalog driver %q", cfg.Catalog.Driver)
	}
}

func sweepSessions(ctx context.Context, carts *cartuc.Service, checkouts *checkoutuc.Service, maxIdle, every time.Duration) {
	if maxIdle <= 0 || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := carts.Sweep(maxIdle); n > 0 {
				log.Printf("[main] dropped %d idle cart sessions", n)
			}
			if n := checkouts.Sweep(ctx, maxIdle); n > 0 {
				log.Printf("[main] dropped checkout state of %d idle sessions", n)
			}
		}
	}
}
