package main

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-backend/internal/cart"
	"github.com/wichananm65/grocery-backend/internal/catalog"
	"github.com/wichananm65/grocery-backend/internal/config"
	"github.com/wichananm65/grocery-backend/internal/favorite"
	"github.com/wichananm65/grocery-backend/internal/imageprobe"
	"github.com/wichananm65/grocery-backend/internal/logging"
	"github.com/wichananm65/grocery-backend/internal/metrics"
	"github.com/wichananm65/grocery-backend/internal/nutrition"
	"github.com/wichananm65/grocery-backend/internal/product"
	"github.com/wichananm65/grocery-backend/internal/recipe"
	"github.com/wichananm65/grocery-backend/internal/scan"
	"github.com/wichananm65/grocery-backend/internal/search"
	"github.com/wichananm65/grocery-backend/internal/user"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rules, err := nutrition.LoadRules(cfg.LabelRulesFile)
	if err != nil {
		logger.Fatal("load label rules", zap.Error(err))
	}

	m := metrics.New()
	app := fiber.New()
	app.Use(logging.Middleware(logger))
	setupCORS(app, cfg.CORSAllowOrigins)
	app.Get("/metrics", m.Handler())
	app.Static("/static", "./static")

	db := openDB(cfg.DatabaseURL, logger)
	if db != nil {
		defer db.Close()
	}

	// in-memory unless DATABASE_URL is set
	var userRepo user.Repository = user.NewInMemoryRepository(nil)
	var productCache product.Repository = product.NewInMemoryRepository(nil)
	var cartRepo cart.Repository = cart.NewInMemoryRepository(nil)
	if db != nil {
		userRepo = user.NewPostgresRepository(db)
		productCache = product.NewPostgresRepository(db)
		cartRepo = cart.NewPostgresRepository(db)
	}
	favoriteRepo := openFavorites(cfg, db, logger)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString()
		logger.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, jwtSecret)

	// product pipeline: catalog -> probe/resolve images -> assemble -> cache
	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:      cfg.CatalogBaseURL,
		Token:        cfg.CatalogAPIToken,
		Timeout:      cfg.CatalogTimeout,
		RateLimitRPS: cfg.CatalogRateLimitRPS,
	}, catalog.WithLogger(logger), catalog.WithMetrics(m))
	prober := imageprobe.NewProber(
		imageprobe.WithTimeout(cfg.ImageProbeTimeout),
		imageprobe.WithLogger(logger),
		imageprobe.WithMetrics(m),
	)
	resolver := imageprobe.NewResolver(prober, cfg.ImagePlaceholderURL, cfg.ImageProbeConcurrency, m)
	assembler := product.NewAssembler(resolver, rules, product.WithAssemblerLogger(logger))
	productService := product.NewService(catalogClient, assembler, productCache,
		product.WithCacheTTL(cfg.ProductCacheTTL),
		product.WithServiceLogger(logger),
		product.WithServiceMetrics(m),
	)

	recipeSeed, err := recipe.DefaultSeed()
	if err != nil {
		logger.Fatal("load recipes", zap.Error(err))
	}
	recipeService := recipe.NewService(recipe.NewInMemoryRepository(recipeSeed))
	searchService := search.NewService(productService, recipeService, rules.Vocabulary(), logger)

	userHandler.RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterPublicRoutes(app)
	recipe.NewHandler(recipeService).RegisterPublicRoutes(app)
	search.NewHandler(searchService).RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(jwtSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	scan.NewHandler(scan.NewService(productService, userService, logger)).RegisterProtectedRoutes(app)
	favorite.NewHandler(favorite.NewService(favoriteRepo, productService)).RegisterProtectedRoutes(app)
	cart.NewHandler(cart.NewService(cartRepo, productService)).RegisterProtectedRoutes(app)

	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Fatal("listen", zap.String("addr", cfg.Addr), zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.Addr), zap.Bool("postgres", db != nil), zap.String("favorites", cfg.FavoritesDriver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
}

// openDB returns nil when no database is configured; the server then runs on
// in-memory repositories.
func openDB(dbURL string, logger *zap.Logger) *sql.DB {
	if dbURL == "" {
		logger.Warn("DATABASE_URL is not set; using in-memory storage")
		return nil
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}
	if err := ensureSchema(db); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}
	return db
}

func openFavorites(cfg config.Config, db *sql.DB, logger *zap.Logger) favorite.Repository {
	switch cfg.FavoritesDriver {
	case config.FavoritesPostgres:
		if db != nil {
			return favorite.NewPostgresRepository(db)
		}
		logger.Warn("FAVORITES_DRIVER=postgres without DATABASE_URL; using in-memory favorites")
	case config.FavoritesSQLite:
		repo, _, err := favorite.OpenSQLite(cfg.FavoritesSQLitePath)
		if err != nil {
			logger.Fatal("open favorites store", zap.String("path", cfg.FavoritesSQLitePath), zap.Error(err))
		}
		return repo
	case config.FavoritesMemory:
	default:
		logger.Warn("unknown FAVORITES_DRIVER; using in-memory favorites", zap.String("driver", cfg.FavoritesDriver))
	}
	return favorite.NewInMemoryRepository()
}
