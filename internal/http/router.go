// Package httpapi wires the Gin transport to the application services:
// middleware ordering, route registration and the dependency graph all
// live here. Handlers receive fully constructed services and never touch
// configuration or the database directly.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/meupet/go-pet-backend/internal/config"
	"github.com/meupet/go-pet-backend/internal/domain"
	"github.com/meupet/go-pet-backend/internal/http/handlers"
	"github.com/meupet/go-pet-backend/internal/http/middleware"
	"github.com/meupet/go-pet-backend/internal/repo"
	"github.com/meupet/go-pet-backend/internal/services"
)

// petRepoShim satisfies services.PetRepo by delegating to the repo free
// functions, keeping the service layer free of a direct repo import.
type petRepoShim struct{}

func (petRepoShim) CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	return repo.CreatePet(ctx, db, p)
}

func (petRepoShim) GetPetBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Pet, error) {
	return repo.GetPetBySlug(ctx, db, slug)
}

func (petRepoShim) SlugExists(ctx context.Context, db *gorm.DB, slug string) (bool, error) {
	return repo.SlugExists(ctx, db, slug)
}

func (petRepoShim) SavePet(ctx context.Context, db *gorm.DB, p *domain.Pet, touchModified bool) error {
	return repo.SavePet(ctx, db, p, touchModified)
}

func (petRepoShim) FilterByKind(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error) {
	return repo.FilterByKind(ctx, db, ref)
}

func (petRepoShim) ListLostOrFound(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error) {
	return repo.ListLostOrFound(ctx, db, ref)
}

func (petRepoShim) ListForAdoptionOrAdopted(ctx context.Context, db *gorm.DB, ref domain.KindRef) ([]domain.Pet, error) {
	return repo.ListForAdoptionOrAdopted(ctx, db, ref)
}

func (petRepoShim) ListUnpublished(ctx context.Context, db *gorm.DB) ([]domain.Pet, error) {
	return repo.ListUnpublished(ctx, db)
}

func (petRepoShim) ListStale(ctx context.Context, db *gorm.DB, staleDays int) ([]domain.Pet, error) {
	return repo.ListStale(ctx, db, staleDays)
}

func (petRepoShim) ListExpired(ctx context.Context, db *gorm.DB, staleDays int) ([]domain.Pet, error) {
	return repo.ListExpired(ctx, db, staleDays)
}

func (petRepoShim) CountActives(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountActives(ctx, db)
}

func (petRepoShim) ListActivesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Pet, error) {
	return repo.ListActivesPage(ctx, db, offset, limit)
}

func (petRepoShim) GetOwner(ctx context.Context, db *gorm.DB, id string) (*domain.Owner, error) {
	return repo.GetOwner(ctx, db, id)
}

func (petRepoShim) GetCity(ctx context.Context, db *gorm.DB, id uint) (*domain.City, error) {
	return repo.GetCity(ctx, db, id)
}

// RegisterRoutes installs the middleware pipeline and mounts every
// endpoint on r. Ordering is deliberate: tracing wraps everything,
// the request id must exist before logging, and recovery sits after the
// logger so panics are recorded with their correlation id. Rate limiting
// and CORS run last, just ahead of the handlers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, notifier services.Notifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	// Owner emails travel in request bodies and confirmation keys in
	// headers, so logging goes through the redacting variant.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	installCORS(r, cfg.CORS.AllowedOrigins)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	petSvc := services.NewPetService(db, petRepoShim{}, notifier, cfg.DaysToStale)
	h := handlers.New(
		petSvc,
		&services.PhotoService{DB: db},
		&services.KindService{DB: db},
		&services.GeoService{DB: db},
		&services.OwnerService{DB: db},
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Registration and views. Static segments are registered next to
		// the :slug wildcard; Gin resolves them by specificity.
		api.POST("/pets", h.RegisterPet)
		api.GET("/pets", h.ListPets)
		api.GET("/pets/unpublished", h.ListUnpublished)
		api.GET("/pets/stale", h.ListStale)
		api.GET("/pets/expired", h.ListExpired)
		api.GET("/pets/lost/:kind", h.ListLostOrFound)
		api.GET("/pets/adoption/:kind", h.ListForAdoption)
		api.GET("/pets/:slug", h.GetPet)

		// Lifecycle
		api.POST("/pets/:slug/status", h.ChangeStatus)
		api.POST("/pets/:slug/request-action", h.RequestAction)
		api.POST("/pets/:slug/activate", h.ActivatePet)
		api.POST("/pets/:slug/deactivate", h.DeactivatePet)
		api.POST("/pets/:slug/publish", h.PublishPet)

		// Photos
		api.POST("/pets/:slug/photos", h.AddPhoto)
		api.GET("/pets/:slug/photos", h.ListPhotos)
		api.DELETE("/photos/:id", h.DeletePhoto)

		// Kinds
		api.POST("/kinds", h.CreateKind)
		api.GET("/kinds", h.ListKinds)
		api.GET("/kinds/lost", h.ListLostKinds)
		api.GET("/kinds/adoption", h.ListAdoptionKinds)

		// Geography
		api.GET("/states", h.ListStates)
		api.POST("/states", h.CreateState)
		api.GET("/states/:id/cities", h.ListCities)
		api.POST("/cities", h.CreateCity)
		api.GET("/cities", h.SearchCities)

		// Owners
		api.POST("/owners", h.CreateOwner)
		api.GET("/owners/:id", h.GetOwner)
	}
}

// installCORS applies the cross-origin policy. With no configured origins
// the API is fully open (credentials stay disabled); otherwise only the
// listed origins are allowed and the matching origin is echoed back.
func installCORS(r *gin.Engine, origins []string) {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		base.AllowAllOrigins = true
		r.Use(cors.New(base))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok && origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		c.Next()
	})
	base.AllowOrigins = origins
	r.Use(cors.New(base))
}

// limitBody caps every request body at maxBytes via http.MaxBytesReader,
// so oversized payloads fail at read time in the handler.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix treats "" and "/" as the engine root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
