package bootstrap

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/printloom/mockup-backend/internal/api/http"
	apimiddleware "github.com/printloom/mockup-backend/internal/api/http/middleware"
	authmw "github.com/printloom/mockup-backend/internal/auth/middleware"
	catalogrepo "github.com/printloom/mockup-backend/internal/catalog/repository"
	mockuphttp "github.com/printloom/mockup-backend/internal/mockups/http"
	"github.com/printloom/mockup-backend/internal/mockups/printful"
	"github.com/printloom/mockup-backend/internal/mockups/repository"
	"github.com/printloom/mockup-backend/internal/mockups/service"
	"github.com/printloom/mockup-backend/internal/realtime"
	realtimehttp "github.com/printloom/mockup-backend/internal/realtime/http"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	DB            *pgxpool.Pool
	CatalogDB     *sql.DB
	Hub           *realtime.Hub
	Notifier      service.Notifier
	Verifier      authmw.TokenVerifier
	VendorBaseURL string
	VendorAPIKey  string
	VendorRate    int
	WebhookSecret string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-User-Id", "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	designRepo := repository.NewDesignRepository(dep.DB)
	variantRepo := catalogrepo.NewVariantRepository(dep.CatalogDB)
	vendorClient := printful.NewClient(dep.VendorBaseURL, dep.VendorAPIKey, dep.VendorRate)

	dispatchService := service.NewDispatchService(designRepo, variantRepo, vendorClient)
	webhookService := service.NewWebhookService(designRepo, dep.Notifier)
	mockupHandler := mockuphttp.New(dispatchService, webhookService, dep.WebhookSecret)

	// Vendor-facing routes: shared-secret header, no user auth.
	vendor := r.Group("/vendor")
	mockupHandler.RegisterVendorWebhookRoutes(vendor)

	api := r.Group("/api/v1")
	api.Use(apimiddleware.RequestIDMiddleware())
	if dep.Verifier != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	}

	mockupHandler.Register(api)

	realtimeHandler := realtimehttp.New(dep.Hub)
	realtimeHandler.Register(api)

	return r
}
