// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"bike-parking-api-server/config"
	"bike-parking-api-server/internal/api/handlers"
	"bike-parking-api-server/internal/api/middleware"
	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/auth"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/service"
	"bike-parking-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the components the router wires into its handlers.
type Deps struct {
	Config   config.Config
	Store    store.Store
	Hasher   auth.Hasher
	Tokens   *auth.TokenManager
	Uploader handlers.PhotoUploader // nil disables photo uploads
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRouter builds the services and mounts every route under /api.
func SetupRouter(deps Deps) *gin.Engine {
	respond.SetupValidator()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(deps.Config.CORS.AllowedOrigins)))

	accounts := service.NewAccountService(deps.Store, deps.Hasher, deps.Tokens)
	facilities := service.NewFacilityService(deps.Store, deps.Store)
	proposals := service.NewProposalService(deps.Store, deps.Store)

	authHandler := &handlers.AuthHandler{Accounts: accounts}
	facilityHandler := &handlers.FacilityHandler{Facilities: facilities}
	proposalHandler := &handlers.ProposalHandler{Proposals: proposals}
	userHandler := &handlers.UserHandler{Accounts: accounts}
	uploadHandler := &handlers.UploadHandler{Uploader: deps.Uploader, MaxBytes: deps.Config.S3.MaxUploadMB << 20}
	healthHandler := &handlers.HealthHandler{Store: deps.Store}

	authenticate := middleware.Authenticate(accounts)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", authenticate, authHandler.Me)
		}

		facilityRoutes := api.Group("/facilities")
		{
			facilityRoutes.GET("", facilityHandler.GetAllFacilities)
			facilityRoutes.GET("/nearby/:lat/:lng", facilityHandler.GetNearbyFacilities)
			facilityRoutes.GET("/:id", facilityHandler.GetFacilityByID)
			facilityRoutes.POST("", authenticate, adminOnly, facilityHandler.CreateFacility)
			facilityRoutes.PUT("/:id", authenticate, adminOnly, facilityHandler.UpdateFacility)
			facilityRoutes.DELETE("/:id", authenticate, adminOnly, facilityHandler.DeleteFacility)
		}

		proposalRoutes := api.Group("/proposals")
		proposalRoutes.Use(authenticate)
		{
			proposalRoutes.POST("", proposalHandler.SubmitProposal)
			proposalRoutes.GET("", proposalHandler.GetProposals)
			proposalRoutes.PUT("/:id/approve", adminOnly, proposalHandler.ApproveProposal)
			proposalRoutes.PUT("/:id/reject", adminOnly, proposalHandler.RejectProposal)
			proposalRoutes.DELETE("/:id", proposalHandler.WithdrawProposal)
		}

		userRoutes := api.Group("/users")
		userRoutes.Use(authenticate)
		{
			userRoutes.PUT("/profile", userHandler.UpdateProfile)

			userRoutes.GET("", adminOnly, userHandler.GetAllUsers)
			userRoutes.GET("/:id", adminOnly, userHandler.GetUserByID)
			userRoutes.PUT("/:id", adminOnly, userHandler.UpdateUser)
			userRoutes.DELETE("/:id", adminOnly, userHandler.DeleteUser)
			userRoutes.PATCH("/:id/toggle-status", adminOnly, userHandler.ToggleUserStatus)
		}

		api.POST("/uploads/photo", authenticate, uploadHandler.UploadPhoto)
	}

	return router
}
