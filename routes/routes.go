package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AyanAhmedKhan/scholar/controllers"
	"github.com/AyanAhmedKhan/scholar/middleware"
	"github.com/AyanAhmedKhan/scholar/models"
	"github.com/AyanAhmedKhan/scholar/services"
)

// Controllers bundles everything SetupRoutes wires into the router.
type Controllers struct {
	Auth         *controllers.AuthController
	Documents    *controllers.DocumentController
	Applications *controllers.ApplicationController

	JWTSecret string
	Users     services.UserStore
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", ctrl.Auth.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Scholarship API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(ctrl.JWTSecret, ctrl.Users))
		{
			// User profile
			protected.GET("/profile", ctrl.Auth.GetProfile)
			protected.PUT("/change-password", ctrl.Auth.ChangePassword)

			// Document vault
			documents := protected.Group("/documents")
			{
				documents.POST("/upload", middleware.RequireRole(models.RoleStudent), ctrl.Documents.UploadVaultDocument)
				documents.GET("/my-documents", middleware.RequireRole(models.RoleStudent), ctrl.Documents.GetMyDocuments)
				documents.GET("/formats", ctrl.Documents.GetDocumentFormats)

				// Only admin manages the format catalogue
				documents.POST("/formats", middleware.RequireRole(models.RoleAdmin), ctrl.Documents.CreateDocumentFormat)
				documents.PUT("/formats/:id", middleware.RequireRole(models.RoleAdmin), ctrl.Documents.UpdateDocumentFormat)
			}

			// Scholarship applications
			applications := protected.Group("/applications")
			{
				applications.GET("", ctrl.Applications.GetMyApplications)
				applications.GET("/:id", ctrl.Applications.GetApplication)
				applications.GET("/:id/pdf", ctrl.Applications.DownloadApplicationPDF)

				// Only students create/refresh applications
				applications.POST("", middleware.RequireRole(models.RoleStudent), ctrl.Applications.Apply)
				applications.POST("/:id/resubmit", middleware.RequireRole(models.RoleStudent), ctrl.Applications.Resubmit)
				applications.POST("/renew", middleware.RequireRole(models.RoleStudent), ctrl.Applications.Renew)
				applications.POST("/switch", middleware.RequireRole(models.RoleStudent), ctrl.Applications.SwitchScholarship)

				// Staff review workflow
				applications.PATCH("/:id/status",
					middleware.RequireRole(models.RoleDeptHead, models.RoleGeneralOffice, models.RoleAdmin),
					ctrl.Applications.UpdateStatus)
			}

			// Scholarships
			scholarships := protected.Group("/scholarships")
			{
				scholarships.GET("/:id/requirements", ctrl.Documents.GetScholarshipRequirements)
				scholarships.GET("/:id/check-eligibility", middleware.RequireRole(models.RoleStudent), ctrl.Applications.CheckEligibility)
			}
		}
	}
}
