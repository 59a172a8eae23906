package handlers

import (
	"net/http"
	"time"

	"github.com/SAP-F-2025/ielts-trainer/internal/auth"
	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/services"
	"github.com/SAP-F-2025/ielts-trainer/internal/utils"
	"github.com/SAP-F-2025/ielts-trainer/internal/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles what the handlers call into
type Services struct {
	Practice   services.PracticeService
	Collection services.CollectionService
	Dashboard  services.DashboardService
	// Auth may be nil when sign-in is not configured; pages are then served without a guard.
	Auth auth.Provider
}

type RouterConfig struct {
	Auth        AuthHandlerConfig
	CORSOrigins []string
}

type HandlerManager struct {
	authHandler       *AuthHandler
	pageHandler       *PageHandler
	practiceHandler   *PracticeHandler
	collectionHandler *CollectionHandler
	provider          auth.Provider
	config            RouterConfig
	logger            utils.Logger
}

func NewHandlerManager(
	svc Services,
	config RouterConfig,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(svc.Auth, config.Auth, logger),
		pageHandler:       NewPageHandler(svc.Dashboard, logger),
		practiceHandler:   NewPracticeHandler(svc.Practice, validator, logger),
		collectionHandler: NewCollectionHandler(svc.Collection, logger),
		provider:          svc.Auth,
		config:            config,
		logger:            logger,
	}
}

// SetupRoutes sets up pages and API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) error {
	templates, err := LoadTemplates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(templates)

	router.Use(utils.ContextLogger(hm.logger), utils.LoggerMiddleware(hm.logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ielts-trainer",
		})
	})

	pages := router.Group("", RouteGuard(hm.provider, hm.logger))
	{
		pages.GET("/", hm.pageHandler.Home)
		pages.GET("/login", hm.authHandler.LoginPage)
		pages.GET("/signup", hm.authHandler.SignupPage)
		pages.POST("/login", hm.authHandler.SendLink)
		pages.GET(callbackPath, hm.authHandler.Callback)
		pages.POST("/auth/logout", hm.authHandler.Logout)

		pages.GET("/dashboard", hm.pageHandler.Dashboard)
		pages.GET("/practice", hm.pageHandler.Practice)

		for _, kind := range []models.CollectionKind{models.CollectionFavorites, models.CollectionWrongBook} {
			base := collectionPath(kind)
			pages.GET(base, hm.collectionHandler.Page(kind))
			pages.GET(base+"/export", hm.collectionHandler.Export(kind))
			pages.POST(base+"/:id/remove", hm.collectionHandler.Remove(kind))
		}
	}

	router.OPTIONS("/api/*path", hm.corsMiddleware())
	api := router.Group("/api", hm.corsMiddleware(), RouteGuard(hm.provider, hm.logger), RequireSession())
	{
		practice := api.Group("/practice")
		{
			practice.GET("/round", hm.practiceHandler.GetRound)
			practice.POST("/rounds", hm.practiceHandler.StartRound)
			practice.POST("/next", hm.practiceHandler.Next)
			practice.POST("/answer", hm.practiceHandler.SubmitAnswer)
			practice.POST("/favorite", hm.practiceHandler.ToggleFavorite)
			practice.POST("/keys", hm.practiceHandler.HandleKey)
		}

		collections := api.Group("/collections")
		{
			collections.GET("/:kind", hm.collectionHandler.ListAPI)
			collections.DELETE("/:kind/:id", hm.collectionHandler.RemoveAPI)
		}
	}

	return nil
}

func (hm *HandlerManager) corsMiddleware() gin.HandlerFunc {
	origins := hm.config.CORSOrigins
	if len(origins) == 0 && hm.config.Auth.PublicBaseURL != "" {
		origins = []string{hm.config.Auth.PublicBaseURL}
	}
	if len(origins) == 0 {
		// same-origin only
		return func(c *gin.Context) { c.Next() }
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AllowCredentials = true
	config.AllowHeaders = append(config.AllowHeaders, utils.RequestIDHeader)
	config.ExposeHeaders = []string{utils.RequestIDHeader}
	config.MaxAge = 12 * time.Hour
	return cors.New(config)
}
