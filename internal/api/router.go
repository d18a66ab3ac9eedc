// Package api assembles the HTTP surface of the bridge.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rbxbridge/rbxbridge/internal/api/handlers"
	"github.com/rbxbridge/rbxbridge/internal/api/middleware"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/crypto"
	"github.com/rbxbridge/rbxbridge/internal/websocket"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins defaults to any origin when empty.
	AllowedOrigins []string
	// JWT protects the editor routes when non-nil.
	JWT *crypto.JWTManager
	// Hub serves /editor/events when non-nil.
	Hub *websocket.Hub
}

// NewRouter builds the gin engine with place-facing routes under /api and
// editor routes under /editor.
func NewRouter(b *bridge.Bridge, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	router.Use(middleware.LoggingMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "rbxbridge")
	})

	delivery := handlers.NewDeliveryHandler(b)
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/ping", delivery.Ping)
		apiGroup.GET("/receive", delivery.Receive)
		apiGroup.GET("/places", delivery.ListPlaces)
		apiGroup.GET("/contexts", delivery.ActiveContexts)
		apiGroup.GET("/status", delivery.GetStatus)
		apiGroup.POST("/status", delivery.PostStatus)
		apiGroup.POST("/disconnect", delivery.Disconnect)
	}

	editor := handlers.NewEditorHandler(b)
	editorGroup := router.Group("/editor")
	editorGroup.Use(middleware.AuthMiddleware(opts.JWT))
	{
		editorGroup.POST("/execute", editor.Execute)
		editorGroup.GET("/state", editor.GetState)
		editorGroup.POST("/target/place", editor.SetTargetPlace)
		editorGroup.POST("/target/place/next", editor.NextTargetPlace)
		editorGroup.POST("/target/context", editor.SetTargetContext)
		editorGroup.POST("/target/context/next", editor.NextTargetContext)
		if opts.Hub != nil {
			editorGroup.GET("/events", opts.Hub.HandleEvents)
		}
	}

	return router
}
