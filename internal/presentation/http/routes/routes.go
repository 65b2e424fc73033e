// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/LodestarLearning/lodestar-go/internal/application/container"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/handlers"
	"github.com/LodestarLearning/lodestar-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Serve the static SysOp dashboard from the /sysop URL.
	r.Static("/sysop", "web/sysop")

	// Initialize handlers
	documentHandlers := handlers.NewDocumentHandlers(container.DocumentService, container.StateService, container.Logger, container.PerfTracker)
	stateHandlers := handlers.NewStateHandlers(container.StateService, container.Logger, container.PerfTracker)
	editingHandlers := handlers.NewEditingHandlers(container.EditingService, container.Logger)
	fragmentHandlers := handlers.NewFragmentHandlers(container.FragmentService, container.ExportService, container.Logger, container.PerfTracker)
	sseHandlers := handlers.NewSSEHandlers(container.Broadcaster, container.Sessions, container.Logger, container.PerfTracker)
	sysopHandlers := handlers.NewSysOpHandlers(container)

	r.GET("/health", sysopHandlers.GetHealth)

	// SysOp API endpoints live under /api/sysop to avoid conflict with
	// static file serving.
	sysopAPI := r.Group("/api/sysop")
	{
		sysopAPI.GET("/auth", sysopHandlers.AuthCheck)
		sysopAPI.POST("/login", sysopHandlers.Login)

		sysopAPI.Use(sysopHandlers.SysOpAuthMiddleware())
		{
			sysopAPI.GET("/sessions/ws", sysopHandlers.GetSessionMap)
			sysopAPI.GET("/performance", sysopHandlers.GetPerformance)
			sysopAPI.GET("/logs/levels", sysopHandlers.GetLogLevels)
			sysopAPI.POST("/logs/levels", sysopHandlers.SetLogLevel)
		}
	}

	// Log streaming is a special case and remains at top level.
	r.GET("/sysop-logs/stream", sysopHandlers.StreamLogs)

	// API routes with session resolution
	api := r.Group("/api/v1")
	api.Use(middleware.SessionMiddleware())
	{
		// Lesson documents and session bootstrap
		api.GET("/documents", documentHandlers.ListDocuments)
		api.GET("/documents/:id", documentHandlers.GetDocument)
		api.POST("/documents/:id/session", documentHandlers.PostSession)

		// Everything below operates on an established session.
		session := api.Group("")
		session.Use(middleware.RequireSession())
		{
			// Variable state
			session.GET("/state", stateHandlers.GetState)
			session.POST("/state", stateHandlers.PostState)
			session.POST("/state/trigger", stateHandlers.PostTrigger)

			// Author editing lifecycle
			edit := session.Group("/edit")
			{
				edit.POST("/open", editingHandlers.PostOpen)
				edit.POST("/save", editingHandlers.PostSave)
				edit.POST("/close", editingHandlers.PostClose)
				edit.GET("/current", editingHandlers.GetCurrent)
			}
			session.GET("/edits", editingHandlers.GetEdits)

			// Rendered markup
			session.GET("/lesson", fragmentHandlers.GetLessonView)
			session.GET("/fragments/:blockId", fragmentHandlers.GetFragment)
			session.GET("/export", fragmentHandlers.GetExport)
			session.GET("/export/widgets", fragmentHandlers.GetExportWidgets)

			// Live updates
			session.GET("/updates/sse", sseHandlers.GetUpdates)
		}
	}

	return r
}
