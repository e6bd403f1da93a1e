package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/services"
)

// Services bundles the services the HTTP API depends on
type Services struct {
	Auth     *services.AuthService
	Accounts *services.AccountService
	Contacts *services.ContactService
	Tasks    *services.TaskService
}

// RegisterRoutes mounts the API on r. Session middleware must already be
// installed.
func RegisterRoutes(r *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	accountHandler := NewAccountHandler(svc.Accounts)
	contactHandler := NewContactHandler(svc.Contacts)
	taskHandler := NewTaskHandler(svc.Tasks)

	requireAuth := middleware.RequireAuth(svc.Auth)
	optionalAuth := middleware.OptionalAuth(svc.Auth)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Taskboard API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/guest", authHandler.Guest)
			auth.POST("/logout", optionalAuth, authHandler.Logout)
			auth.GET("/status", optionalAuth, authHandler.Status)

			auth.GET("/profile", requireAuth, accountHandler.GetProfile)
			auth.PATCH("/profile", requireAuth, accountHandler.UpdateProfile)
			auth.DELETE("/profile", requireAuth, accountHandler.DeleteAccount)
		}

		// Contact routes (protected, policy on writes)
		contacts := api.Group("/contacts")
		contacts.Use(requireAuth)
		{
			contact := []gin.HandlerFunc{
				middleware.LoadContact(svc.Contacts),
				middleware.RequireContactAccess(),
			}

			contacts.GET("", contactHandler.ListContacts)
			contacts.POST("", contactHandler.CreateContact)
			contacts.GET("/:id", append(contact, contactHandler.GetContact)...)
			contacts.PUT("/:id", append(contact, contactHandler.ReplaceContact)...)
			contacts.PATCH("/:id", append(contact, contactHandler.PatchContact)...)
			contacts.DELETE("/:id", append(contact, contactHandler.DeleteContact)...)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			loadTask := middleware.LoadTask(svc.Tasks)

			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/summary", taskHandler.Summary)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", loadTask, taskHandler.GetTask)
			tasks.PUT("/:id", loadTask, taskHandler.ReplaceTask)
			tasks.PATCH("/:id", loadTask, taskHandler.PatchTask)
			tasks.DELETE("/:id", loadTask, taskHandler.DeleteTask)
		}
	}
}
