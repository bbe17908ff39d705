package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhive/tutorhive/internal/api/handlers"
	"github.com/tutorhive/tutorhive/internal/api/middleware"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	Request      *handlers.RequestHandler
	Session      *handlers.SessionHandler
	Review       *handlers.ReviewHandler
	Notification *handlers.NotificationHandler
	Profile      *handlers.ProfileHandler
	Admin        *handlers.AdminHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/auth/register", d.Auth.Register)
	r.POST("/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/auth/me", d.Auth.Me)

	auth.POST("/session-requests", middleware.RequireStudent(), d.Request.Create)
	auth.GET("/session-requests/student", d.Request.ListMineAsStudent)
	auth.GET("/session-requests/mentor", middleware.RequireMentor(), d.Request.ListMineAsMentor)
	auth.PUT("/session-requests/:id/accept", middleware.RequireMentor(), d.Request.Accept)
	auth.PUT("/session-requests/:id/reject", middleware.RequireMentor(), d.Request.Reject)

	auth.POST("/session-notifications/create-session", middleware.RequireMentor(), d.Session.CreateOpen)
	auth.POST("/session-notifications/join-session/:id", middleware.RequireStudent(), d.Session.Join)
	auth.GET("/session-notifications/available-sessions", d.Session.ListAvailable)

	auth.GET("/sessions/mine", d.Session.ListMine)
	auth.GET("/sessions/:id", d.Session.Get)
	auth.PUT("/sessions/:id/complete", d.Session.Complete)
	auth.PUT("/sessions/:id/cancel", d.Session.Cancel)
	auth.POST("/sessions/:id/review", d.Review.Create)

	auth.PUT("/reviews/:id", d.Review.Update)
	auth.DELETE("/reviews/:id", d.Review.Delete)
	auth.GET("/users/:id/reviews", d.Review.ListForUser)

	auth.GET("/notifications", d.Notification.List)
	auth.GET("/notifications/unread-count", d.Notification.UnreadCount)
	auth.GET("/notifications/legacy-messages", d.Notification.LegacyMessages)
	auth.PUT("/notifications/:id/read", d.Notification.MarkRead)
	auth.PUT("/notifications/read-all", d.Notification.MarkAllRead)

	auth.GET("/mentors", d.Profile.ListMentors)
	auth.GET("/mentors/:id/profile", d.Profile.Get)
	auth.PUT("/profile/me", middleware.RequireMentor(), d.Profile.UpdateMine)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users/pending", d.Admin.ListPending)
	admin.PUT("/users/:id/approve", d.Admin.Approve)
	admin.PUT("/users/:id/verify-documents", d.Admin.VerifyDocuments)
}
