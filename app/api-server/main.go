package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tutorhive/tutorhive/config"
	"github.com/tutorhive/tutorhive/internal/api/handlers"
	"github.com/tutorhive/tutorhive/internal/api/middleware"
	"github.com/tutorhive/tutorhive/internal/api/routes"
	"github.com/tutorhive/tutorhive/internal/cache"
	"github.com/tutorhive/tutorhive/internal/logger"
	mongorepo "github.com/tutorhive/tutorhive/internal/repositories/mongo"
	pgrepo "github.com/tutorhive/tutorhive/internal/repositories/postgres"
	"github.com/tutorhive/tutorhive/internal/services"
	"github.com/tutorhive/tutorhive/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	log.Info("PostgreSQL connected")

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}
	log.Info("MongoDB connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	db := config.MongoDatabase()

	// repositories
	users := pgrepo.NewUserRepo(config.PostgresDB)
	profiles := pgrepo.NewProfileRepo(config.PostgresDB)
	requests := mongorepo.NewRequestRepo(db)
	sessions := mongorepo.NewSessionRepo(db)
	notifications := mongorepo.NewNotificationRepo(db)
	reviews := mongorepo.NewReviewRepo(db)

	// services
	redisCache := cache.NewRedisCache(config.RedisClient)
	fanoutQueue := workers.NewRedisFanoutQueue(config.RedisClient, os.Getenv("FANOUT_STREAM"))

	notificationSvc := services.NewNotificationService(notifications)
	authSvc := services.NewAuthService(users, os.Getenv("JWT_SECRET"), 24*time.Hour)
	userSvc := services.NewUserService(users, notificationSvc)
	profileSvc := services.NewProfileService(profiles)
	requestSvc := services.NewRequestService(requests, sessions, users, notificationSvc)
	sessionSvc := services.NewSessionService(sessions, notificationSvc, fanoutQueue, redisCache)
	reviewSvc := services.NewReviewService(reviews, sessions, users, notificationSvc)
	fanoutSvc := services.NewFanoutService(sessions, notifications, users)

	// fan-out worker pool
	pool := &workers.FanoutWorkerPool{
		Redis:  config.RedisClient,
		Fanout: fanoutSvc,
		Logger: log,
		Stream: os.Getenv("FANOUT_STREAM"),
	}
	if err := pool.Start(context.Background()); err != nil {
		log.WithError(err).Fatal("fan-out worker error")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:         handlers.NewAuthHandler(authSvc, userSvc),
		Request:      handlers.NewRequestHandler(requestSvc),
		Session:      handlers.NewSessionHandler(sessionSvc),
		Review:       handlers.NewReviewHandler(reviewSvc),
		Notification: handlers.NewNotificationHandler(notificationSvc),
		Profile:      handlers.NewProfileHandler(profileSvc, userSvc),
		Admin:        handlers.NewAdminHandler(userSvc),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
