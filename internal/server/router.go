package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	QuizHandler    *QuizHandler
	Metrics        *Metrics
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger), cfg.Metrics.Middleware())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", SessionHeader},
			ExposeHeaders:    []string{SessionHeader},
			AllowCredentials: true,
			MaxAge:           time.Hour,
		}))
	}

	router.GET("/healthz", cfg.QuizHandler.Health)
	router.GET("/metrics", cfg.Metrics.Handler())

	api := router.Group("/api")
	api.Use(SessionMiddleware())
	{
		api.GET("/stats", cfg.QuizHandler.GetStats)
		api.GET("/stats/history", cfg.QuizHandler.GetHistory)
		api.POST("/quizzes", cfg.QuizHandler.StartQuiz)
		api.POST("/quizzes/submit", cfg.QuizHandler.SubmitQuiz)
		api.DELETE("/progress", cfg.QuizHandler.ResetProgress)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
