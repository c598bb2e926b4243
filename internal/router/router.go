package router

import (
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"waitroom/internal/config"
	"waitroom/internal/handlers"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again in "+time.Until(info.ResetTime).Round(time.Second).String())
}

func Setup(log *zap.Logger, conf config.ServerConfig, gameHandler *handlers.GameHandler) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	// Starting or resetting throws away a session, so those are limited.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: uint(conf.RateLimit),
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	gameRoutes := router.Group("/game")
	{
		gameRoutes.GET("", gameHandler.Snapshot)
		gameRoutes.POST("/start", limiter, gameHandler.Start)
		gameRoutes.POST("/reset", limiter, gameHandler.Reset)
		gameRoutes.POST("/click", gameHandler.Click)
		gameRoutes.GET("/trials", gameHandler.Trials)
		gameRoutes.GET("/result", gameHandler.Result)
		gameRoutes.GET("/chart", gameHandler.Chart)
	}

	return router
}
