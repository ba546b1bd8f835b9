// Command mockapi serves a fake narration API for trying the client
// without the real service. Projects resolve after a few polls and every
// completed project plays a short tone.
package main

import (
	"log"
	"net/http"

	"github.com/alkime/voiceover/internal/apitest"
	"github.com/gin-gonic/gin"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := SetupLogger(config)

	logger.Info("Starting mock narration API",
		"env", config.Env,
		"port", config.Port,
		"demo_email", config.DemoEmail,
		"resolve_after", config.ResolveAfter,
	)

	if config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []apitest.Option{apitest.ResolveAfter(config.ResolveAfter)}
	if config.FailWith != "" {
		opts = append(opts, apitest.FailGeneration(config.FailWith))
	}

	fake := apitest.NewUnstarted(opts...)
	fake.AddUser(config.DemoEmail, config.DemoPassword)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "mockapi",
		})
	})

	// everything else is the fake API under /api
	router.NoRoute(gin.WrapH(fake.Router()))

	logger.Info("Server listening", "port", config.Port)

	if err := router.Run(":" + config.Port); err != nil {
		logger.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
