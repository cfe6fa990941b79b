package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"postforge/pkg"
	"postforge/pkg/utils"
)

var opts struct {
	Config string `short:"c" long:"config" description:"Configuration file name"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	// Optional .env, for local development
	_ = godotenv.Load()

	if os.Getenv("PF_DEBUG") == "true" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	config := pkg.MustLoadConfig(opts.Config)

	if config.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := pkg.NewDB(config.Database)
	if err != nil {
		logrus.WithError(err).Fatalf("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		logrus.WithError(err).Fatalf("failed to migrate database")
	}

	store := pkg.NewBunStore(db.DB())
	generator := pkg.NewOpenAIGenerator(&config.LLM)

	archive, err := pkg.NewArchive(&config.Archive)
	if err != nil {
		logrus.WithError(err).Fatalf("failed to init post archive")
	}

	pool := pkg.NewWorkerPool(store, generator, archive, &config.Worker, &config.Generation)
	pool.Start()
	defer pool.Stop()

	router := gin.New()
	router.Use(utils.GetGinLoggerHandler(), gin.Recovery(), gin.ErrorLogger())

	server := pkg.NewServer(config, store, pool, generator, archive)
	server.MountRoutes(router)

	var handler http.Handler = router
	if len(config.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: config.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"*"},
		}).Handler(router)
	}

	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Port), handler); err != nil {
		logrus.WithError(err).Fatalf("failed to start server")
	}
}
