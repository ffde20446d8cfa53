package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/nutriscan/nutriscan/internal/cache"
	"github.com/nutriscan/nutriscan/internal/camera"
	"github.com/nutriscan/nutriscan/internal/config"
	"github.com/nutriscan/nutriscan/internal/models"
	"github.com/nutriscan/nutriscan/internal/offclient"
	"github.com/nutriscan/nutriscan/internal/resolver"
	"github.com/nutriscan/nutriscan/internal/scanner"
	"github.com/nutriscan/nutriscan/internal/server"
)

func main() {
	// A missing .env is fine; the config file carries the defaults.
	_ = godotenv.Load()

	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize product cache
	productCache, err := cache.NewByEngine(cfg.Cache.Engine, cfg.Cache.Path)
	if err != nil {
		log.Fatal("Failed to open product cache:", err)
	}
	defer productCache.Close()

	// Initialize upstream client and resolver
	client := offclient.NewClient(offclient.Config{
		BaseURLs: map[models.Domain]string{
			models.DomainFood:     cfg.API.FoodURL,
			models.DomainPet:      cfg.API.PetURL,
			models.DomainCosmetic: cfg.API.BeautyURL,
		},
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	})
	products := resolver.New(productCache, client)

	// Server-side scanning is optional; browser clients decode on-device.
	var sessions server.SessionFactory
	if cfg.Scanner.Enabled {
		lister := camera.NewLister()
		defer lister.Close()
		sessions = func() *scanner.Session {
			source := camera.NewSource(camera.Config{
				Width:  cfg.Scanner.Width,
				Height: cfg.Scanner.Height,
			})
			return scanner.NewSession(lister, scanner.NewZXingDecoder(source))
		}
	}

	// Initialize and start server
	srv := server.New(products, sessions, cfg.Server.Debug)
	if err := srv.Start(cfg.Server.Port, cfg.Server.StaticDir); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
