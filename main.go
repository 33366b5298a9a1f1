package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yeremiapane/storefront-notify/config"
	"github.com/yeremiapane/storefront-notify/controllers"
	"github.com/yeremiapane/storefront-notify/router"
	"github.com/yeremiapane/storefront-notify/services"
	"github.com/yeremiapane/storefront-notify/store"
	"github.com/yeremiapane/storefront-notify/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	shopifyService := services.NewShopifyService(&services.ShopifyConfig{
		StoreURL:    cfg.ShopifyStoreURL,
		AccessToken: cfg.ShopifyAccessToken,
		Timeout:     cfg.HTTPTimeout,
	})

	// Without a bucket configured, image uploads fall back to the
	// Shopify file endpoint.
	var uploader services.AssetUploader
	if cfg.GCSBucket != "" {
		storageService, err := services.NewStorageService(context.Background(), &services.StorageConfig{
			ProjectID:       cfg.GCSProjectID,
			Bucket:          cfg.GCSBucket,
			CredentialsFile: cfg.GCSCredentialsFile,
		})
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to initialize cloud storage: %v", err)
		}
		defer storageService.Close()
		uploader = storageService
	}

	notificationStore := store.NewNotificationStore()
	notificationService := services.NewNotificationService(notificationStore, shopifyService, uploader, cfg.RemoteFanout)

	customerCtrl := controllers.NewCustomerController(shopifyService)
	notificationCtrl := controllers.NewNotificationController(notificationService)

	r := router.SetupRouter(cfg, customerCtrl, notificationCtrl)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
