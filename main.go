package main

import (
	"context"
	"net/http"
	"time"

	"github.com/wisetv/wisetv/admin"
	"github.com/wisetv/wisetv/auth"
	"github.com/wisetv/wisetv/config"
	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/routes"
	"github.com/wisetv/wisetv/store"
	"github.com/wisetv/wisetv/uploader"
	"github.com/wisetv/wisetv/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Post{}, &models.SocialLink{}, &models.AdminUser{})

	// Seed the first admin account when the table is empty
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := auth.Bootstrap(db, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			utils.Sugar.Warnf("admin bootstrap failed: %v", err)
		}
	}

	st := store.NewGormStore(db)
	gate := auth.NewGate(auth.NewGormProvider(db))

	up := uploader.New(uploader.Config{
		CloudName:    cfg.CloudinaryCloudName,
		UploadPreset: cfg.CloudinaryUploadPreset,
		UploadURL:    cfg.CloudinaryUploadURL,
		MaxBytes:     cfg.MaxUploadBytes,
	}, &http.Client{Timeout: 30 * time.Second})

	dashboard := admin.NewListController(st, nil, nil, time.Duration(cfg.NoticeTTLSeconds)*time.Second)
	defer dashboard.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := dashboard.Refresh(ctx); err != nil {
		utils.Sugar.Warnf("initial dashboard refresh failed: %v", err)
	}
	cancel()

	r := routes.SetupRouter(db, st, gate, dashboard, up)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
