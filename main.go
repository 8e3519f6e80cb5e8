package main

import (
	"time"

	"github.com/foodbridge/foodbridge/config"
	"github.com/foodbridge/foodbridge/models"
	"github.com/foodbridge/foodbridge/realtime"
	"github.com/foodbridge/foodbridge/routes"
	"github.com/foodbridge/foodbridge/services"
	"github.com/foodbridge/foodbridge/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.FoodPost{}, &models.WasteFoodPost{})

	// The broadcaster is built once here and handed to everything that
	// publishes; there is no package-level instance to initialize.
	hub := realtime.NewHub(utils.Sugar, nil)

	// One service instance each, shared by the HTTP handlers and the
	// background sweeper.
	foodSvc := services.NewFoodService(db, time.Duration(cfg.FreshnessDefaultHours)*time.Hour)
	wasteSvc := services.NewWasteFoodService(db)

	r := routes.SetupRouter(db, hub, foodSvc, wasteSvc)

	// Background sweep expiring stale available posts. A sweep that
	// expired something invalidates the cached listing like any other
	// transition does.
	services.StartSweeper(foodSvc, time.Duration(cfg.SweepIntervalMinutes)*time.Minute, utils.Sugar,
		func(int64) { utils.CacheDelete(utils.FoodAvailableCacheKey) })

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
