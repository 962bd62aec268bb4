package main

import (
	"github.com/ripplefeed/ripple/config"
	"github.com/ripplefeed/ripple/models"
	"github.com/ripplefeed/ripple/routes"
	"github.com/ripplefeed/ripple/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Like{}, &models.Share{}, &models.Comment{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
