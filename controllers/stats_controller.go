package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/models"
	"github.com/ripplefeed/ripple/utils"
)

// StatsController provides aggregate entity counts for the feed.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics. Individual count failures degrade to
// zero instead of failing the whole endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	counts := gin.H{}
	for name, model := range map[string]interface{}{
		"users":    &models.User{},
		"posts":    &models.Post{},
		"likes":    &models.Like{},
		"shares":   &models.Share{},
		"comments": &models.Comment{},
	} {
		var n int64
		if err := s.db.Model(model).Count(&n).Error; err != nil {
			n = 0
		}
		counts[name] = n
	}
	utils.Success(ctx, counts)
}
