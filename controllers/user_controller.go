package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/services"
	"github.com/ripplefeed/ripple/utils"
)

// UserController serves public user listings and per-user sub-listings.
type UserController struct {
	feed *services.FeedService
}

// NewUserController creates a new UserController instance.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{feed: services.NewFeedService(db)}
}

// ListUsers returns paginated users.
func (u *UserController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	users, pg, err := u.feed.ListUsers(page, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list users")
		return
	}
	utils.Success(ctx, listPayload(users, pg))
}

// GetUser returns public user info by username.
func (u *UserController) GetUser(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing username")
		return
	}
	user, err := u.feed.UserByUsername(username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to get user")
		return
	}
	utils.Success(ctx, gin.H{"user": publicUser(*user)})
}

// ListUserPosts returns a user's posts newest first.
func (u *UserController) ListUserPosts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing username")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	posts, pg, err := u.feed.PostsByUser(username, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list user posts")
		return
	}
	utils.Success(ctx, listPayload(posts, pg))
}

// ListUserShares returns a user's shares newest first, each carrying the
// shared post.
func (u *UserController) ListUserShares(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing username")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	shares, pg, err := u.feed.SharesByUser(username, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to list user shares")
		return
	}
	utils.Success(ctx, listPayload(shares, pg))
}
