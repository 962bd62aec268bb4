package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/services"
	"github.com/ripplefeed/ripple/utils"
)

// InteractionController exposes like/share/comment endpoints. Handlers bind
// input and forward into the interaction service, then map its typed failures
// onto HTTP statuses: absent records 404, duplicate like/share and self-share
// 400, non-author mutation 403.
type InteractionController struct {
	interactions *services.InteractionService
	feed         *services.FeedService
}

// NewInteractionController creates an InteractionController instance.
func NewInteractionController(db *gorm.DB) *InteractionController {
	return &InteractionController{
		interactions: services.NewInteractionService(db),
		feed:         services.NewFeedService(db),
	}
}

// LikePost records a like for the caller on the post.
func (i *InteractionController) LikePost(ctx *gin.Context) {
	userID, postID, ok := i.callerAndPost(ctx)
	if !ok {
		return
	}

	like, err := i.interactions.Like(userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		case errors.Is(err, services.ErrAlreadyLiked):
			utils.Error(ctx, http.StatusBadRequest, 40030, "you have already liked this post")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to like post")
		}
		return
	}

	i.invalidatePostCaches(postID)
	utils.Created(ctx, gin.H{"like": like})
}

// UnlikePost removes the caller's like from the post.
func (i *InteractionController) UnlikePost(ctx *gin.Context) {
	userID, postID, ok := i.callerAndPost(ctx)
	if !ok {
		return
	}

	if err := i.interactions.Unlike(userID, postID); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		case errors.Is(err, services.ErrLikeNotFound):
			utils.Error(ctx, http.StatusNotFound, 40404, "like not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to unlike post")
		}
		return
	}

	i.invalidatePostCaches(postID)
	utils.NoContent(ctx)
}

// SharePost reposts the post for the caller.
func (i *InteractionController) SharePost(ctx *gin.Context) {
	userID, postID, ok := i.callerAndPost(ctx)
	if !ok {
		return
	}

	share, err := i.interactions.Share(userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		case errors.Is(err, services.ErrSelfShare):
			utils.Error(ctx, http.StatusBadRequest, 40031, "you cannot share your own post")
		case errors.Is(err, services.ErrAlreadyShared):
			utils.Error(ctx, http.StatusBadRequest, 40032, "you have already shared this post")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to share post")
		}
		return
	}

	i.invalidatePostCaches(postID)
	utils.Created(ctx, gin.H{"share": share})
}

// UnsharePost removes the caller's share of the post.
func (i *InteractionController) UnsharePost(ctx *gin.Context) {
	userID, postID, ok := i.callerAndPost(ctx)
	if !ok {
		return
	}

	if err := i.interactions.Unshare(userID, postID); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		case errors.Is(err, services.ErrShareNotFound):
			utils.Error(ctx, http.StatusNotFound, 40405, "share not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to unshare post")
		}
		return
	}

	i.invalidatePostCaches(postID)
	utils.NoContent(ctx)
}

// ListComments returns a post's comments oldest first.
func (i *InteractionController) ListComments(ctx *gin.Context) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid post id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	comments, pg, err := i.feed.CommentsForPost(postID, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to list comments")
		return
	}
	utils.Success(ctx, listPayload(comments, pg))
}

// CreateComment allows authenticated users to comment on posts.
func (i *InteractionController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "content cannot be empty")
		return
	}

	userID, postID, ok := i.callerAndPost(ctx)
	if !ok {
		return
	}

	comment, err := i.interactions.Comment(userID, postID, content)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to create comment")
		return
	}

	i.invalidatePostCaches(postID)
	utils.Created(ctx, gin.H{"comment": comment})
}

// UpdateComment lets the comment author edit its content.
func (i *InteractionController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "content cannot be empty")
		return
	}

	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid comment id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment, err := i.interactions.EditComment(userID, commentID, content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
		case errors.Is(err, services.ErrNotCommentAuthor):
			utils.Error(ctx, http.StatusForbidden, 40320, "you can only edit your own comment")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to update comment")
		}
		return
	}

	i.invalidatePostCaches(comment.PostID)
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment lets the comment author remove it.
func (i *InteractionController) DeleteComment(ctx *gin.Context) {
	commentID, ok := parseID(ctx.Param("commentId"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid comment id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := i.interactions.DeleteComment(userID, commentID); err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
		case errors.Is(err, services.ErrNotCommentAuthor):
			utils.Error(ctx, http.StatusForbidden, 40321, "you can only delete your own comment")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to delete comment")
		}
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.NoContent(ctx)
}

func (i *InteractionController) callerAndPost(ctx *gin.Context) (uint, uint, bool) {
	postID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid post id")
		return 0, 0, false
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return 0, 0, false
	}
	return userID, postID, true
}

// Counter mutations change both the post detail and any counter-ordered list.
func (i *InteractionController) invalidatePostCaches(postID uint) {
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(postID)))
	utils.InvalidateByPrefix("cache:posts:")
}
