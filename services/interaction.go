package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/models"
)

// InteractionService applies like/share/comment mutations. Every operation
// runs the membership-record change and the counter adjustment on the post in
// a single transaction, so readers never observe one without the other.
//
// Counter updates are relative SQL expressions evaluated inside the
// transaction, not read-modify-write of a value loaded into memory, so two
// users interacting with the same post concurrently both land. Decrements are
// floored at zero: a counter that already drifted low is clamped rather than
// driven negative.
type InteractionService struct {
	db *gorm.DB
}

// NewInteractionService creates an InteractionService on the given store.
func NewInteractionService(db *gorm.DB) *InteractionService {
	return &InteractionService{db: db}
}

// Like records that userID liked postID and bumps the post's like counter.
// Returns ErrPostNotFound when the post is absent and ErrAlreadyLiked when a
// like for the (user, post) pair already exists; in the conflict case the
// counter is untouched because the whole transaction rolls back.
func (s *InteractionService) Like(userID, postID uint) (*models.Like, error) {
	like := models.Like{UserID: userID, PostID: postID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findPost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}
		return incrementCounter(tx, postID, "like_count")
	})
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Unlike removes the (user, post) like and decrements the like counter,
// floored at zero. Missing post or missing like both return ErrLikeNotFound
// style not-found failures.
func (s *InteractionService) Unlike(userID, postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := findPost(tx, postID); err != nil {
			return err
		}
		var like models.Like
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLikeNotFound
			}
			return err
		}
		if err := tx.Delete(&like).Error; err != nil {
			return err
		}
		return decrementCounter(tx, postID, "like_count")
	})
}

// Share reposts postID for userID. Sharing one's own post is rejected before
// the uniqueness attempt; a duplicate share returns ErrAlreadyShared with no
// counter change.
func (s *InteractionService) Share(userID, postID uint) (*models.Share, error) {
	share := models.Share{UserID: userID, PostID: postID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if post.UserID == userID {
			return ErrSelfShare
		}
		if err := tx.Create(&share).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyShared
			}
			return err
		}
		return incrementCounter(tx, postID, "share_count")
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("Post").Preload("Post.User").First(&share, share.ID).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// Unshare deletes the (user, post) share and decrements the share counter,
// floored at zero.
func (s *InteractionService) Unshare(userID, postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := findPost(tx, postID); err != nil {
			return err
		}
		var share models.Share
		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&share).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareNotFound
			}
			return err
		}
		if err := tx.Delete(&share).Error; err != nil {
			return err
		}
		return decrementCounter(tx, postID, "share_count")
	})
}

// Comment attaches a comment to postID and bumps the comment counter. There
// is no uniqueness constraint; a user may comment any number of times.
func (s *InteractionService) Comment(userID, postID uint, content string) (*models.Comment, error) {
	comment := models.Comment{UserID: userID, PostID: postID, Content: content}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findPost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return incrementCounter(tx, postID, "comment_count")
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// EditComment replaces the content of the caller's own comment. No counter
// effect.
func (s *InteractionService) EditComment(userID, commentID uint, content string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotCommentAuthor
	}
	comment.Content = content
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes the caller's own comment and decrements the post's
// comment counter atomically with the delete.
func (s *InteractionService) DeleteComment(userID, commentID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		if comment.UserID != userID {
			return ErrNotCommentAuthor
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return decrementCounter(tx, comment.PostID, "comment_count")
	})
}

func findPost(tx *gorm.DB, postID uint) error {
	var post models.Post
	if err := tx.Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func incrementCounter(tx *gorm.DB, postID uint, column string) error {
	return tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// decrementCounter subtracts one from a post counter, clamped at zero so a
// previously drifted counter can never go negative.
func decrementCounter(tx *gorm.DB, postID uint, column string) error {
	expr := "CASE WHEN " + column + " > 0 THEN " + column + " - 1 ELSE 0 END"
	return tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(expr)).Error
}
