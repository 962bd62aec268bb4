package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/models"
)

// DefaultPageSize is the page size used when the client does not ask for one.
const DefaultPageSize = 10

// MaxPageSize caps client supplied page sizes.
const MaxPageSize = 100

// Page describes one page of a listing.
type Page struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// TotalPages reports the number of pages available at this page size.
func (p Page) TotalPages() int {
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// ClampPage normalizes raw pagination input to sane values.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// FeedService is the read-only query layer over the entity store.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService creates a FeedService on the given store.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// ListPosts returns posts newest first, optionally filtered by a search term
// matched against the title and the author's username.
func (s *FeedService) ListPosts(search string, page, pageSize int) ([]models.Post, Page, error) {
	page, pageSize = ClampPage(page, pageSize)
	q := s.db.Model(&models.Post{}).Preload("User").Order("created_at DESC")
	if search != "" {
		q = q.Joins("JOIN users ON users.id = posts.user_id").
			Where("posts.title LIKE ? OR users.username LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	return s.paginatePosts(q, page, pageSize)
}

// Trending returns posts ordered by like count descending; posts with equal
// like counts sort newest first.
func (s *FeedService) Trending(page, pageSize int) ([]models.Post, Page, error) {
	page, pageSize = ClampPage(page, pageSize)
	q := s.db.Model(&models.Post{}).Preload("User").
		Order("like_count DESC, created_at DESC")
	return s.paginatePosts(q, page, pageSize)
}

// GetPost loads a single post with its author.
func (s *FeedService) GetPost(postID uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// PostsByUser lists a user's posts newest first. The username must resolve to
// an existing user, otherwise ErrUserNotFound.
func (s *FeedService) PostsByUser(username string, page, pageSize int) ([]models.Post, Page, error) {
	user, err := s.UserByUsername(username)
	if err != nil {
		return nil, Page{}, err
	}
	page, pageSize = ClampPage(page, pageSize)
	q := s.db.Model(&models.Post{}).Where("user_id = ?", user.ID).
		Preload("User").Order("created_at DESC")
	return s.paginatePosts(q, page, pageSize)
}

// SharesByUser lists a user's shares newest first, each carrying the shared
// post and its author.
func (s *FeedService) SharesByUser(username string, page, pageSize int) ([]models.Share, Page, error) {
	user, err := s.UserByUsername(username)
	if err != nil {
		return nil, Page{}, err
	}
	page, pageSize = ClampPage(page, pageSize)

	var total int64
	q := s.db.Model(&models.Share{}).Where("user_id = ?", user.ID)
	if err := q.Count(&total).Error; err != nil {
		return nil, Page{}, err
	}
	var shares []models.Share
	if err := q.Preload("Post").Preload("Post.User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&shares).Error; err != nil {
		return nil, Page{}, err
	}
	return shares, Page{Page: page, PageSize: pageSize, Total: total}, nil
}

// CommentsForPost lists a post's comments oldest first. The post must exist,
// otherwise ErrPostNotFound.
func (s *FeedService) CommentsForPost(postID uint, page, pageSize int) ([]models.Comment, Page, error) {
	if err := findPost(s.db, postID); err != nil {
		return nil, Page{}, err
	}
	page, pageSize = ClampPage(page, pageSize)

	var total int64
	q := s.db.Model(&models.Comment{}).Where("post_id = ?", postID)
	if err := q.Count(&total).Error; err != nil {
		return nil, Page{}, err
	}
	var comments []models.Comment
	if err := q.Preload("User").Order("created_at ASC, id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&comments).Error; err != nil {
		return nil, Page{}, err
	}
	return comments, Page{Page: page, PageSize: pageSize, Total: total}, nil
}

// ListUsers returns users newest first.
func (s *FeedService) ListUsers(page, pageSize int) ([]models.User, Page, error) {
	page, pageSize = ClampPage(page, pageSize)
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, Page{}, err
	}
	var users []models.User
	if err := s.db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, Page{}, err
	}
	return users, Page{Page: page, PageSize: pageSize, Total: total}, nil
}

// UserByUsername resolves a username to a user record.
func (s *FeedService) UserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *FeedService) paginatePosts(q *gorm.DB, page, pageSize int) ([]models.Post, Page, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Page{}, err
	}
	var posts []models.Post
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		return nil, Page{}, err
	}
	return posts, Page{Page: page, PageSize: pageSize, Total: total}, nil
}
