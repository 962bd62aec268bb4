package services

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ripplefeed/ripple/models"
)

// newTestDB opens a throwaway SQLite database with the same schema and error
// translation the MySQL store uses. _txlock=immediate makes concurrent write
// transactions queue on the write lock instead of failing with SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}, &models.Share{}, &models.Comment{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createPost(t *testing.T, db *gorm.DB, author models.User, title string) models.Post {
	t.Helper()
	post := models.Post{UserID: author.ID, Title: title, Content: "content"}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

func postCounters(t *testing.T, db *gorm.DB, postID uint) (likes, shares, comments uint) {
	t.Helper()
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post %d: %v", postID, err)
	}
	return post.LikeCount, post.ShareCount, post.CommentCount
}
