package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ripplefeed/ripple/models"
)

func createPostAt(t *testing.T, db *gorm.DB, author models.User, title string, createdAt time.Time, likeCount uint) models.Post {
	t.Helper()
	post := models.Post{
		UserID:    author.ID,
		Title:     title,
		Content:   "content",
		LikeCount: likeCount,
		CreatedAt: createdAt,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

func TestTrendingOrdersByLikesThenRecency(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)
	author := createUser(t, db, "author")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := createPostAt(t, db, author, "old-popular", base, 5)
	newer := createPostAt(t, db, author, "new-popular", base.Add(time.Hour), 5)
	cold := createPostAt(t, db, author, "cold", base.Add(2*time.Hour), 1)

	posts, pg, err := feed.Trending(1, 10)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if pg.Total != 3 {
		t.Fatalf("total = %d, want 3", pg.Total)
	}
	got := []uint{posts[0].ID, posts[1].ID, posts[2].ID}
	want := []uint{newer.ID, old.ID, cold.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trending order = %v, want %v", got, want)
		}
	}
}

func TestTrendingPagination(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)
	author := createUser(t, db, "author")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		createPostAt(t, db, author, fmt.Sprintf("post-%d", i), base.Add(time.Duration(i)*time.Minute), uint(i))
	}

	posts, pg, err := feed.Trending(1, 10)
	if err != nil {
		t.Fatalf("Trending page 1: %v", err)
	}
	if len(posts) != 10 || pg.Total != 12 || pg.TotalPages() != 2 {
		t.Fatalf("page 1: len=%d total=%d pages=%d, want 10/12/2", len(posts), pg.Total, pg.TotalPages())
	}

	rest, _, err := feed.Trending(2, 10)
	if err != nil {
		t.Fatalf("Trending page 2: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("page 2 len = %d, want 2", len(rest))
	}
}

func TestPostsByUser(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		createPostAt(t, db, alice, fmt.Sprintf("alice-%d", i), base.Add(time.Duration(i)*time.Minute), 0)
	}
	createPostAt(t, db, bob, "bob-0", base, 0)

	posts, pg, err := feed.PostsByUser("alice", 1, 10)
	if err != nil {
		t.Fatalf("PostsByUser: %v", err)
	}
	if len(posts) != 10 || pg.Total != 12 {
		t.Fatalf("len=%d total=%d, want 10/12", len(posts), pg.Total)
	}
	// Newest first.
	if posts[0].Title != "alice-11" {
		t.Errorf("first post = %q, want alice-11", posts[0].Title)
	}
	for _, p := range posts {
		if p.UserID != alice.ID {
			t.Errorf("post %q belongs to user %d, want %d", p.Title, p.UserID, alice.ID)
		}
	}

	if _, _, err := feed.PostsByUser("nobody", 1, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("PostsByUser unknown err = %v, want ErrUserNotFound", err)
	}
}

func TestSharesByUserCarriesPost(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)
	svc := NewInteractionService(db)
	author := createUser(t, db, "author")
	sharer := createUser(t, db, "sharer")
	post := createPost(t, db, author, "shared-one")

	if _, err := svc.Share(sharer.ID, post.ID); err != nil {
		t.Fatalf("Share: %v", err)
	}

	shares, pg, err := feed.SharesByUser("sharer", 1, 10)
	if err != nil {
		t.Fatalf("SharesByUser: %v", err)
	}
	if pg.Total != 1 || len(shares) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", pg.Total, len(shares))
	}
	if shares[0].Post.Title != "shared-one" {
		t.Errorf("embedded post title = %q, want shared-one", shares[0].Post.Title)
	}
	if shares[0].Post.User.Username != "author" {
		t.Errorf("embedded post author = %q, want author", shares[0].Post.User.Username)
	}

	if _, _, err := feed.SharesByUser("nobody", 1, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("SharesByUser unknown err = %v, want ErrUserNotFound", err)
	}
}

func TestCommentsForPostOldestFirst(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)
	svc := NewInteractionService(db)
	author := createUser(t, db, "author")
	commenter := createUser(t, db, "commenter")
	post := createPost(t, db, author, "hello")

	for i := 0; i < 3; i++ {
		if _, err := svc.Comment(commenter.ID, post.ID, fmt.Sprintf("comment-%d", i)); err != nil {
			t.Fatalf("Comment %d: %v", i, err)
		}
	}

	comments, pg, err := feed.CommentsForPost(post.ID, 1, 10)
	if err != nil {
		t.Fatalf("CommentsForPost: %v", err)
	}
	if pg.Total != 3 {
		t.Fatalf("total = %d, want 3", pg.Total)
	}
	for i, c := range comments {
		if want := fmt.Sprintf("comment-%d", i); c.Content != want {
			t.Errorf("comment[%d] = %q, want %q", i, c.Content, want)
		}
	}

	if _, _, err := feed.CommentsForPost(999, 1, 10); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("CommentsForPost missing post err = %v, want ErrPostNotFound", err)
	}
}

func TestListPostsSearch(t *testing.T) {
	db := newTestDB(t)
	feed := NewFeedService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	createPostAt(t, db, alice, "gopher news", base, 0)
	createPostAt(t, db, bob, "unrelated", base.Add(time.Minute), 0)

	// Match on title.
	posts, pg, err := feed.ListPosts("gopher", 1, 10)
	if err != nil {
		t.Fatalf("ListPosts title search: %v", err)
	}
	if pg.Total != 1 || posts[0].Title != "gopher news" {
		t.Fatalf("title search total=%d, want 1 gopher post", pg.Total)
	}

	// Match on author username.
	posts, pg, err = feed.ListPosts("bob", 1, 10)
	if err != nil {
		t.Fatalf("ListPosts author search: %v", err)
	}
	if pg.Total != 1 || posts[0].UserID != bob.ID {
		t.Fatalf("author search total=%d, want bob's post", pg.Total)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize},
		{"negative", -3, -1, 1, DefaultPageSize},
		{"passthrough", 2, 25, 2, 25},
		{"capped", 1, 1000, 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := ClampPage(tt.page, tt.size)
			if page != tt.wantPage || size != tt.wantPageSize {
				t.Errorf("ClampPage(%d,%d) = (%d,%d), want (%d,%d)",
					tt.page, tt.size, page, size, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}
