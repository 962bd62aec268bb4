package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ripplefeed/ripple/models"
)

func TestMain(m *testing.M) {
	// Config is loaded once per process; pin it down before any route test.
	os.Setenv("JWT_SECRET", "router-test-secret")
	os.Setenv("GIN_MODE", "test")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	dir, err := os.MkdirTemp("", "ripple-router-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("GIN_LOG_PATH", filepath.Join(dir, "gin_access.log"))
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
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

	srv := httptest.NewServer(SetupRouter(db))
	t.Cleanup(srv.Close)
	return srv, db
}

type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, apiEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&env)
	}
	return resp, env
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": "secret123"}
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", creds)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login %s: no token in response", username)
	}
	return data.Token
}

func createPostHTTP(t *testing.T, srv *httptest.Server, token, title string) uint {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts", token,
		map[string]string{"title": title, "content": "content"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: status %d", resp.StatusCode)
	}
	var data struct {
		Post models.Post `json:"post"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	return data.Post.ID
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	creds := map[string]string{"username": "dupe", "password": "secret123"}
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", creds); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first register: status %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", creds); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second register: status %d, want 409", resp.StatusCode)
	}
}

func TestUnauthenticatedWriteRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/posts", "",
		map[string]string{"title": "t", "content": "c"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create post: status %d, want 401", resp.StatusCode)
	}
}

func TestLikeEndpointStatusMapping(t *testing.T) {
	srv, db := newTestServer(t)
	author := registerAndLogin(t, srv, "author")
	liker := registerAndLogin(t, srv, "liker")
	postID := createPostHTTP(t, srv, author, "likeable")

	likeURL := fmt.Sprintf("%s/api/v1/posts/%d/like", srv.URL, postID)

	if resp, _ := doJSON(t, http.MethodPost, likeURL, liker, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("like: status %d, want 201", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPost, likeURL, liker, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate like: status %d, want 400", resp.StatusCode)
	}

	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.LikeCount != 1 {
		t.Errorf("like_count = %d, want 1", post.LikeCount)
	}

	if resp, _ := doJSON(t, http.MethodDelete, likeURL, liker, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unlike: status %d, want 204", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, likeURL, liker, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second unlike: status %d, want 404", resp.StatusCode)
	}

	missingURL := srv.URL + "/api/v1/posts/99999/like"
	if resp, _ := doJSON(t, http.MethodPost, missingURL, liker, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("like missing post: status %d, want 404", resp.StatusCode)
	}
}

func TestSelfShareRejected(t *testing.T) {
	srv, db := newTestServer(t)
	author := registerAndLogin(t, srv, "owner")
	other := registerAndLogin(t, srv, "other")
	postID := createPostHTTP(t, srv, author, "shareable")

	shareURL := fmt.Sprintf("%s/api/v1/posts/%d/share", srv.URL, postID)

	if resp, _ := doJSON(t, http.MethodPost, shareURL, author, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self share: status %d, want 400", resp.StatusCode)
	}
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.ShareCount != 0 {
		t.Errorf("share_count after self share = %d, want 0", post.ShareCount)
	}

	if resp, _ := doJSON(t, http.MethodPost, shareURL, other, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("share by other user: status %d, want 201", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, shareURL, other, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unshare: status %d, want 204", resp.StatusCode)
	}
}

func TestNonAuthorCannotMutatePost(t *testing.T) {
	srv, _ := newTestServer(t)
	author := registerAndLogin(t, srv, "writer")
	intruder := registerAndLogin(t, srv, "intruder")
	postID := createPostHTTP(t, srv, author, "protected")

	postURL := fmt.Sprintf("%s/api/v1/posts/%d", srv.URL, postID)
	update := map[string]string{"title": "hijacked", "content": "x"}

	if resp, _ := doJSON(t, http.MethodPut, postURL, intruder, update); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-author update: status %d, want 403", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, postURL, intruder, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-author delete: status %d, want 403", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPut, postURL, author, update); resp.StatusCode != http.StatusOK {
		t.Fatalf("author update: status %d, want 200", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, postURL, author, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("author delete: status %d, want 204", resp.StatusCode)
	}
}

func TestCommentEndpoints(t *testing.T) {
	srv, db := newTestServer(t)
	author := registerAndLogin(t, srv, "author")
	commenter := registerAndLogin(t, srv, "commenter")
	postID := createPostHTTP(t, srv, author, "discussion")

	commentsURL := fmt.Sprintf("%s/api/v1/posts/%d/comments", srv.URL, postID)

	resp, env := doJSON(t, http.MethodPost, commentsURL, commenter, map[string]string{"content": "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create comment: status %d, want 201", resp.StatusCode)
	}
	var created struct {
		Comment models.Comment `json:"comment"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode comment: %v", err)
	}

	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.CommentCount != 1 {
		t.Errorf("comment_count = %d, want 1", post.CommentCount)
	}

	commentURL := fmt.Sprintf("%s/api/v1/comments/%d", srv.URL, created.Comment.ID)
	if resp, _ := doJSON(t, http.MethodPut, commentURL, author, map[string]string{"content": "hijacked"}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-author edit comment: status %d, want 403", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, commentURL, commenter, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete comment: status %d, want 204", resp.StatusCode)
	}

	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if post.CommentCount != 0 {
		t.Errorf("comment_count after delete = %d, want 0", post.CommentCount)
	}

	// Listing is public and the deleted comment is gone.
	resp, env = doJSON(t, http.MethodGet, commentsURL, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list comments: status %d", resp.StatusCode)
	}
	var listing struct {
		Items []models.Comment `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Items) != 0 {
		t.Errorf("comments after delete = %d, want 0", len(listing.Items))
	}
}

func TestUserSubListings(t *testing.T) {
	srv, _ := newTestServer(t)
	author := registerAndLogin(t, srv, "prolific")
	for i := 0; i < 12; i++ {
		createPostHTTP(t, srv, author, fmt.Sprintf("post-%d", i))
	}

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/prolific/posts", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list user posts: status %d", resp.StatusCode)
	}
	var listing struct {
		Items      []models.Post `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Items) != 10 || listing.Pagination.Total != 12 {
		t.Fatalf("page 1: len=%d total=%d, want 10/12", len(listing.Items), listing.Pagination.Total)
	}

	if resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/ghost/posts", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user posts: status %d, want 404", resp.StatusCode)
	}
}
