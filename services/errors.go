package services

import "errors"

// Typed failures returned by the interaction and feed services. Controllers
// match these with errors.Is and map them onto HTTP status codes; nothing in
// this package is retried or swallowed.
var (
	// Absent records.
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrLikeNotFound    = errors.New("like not found")
	ErrShareNotFound   = errors.New("share not found")

	// Uniqueness conflicts: at most one like/share per (user, post).
	ErrAlreadyLiked  = errors.New("post already liked")
	ErrAlreadyShared = errors.New("post already shared")

	// Ownership violations.
	ErrSelfShare        = errors.New("cannot share your own post")
	ErrNotPostAuthor    = errors.New("only the author can modify this post")
	ErrNotCommentAuthor = errors.New("only the author can modify this comment")
)
