package repositories

import "errors"

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("email already in use")
)

// Collection names shared by the Mongo repositories and their $lookup stages.
const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
	filesBucket        = "files"
)
