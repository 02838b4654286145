package client

import (
	"context"
	"sync"
)

// LikeToggle is the optimistic like state of one post. Toggle flips the
// local state before the server answers and rolls it back if the call fails.
type LikeToggle struct {
	mu     sync.Mutex
	client *Client
	postID string
	liked  bool
	count  int
}

func NewLikeToggle(c *Client, post *Post) *LikeToggle {
	return &LikeToggle{
		client: c,
		postID: post.ID,
		liked:  post.LikedByCurrentUser,
		count:  post.LikesCount,
	}
}

// State returns the current local view.
func (t *LikeToggle) State() (liked bool, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.liked, t.count
}

// Toggle likes or unlikes the post. onChange, if set, sees the optimistic
// state before the request goes out.
func (t *LikeToggle) Toggle(ctx context.Context, onChange func(liked bool, count int)) error {
	t.mu.Lock()
	prevLiked, prevCount := t.liked, t.count
	t.liked = !prevLiked
	if t.liked {
		t.count++
	} else if t.count > 0 {
		t.count--
	}
	liked, count := t.liked, t.count
	t.mu.Unlock()

	if onChange != nil {
		onChange(liked, count)
	}

	var (
		post *Post
		err  error
	)
	if liked {
		post, err = t.client.LikePost(ctx, t.postID)
	} else {
		post, err = t.client.UnlikePost(ctx, t.postID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.liked, t.count = prevLiked, prevCount
		return err
	}
	t.liked, t.count = post.LikedByCurrentUser, post.LikesCount
	return nil
}
