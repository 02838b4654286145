// Package client is a typed HTTP client for the acebook API. It keeps the
// newest session token, replacing it after every successful call, the way
// the web frontend does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/acebook/backend/internal/models"
)

const tokenHeader = "X-Auth-Token"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("acebook: %d %s", e.Status, e.Message)
}

// Session holds the current token. It is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	token string
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SetToken(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	Session    *Session
}

// New returns a client for baseURL. A nil httpClient gets a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		Session:    &Session{},
	}
}

// Post is a post as returned to its requester.
type Post struct {
	ID                 string              `json:"_id"`
	Message            string              `json:"message"`
	Author             *models.UserSummary `json:"author"`
	Image              string              `json:"image,omitempty"`
	Likes              []string            `json:"likes"`
	LikesCount         int                 `json:"likesCount"`
	LikedByCurrentUser bool                `json:"likedByCurrentUser"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type Comment struct {
	ID        string              `json:"_id"`
	Content   string              `json:"content"`
	Author    *models.UserSummary `json:"author"`
	Post      *models.PostSummary `json:"post"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// ListOptions maps to the GET /posts query string.
type ListOptions struct {
	Search string
	SortBy string
	Order  string
}

type tokenBody struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

func (c *Client) Signup(ctx context.Context, req models.CreateUserRequest) error {
	var out tokenBody
	return c.do(ctx, http.MethodPost, "/users", req, &out)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var out tokenBody
	return c.do(ctx, http.MethodPost, "/tokens", models.LoginRequest{Email: email, Password: password}, &out)
}

func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPosts(ctx context.Context, opts ListOptions) ([]Post, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.SortBy != "" {
		q.Set("sort_by", opts.SortBy)
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	path := "/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Posts []Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	return c.postCall(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil)
}

func (c *Client) CreatePost(ctx context.Context, message, image string) (*Post, error) {
	return c.postCall(ctx, http.MethodPost, "/posts", models.CreatePostRequest{Message: message, Image: image})
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	var out tokenBody
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, &out)
}

func (c *Client) LikePost(ctx context.Context, id string) (*Post, error) {
	return c.postCall(ctx, http.MethodPost, "/posts/"+url.PathEscape(id)+"/like", nil)
}

func (c *Client) UnlikePost(ctx context.Context, id string) (*Post, error) {
	return c.postCall(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id)+"/like", nil)
}

// MyPosts returns the caller's posts; the token arrives only in the header.
func (c *Client) MyPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := c.do(ctx, http.MethodGet, "/posts/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, postID, content string) (*Comment, error) {
	return c.commentCall(ctx, http.MethodPost, "/comments", models.CreateCommentRequest{Content: content, Post: postID})
}

func (c *Client) CommentsForPost(ctx context.Context, postID string) ([]Comment, error) {
	var out struct {
		Comments []Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/comments/post/"+url.PathEscape(postID), nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *Client) UpdateComment(ctx context.Context, id, content string) (*Comment, error) {
	return c.commentCall(ctx, http.MethodPut, "/comments/"+url.PathEscape(id), models.UpdateCommentRequest{Content: content})
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	var out tokenBody
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, &out)
}

func (c *Client) postCall(ctx context.Context, method, path string, body interface{}) (*Post, error) {
	var out struct {
		Post Post `json:"post"`
	}
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out.Post, nil
}

func (c *Client) commentCall(ctx context.Context, method, path string, body interface{}) (*Comment, error) {
	var out struct {
		Comment Comment `json:"comment"`
	}
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}

// do sends one request. On success the session adopts the token from the
// header or, failing that, from the body's token field.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg tokenBody
		_ = json.Unmarshal(raw, &msg)
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if token := resp.Header.Get(tokenHeader); token != "" {
		c.Session.SetToken(token)
	} else if len(raw) > 0 && raw[0] == '{' {
		var tb tokenBody
		if json.Unmarshal(raw, &tb) == nil {
			c.Session.SetToken(tb.Token)
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
