package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/acebook/backend/internal/handlers"
	"github.com/anonto42/acebook/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postJSON struct {
	ID      string `json:"_id"`
	Message string `json:"message"`
	Image   string `json:"image"`
	Author  struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	} `json:"author"`
	Likes              []string `json:"likes"`
	LikesCount         int      `json:"likesCount"`
	LikedByCurrentUser bool     `json:"likedByCurrentUser"`
}

type postResponse struct {
	Message string   `json:"message"`
	Post    postJSON `json:"post"`
	Token   string   `json:"token"`
}

type postsResponse struct {
	Posts []postJSON `json:"posts"`
	Token string     `json:"token"`
}

func createPost(t *testing.T, srv *testutil.Server, token, message string) postJSON {
	t.Helper()
	rec := srv.Do(t, http.MethodPost, "/posts", token, map[string]string{"message": message})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out postResponse
	testutil.Decode(t, rec, &out)
	return out.Post
}

func messages(posts []postJSON) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Message
	}
	return out
}

func TestCreateAndGetPost(t *testing.T) {
	srv := testutil.NewServer(t)
	token, userID := srv.Signup(t, "poster@example.com")

	image := "data:image/png;base64,iVBORw0KGgo="
	rec := srv.Do(t, http.MethodPost, "/posts", token, map[string]string{
		"message": "   hello world  ",
		"image":   image,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created postResponse
	testutil.Decode(t, rec, &created)
	assert.Equal(t, "Post created", created.Message)
	assert.Equal(t, "hello world", created.Post.Message)
	assert.Equal(t, userID.Hex(), created.Post.Author.ID)
	assert.Equal(t, "poster@example.com", created.Post.Author.Email)
	assert.NotEmpty(t, created.Token)

	rec = srv.Do(t, http.MethodGet, "/posts/"+created.Post.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched postResponse
	testutil.Decode(t, rec, &fetched)
	assert.Equal(t, "hello world", fetched.Post.Message)
	assert.Equal(t, image, fetched.Post.Image)
	assert.Equal(t, []string{}, fetched.Post.Likes)
	assert.Equal(t, 0, fetched.Post.LikesCount)
	assert.Equal(t, fetched.Token, rec.Header().Get(handlers.TokenHeader))
}

func TestCreatePost_AuthorComesFromToken(t *testing.T) {
	srv := testutil.NewServer(t)
	token, userID := srv.Signup(t, "me@example.com")
	_, otherID := srv.Signup(t, "other@example.com")

	rec := srv.Do(t, http.MethodPost, "/posts", token, map[string]string{
		"message": "mine",
		"author":  otherID.Hex(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var out postResponse
	testutil.Decode(t, rec, &out)
	assert.Equal(t, userID.Hex(), out.Post.Author.ID)
}

func TestCreatePost_Validation(t *testing.T) {
	srv := testutil.NewServer(t)
	token, _ := srv.Signup(t, "v@example.com")

	tests := []struct {
		name     string
		message  string
		wantCode int
	}{
		{name: "empty", message: "", wantCode: http.StatusBadRequest},
		{name: "whitespace only", message: "   \n\t ", wantCode: http.StatusBadRequest},
		{name: "over cap", message: strings.Repeat("a", 201), wantCode: http.StatusBadRequest},
		{name: "at cap", message: strings.Repeat("a", 200), wantCode: http.StatusCreated},
		{name: "at cap after trim", message: "  " + strings.Repeat("b", 200) + "  ", wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.Do(t, http.MethodPost, "/posts", token, map[string]string{"message": tt.message})
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestGetPost_Errors(t *testing.T) {
	srv := testutil.NewServer(t)
	token, _ := srv.Signup(t, "e@example.com")

	rec := srv.Do(t, http.MethodGet, "/posts/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid post ID"}`, rec.Body.String())

	rec = srv.Do(t, http.MethodGet, "/posts/0123456789abcdef01234567", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Post not found"}`, rec.Body.String())
}

func TestLikeUnlike(t *testing.T) {
	srv := testutil.NewServer(t)
	token, userID := srv.Signup(t, "liker@example.com")
	post := createPost(t, srv, token, "hi")
	likePath := "/posts/" + post.ID + "/like"

	steps := []struct {
		method    string
		wantCount int
		wantLiked bool
	}{
		{http.MethodPost, 1, true},
		{http.MethodPost, 1, true},
		{http.MethodDelete, 0, false},
		{http.MethodDelete, 0, false},
	}
	for _, step := range steps {
		rec := srv.Do(t, step.method, likePath, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out postResponse
		testutil.Decode(t, rec, &out)
		assert.Equal(t, step.wantCount, out.Post.LikesCount)
		assert.Equal(t, step.wantLiked, out.Post.LikedByCurrentUser)
		assert.NotEmpty(t, out.Token)
		if step.wantLiked {
			assert.Equal(t, []string{userID.Hex()}, out.Post.Likes)
		}
	}

	rec := srv.Do(t, http.MethodPost, "/posts/bad/like", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.Do(t, http.MethodPost, "/posts/0123456789abcdef01234567/like", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.Do(t, http.MethodDelete, "/posts/0123456789abcdef01234567/like", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikes_AreComputedPerRequester(t *testing.T) {
	srv := testutil.NewServer(t)
	alice, _ := srv.Signup(t, "alice@example.com")
	bob, _ := srv.Signup(t, "bob@example.com")
	post := createPost(t, srv, alice, "shared")

	rec := srv.Do(t, http.MethodPost, "/posts/"+post.ID+"/like", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.Do(t, http.MethodGet, "/posts/"+post.ID, alice, nil)
	var seenByAlice postResponse
	testutil.Decode(t, rec, &seenByAlice)
	assert.Equal(t, 1, seenByAlice.Post.LikesCount)
	assert.False(t, seenByAlice.Post.LikedByCurrentUser)

	rec = srv.Do(t, http.MethodGet, "/posts/"+post.ID, bob, nil)
	var seenByBob postResponse
	testutil.Decode(t, rec, &seenByBob)
	assert.True(t, seenByBob.Post.LikedByCurrentUser)
}

func TestListPosts(t *testing.T) {
	srv := testutil.NewServer(t)
	alice, _ := srv.Signup(t, "alice@example.com")
	bob, _ := srv.Signup(t, "bob@example.com")

	first := createPost(t, srv, alice, "Hello World")
	second := createPost(t, srv, alice, "100% cotton")
	createPost(t, srv, bob, "nothing to see")

	for _, tok := range []string{alice, bob} {
		rec := srv.Do(t, http.MethodPost, "/posts/"+second.ID+"/like", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := srv.Do(t, http.MethodPost, "/posts/"+first.ID+"/like", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "store order", query: "", want: []string{"Hello World", "100% cotton", "nothing to see"}},
		{name: "search is case-insensitive", query: "?search=hello", want: []string{"Hello World"}},
		{name: "search treats % literally", query: "?search=0%25", want: []string{"100% cotton"}},
		{name: "search without match", query: "?search=zzz", want: []string{}},
		{name: "newest first", query: "?sort_by=createdAt&order=desc", want: []string{"nothing to see", "100% cotton", "Hello World"}},
		{name: "most liked first", query: "?sort_by=likes&order=desc", want: []string{"100% cotton", "Hello World", "nothing to see"}},
		{name: "least liked first", query: "?sort_by=likes&order=asc", want: []string{"nothing to see", "Hello World", "100% cotton"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.Do(t, http.MethodGet, "/posts"+tt.query, alice, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var out postsResponse
			testutil.Decode(t, rec, &out)
			assert.Equal(t, tt.want, messages(out.Posts))
			assert.NotEmpty(t, out.Token)
		})
	}

	rec = srv.Do(t, http.MethodGet, "/posts?sort_by=author", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.Do(t, http.MethodGet, "/posts?sort_by=likes&order=sideways", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyPosts(t *testing.T) {
	srv := testutil.NewServer(t)
	alice, _ := srv.Signup(t, "alice@example.com")
	bob, _ := srv.Signup(t, "bob@example.com")

	createPost(t, srv, alice, "first")
	createPost(t, srv, bob, "not mine")
	createPost(t, srv, alice, "second")

	rec := srv.Do(t, http.MethodGet, "/posts/me", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var posts []postJSON
	testutil.Decode(t, rec, &posts)
	assert.Equal(t, []string{"second", "first"}, messages(posts))
	assert.NotEmpty(t, rec.Header().Get(handlers.TokenHeader))
}

func TestUpdatePost(t *testing.T) {
	srv := testutil.NewServer(t)
	alice, _ := srv.Signup(t, "alice@example.com")
	bob, _ := srv.Signup(t, "bob@example.com")
	post := createPost(t, srv, alice, "draft")
	path := "/posts/" + post.ID

	rec := srv.Do(t, http.MethodPut, path, bob, map[string]string{"message": "hijack"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.Do(t, http.MethodPut, path, alice, map[string]string{"message": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.Do(t, http.MethodPut, path, alice, map[string]string{"message": " final "})
	require.Equal(t, http.StatusOK, rec.Code)
	var out postResponse
	testutil.Decode(t, rec, &out)
	assert.Equal(t, "final", out.Post.Message)

	rec = srv.Do(t, http.MethodPut, "/posts/0123456789abcdef01234567", alice, map[string]string{"message": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost(t *testing.T) {
	srv := testutil.NewServer(t)
	alice, _ := srv.Signup(t, "alice@example.com")
	bob, _ := srv.Signup(t, "bob@example.com")
	post := createPost(t, srv, alice, "doomed")
	path := "/posts/" + post.ID

	rec := srv.Do(t, http.MethodDelete, "/posts/123", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.Do(t, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.Do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "forbidden delete must not remove the post")

	rec = srv.Do(t, http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out postResponse
	testutil.Decode(t, rec, &out)
	assert.Equal(t, "Post deleted", out.Message)
	assert.NotEmpty(t, out.Token)

	rec = srv.Do(t, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
