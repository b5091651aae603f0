package routes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/metrics"
	"github.com/brauliobolano/LinkedInClone/internal/middleware"
	"github.com/brauliobolano/LinkedInClone/internal/services"
	"github.com/brauliobolano/LinkedInClone/web"
)

const postID = "65f1a2b3c4d5e6f708192a3b"

// MockPostService is a mock implementation of controllers.PostService
type MockPostService struct {
	CreatePostFunc    func(ctx context.Context, caller *services.Identity, text string, image *services.ImageUpload) (*dto.PostResponse, error)
	GetPostFunc       func(ctx context.Context, postID string) (*dto.PostResponse, error)
	ListAllPostsFunc  func(ctx context.Context) ([]dto.PostResponse, error)
	LikeFunc          func(ctx context.Context, postID, userID string) (*dto.PostResponse, error)
	UnlikeFunc        func(ctx context.Context, postID, userID string) (*dto.PostResponse, error)
	CommentFunc       func(ctx context.Context, postID string, caller *services.Identity, text string) (*dto.CommentResponse, error)
	ListCommentsFunc  func(ctx context.Context, postID string) ([]dto.CommentResponse, error)
	RemoveAsOwnerFunc func(ctx context.Context, postID string, caller *services.Identity, claimedUserID string) error
	calls             int
}

func (m *MockPostService) CreatePost(ctx context.Context, caller *services.Identity, text string, image *services.ImageUpload) (*dto.PostResponse, error) {
	m.calls++
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, caller, text, image)
	}
	return &dto.PostResponse{ID: postID, Text: text}, nil
}

func (m *MockPostService) GetPost(ctx context.Context, id string) (*dto.PostResponse, error) {
	m.calls++
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, id)
	}
	return &dto.PostResponse{ID: id}, nil
}

func (m *MockPostService) ListAllPosts(ctx context.Context) ([]dto.PostResponse, error) {
	m.calls++
	if m.ListAllPostsFunc != nil {
		return m.ListAllPostsFunc(ctx)
	}
	return []dto.PostResponse{}, nil
}

func (m *MockPostService) Like(ctx context.Context, id, userID string) (*dto.PostResponse, error) {
	m.calls++
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, id, userID)
	}
	return &dto.PostResponse{ID: id, Likes: []string{userID}, LikeCount: 1}, nil
}

func (m *MockPostService) Unlike(ctx context.Context, id, userID string) (*dto.PostResponse, error) {
	m.calls++
	if m.UnlikeFunc != nil {
		return m.UnlikeFunc(ctx, id, userID)
	}
	return &dto.PostResponse{ID: id, Likes: []string{}}, nil
}

func (m *MockPostService) Comment(ctx context.Context, id string, caller *services.Identity, text string) (*dto.CommentResponse, error) {
	m.calls++
	if m.CommentFunc != nil {
		return m.CommentFunc(ctx, id, caller, text)
	}
	return &dto.CommentResponse{ID: "c1", Text: text}, nil
}

func (m *MockPostService) ListComments(ctx context.Context, id string) ([]dto.CommentResponse, error) {
	m.calls++
	if m.ListCommentsFunc != nil {
		return m.ListCommentsFunc(ctx, id)
	}
	return []dto.CommentResponse{}, nil
}

func (m *MockPostService) RemoveAsOwner(ctx context.Context, id string, caller *services.Identity, claimedUserID string) error {
	m.calls++
	if m.RemoveAsOwnerFunc != nil {
		return m.RemoveAsOwnerFunc(ctx, id, caller, claimedUserID)
	}
	return nil
}

type MockAuthService struct {
	RegisterFunc func(ctx context.Context, req dto.RegisterReq) (*dto.TokenResp, error)
	LoginFunc    func(ctx context.Context, req dto.LoginReq) (*dto.TokenResp, error)
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterReq) (*dto.TokenResp, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginReq) (*dto.TokenResp, error) {
	return m.LoginFunc(ctx, req)
}

type stubTokens map[string]*services.Identity

func (s stubTokens) ParseToken(token string) (*services.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, services.ErrUnauthorized
}

var ada = &services.Identity{UserID: "user_ada", UserImage: "https://img.example.com/ada.png", FirstName: "Ada", LastName: "Lovelace"}

func newTestApp(t *testing.T, posts *MockPostService, auth *MockAuthService) (*fiber.App, *prometheus.Registry) {
	t.Helper()
	tmpl, err := web.Templates()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	deps := AppDeps{
		AppName:   "LinkedIn Clone",
		Metrics:   metrics.NewWithRegistry(reg),
		Gatherer:  reg,
		Tokens:    stubTokens{"ada-token": ada},
		Posts:     posts,
		Templates: tmpl,
		Timeout:   time.Second,
	}
	if auth != nil {
		deps.Auth = auth
	}
	return NewApp(deps), reg
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer ada-token")
	return req
}

func multipartPost(t *testing.T, fields map[string]string, image []byte, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="cat.png"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t, &MockPostService{}, nil)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "feed_service_http_requests_total")
}

func TestListPosts(t *testing.T) {
	posts := &MockPostService{
		ListAllPostsFunc: func(ctx context.Context) ([]dto.PostResponse, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return []dto.PostResponse{{ID: postID, Text: "hello", Likes: []string{}}}, nil
		},
	}
	app, _ := newTestApp(t, posts, nil)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"_id":"`+postID+`"`)

	posts.ListAllPostsFunc = func(ctx context.Context) ([]dto.PostResponse, error) {
		return nil, fmt.Errorf("%w: find: %w", services.ErrStore, errors.New("socket closed"))
	}
	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"internal server error"}`, body)
}

func TestGetPost_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"found", nil, http.StatusOK},
		{"bad id", fmt.Errorf("%w: invalid post id", services.ErrValidation), http.StatusBadRequest},
		{"missing", fmt.Errorf("%w: post", services.ErrNotFound), http.StatusNotFound},
		{"store", fmt.Errorf("%w: boom", services.ErrStore), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &MockPostService{GetPostFunc: func(ctx context.Context, id string) (*dto.PostResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &dto.PostResponse{ID: id}, nil
			}}
			app, _ := newTestApp(t, posts, nil)

			resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/posts/"+postID, nil))
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	posts := &MockPostService{}
	app, _ := newTestApp(t, posts, nil)

	resp, _ := do(t, app, multipartPost(t, map[string]string{"postInput": "hello"}, nil, ""))

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, posts.calls)
}

func TestCreatePost_MultipartWithImage(t *testing.T) {
	var gotText, gotType, gotBytes string
	var gotCaller *services.Identity
	posts := &MockPostService{
		CreatePostFunc: func(ctx context.Context, caller *services.Identity, text string, image *services.ImageUpload) (*dto.PostResponse, error) {
			gotCaller, gotText = caller, text
			require.NotNil(t, image)
			gotType = image.ContentType
			b, _ := io.ReadAll(image.Body)
			gotBytes = string(b)
			return &dto.PostResponse{ID: postID, Text: text, ImageURL: "/uploads/posts/x.png"}, nil
		},
	}
	app, _ := newTestApp(t, posts, nil)

	resp, body := do(t, app, authed(multipartPost(t, map[string]string{"postInput": "hello"}, []byte("png!"), "image/png")))

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "/uploads/posts/x.png")
	assert.Equal(t, "hello", gotText)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png!", gotBytes)
	assert.Equal(t, "user_ada", gotCaller.UserID)
}

func TestCreatePost_RedirectsForm(t *testing.T) {
	app, _ := newTestApp(t, &MockPostService{}, nil)

	resp, _ := do(t, app, authed(multipartPost(t, map[string]string{"postInput": "hello", "redirect": "/"}, nil, "")))

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestCreatePost_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: text is required", services.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: bucket down", services.ErrUpload), http.StatusBadGateway},
		{fmt.Errorf("failed to create post: %w", services.ErrStore), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		posts := &MockPostService{CreatePostFunc: func(ctx context.Context, caller *services.Identity, text string, image *services.ImageUpload) (*dto.PostResponse, error) {
			return nil, tt.err
		}}
		app, _ := newTestApp(t, posts, nil)

		resp, _ := do(t, app, authed(multipartPost(t, map[string]string{"postInput": " "}, nil, "")))
		assert.Equal(t, tt.status, resp.StatusCode, tt.err.Error())
	}
}

func TestDeletePost(t *testing.T) {
	var gotClaim string
	posts := &MockPostService{
		RemoveAsOwnerFunc: func(ctx context.Context, id string, caller *services.Identity, claimed string) error {
			gotClaim = claimed
			if claimed != "" && claimed != caller.UserID {
				return services.ErrForbidden
			}
			return nil
		},
	}
	app, _ := newTestApp(t, posts, nil)

	req := httptest.NewRequest(http.MethodDelete, "/posts/"+postID, strings.NewReader(`{"userId":"user_ada"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := do(t, app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, posts.calls)

	req = httptest.NewRequest(http.MethodDelete, "/posts/"+postID, strings.NewReader(`{"userId":"mallory"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, app, authed(req))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/posts/"+postID, strings.NewReader(`{"userId":"user_ada"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, app, authed(req))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "user_ada", gotClaim)

	resp, _ = do(t, app, authed(httptest.NewRequest(http.MethodDelete, "/posts/"+postID, nil)))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "", gotClaim)
}

func TestLikeAndUnlike(t *testing.T) {
	var likedBy string
	posts := &MockPostService{
		LikeFunc: func(ctx context.Context, id, userID string) (*dto.PostResponse, error) {
			likedBy = userID
			return &dto.PostResponse{ID: id, Likes: []string{userID}, LikeCount: 1}, nil
		},
	}
	app, _ := newTestApp(t, posts, nil)

	resp, _ := do(t, app, httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/like", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, app, authed(httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/like", nil)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user_ada", likedBy)
	assert.Contains(t, body, `"likeCount":1`)

	resp, _ = do(t, app, authed(httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/unlike", nil)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestComments(t *testing.T) {
	posts := &MockPostService{
		ListCommentsFunc: func(ctx context.Context, id string) ([]dto.CommentResponse, error) {
			return []dto.CommentResponse{{ID: "c3", Text: "t3"}, {ID: "c1", Text: "t1"}}, nil
		},
	}
	app, _ := newTestApp(t, posts, nil)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/posts/"+postID+"/comments", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"t3"`)

	req := httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/comments", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	calls := posts.calls
	resp, _ = do(t, app, authed(req))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, calls, posts.calls)

	req = httptest.NewRequest(http.MethodPost, "/posts/"+postID+"/comments", strings.NewReader(`{"text":"nice"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body = do(t, app, authed(req))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"nice"`)
}

func TestAuthRoutes(t *testing.T) {
	auth := &MockAuthService{
		LoginFunc: func(ctx context.Context, req dto.LoginReq) (*dto.TokenResp, error) {
			if req.Password != "correct horse" {
				return nil, services.ErrUnauthorized
			}
			return &dto.TokenResp{
				AccessToken: "ada-token",
				TokenType:   "Bearer",
				ExpiresAt:   time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			}, nil
		},
		RegisterFunc: func(ctx context.Context, req dto.RegisterReq) (*dto.TokenResp, error) {
			return nil, fmt.Errorf("%w: email already registered", services.ErrConflict)
		},
	}
	app, _ := newTestApp(t, &MockPostService{}, auth)

	login := func(password string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(fmt.Sprintf(`{"email":"ada@example.com","password":%q}`, password)))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	resp, _ := do(t, app, login("wrong"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, app, login("correct horse"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookie {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	me := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	me.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session.Value})
	resp, body := do(t, app, me)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"userId":"user_ada"`)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"ada@example.com","password":"longenough","firstName":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedPage(t *testing.T) {
	posts := &MockPostService{
		ListAllPostsFunc: func(ctx context.Context) ([]dto.PostResponse, error) {
			return []dto.PostResponse{{
				ID:        postID,
				User:      dto.UserRefResp{UserID: "u2", UserImage: "https://img/u2.png", FirstName: "Grace"},
				Text:      "<b>shipped</b>",
				LikeCount: 2,
				Comments:  []dto.CommentResponse{{ID: "c1", Text: "congrats", User: dto.UserRefResp{FirstName: "Ada"}}},
			}}, nil
		},
	}
	app, _ := newTestApp(t, posts, nil)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "&lt;b&gt;shipped&lt;/b&gt;")
	assert.Contains(t, body, "congrats")
	assert.Contains(t, body, "Sign in")
	assert.NotContains(t, body, `name="postInput"`)

	resp, body = do(t, app, authed(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="postInput"`)
	assert.Contains(t, body, `name="redirect" value="/"`)
	assert.Contains(t, body, "URL.createObjectURL")
}

func TestUploadsServedWithNoSniff(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))

	tmpl, err := web.Templates()
	require.NoError(t, err)
	app := NewApp(AppDeps{
		Tokens:    stubTokens{},
		Posts:     &MockPostService{},
		Templates: tmpl,
		UploadDir: dir,
	})

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/a.png", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
