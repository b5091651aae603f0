package services

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/models"
	"github.com/brauliobolano/LinkedInClone/internal/repository"
)

// memStore is an in-memory PostStore and CommentStore. The *Err fields make the
// matching operation fail.
type memStore struct {
	mu       sync.Mutex
	posts    map[bson.ObjectID]models.Post
	comments map[bson.ObjectID]models.Comment

	createPostErr    error
	appendCommentErr error
	listErr          error

	writes int
}

func newMemStore() *memStore {
	return &memStore{
		posts:    map[bson.ObjectID]models.Post{},
		comments: map[bson.ObjectID]models.Comment{},
	}
}

func (m *memStore) snapshot() (map[bson.ObjectID]models.Post, map[bson.ObjectID]models.Comment) {
	posts := make(map[bson.ObjectID]models.Post, len(m.posts))
	for k, v := range m.posts {
		v.Comments = slices.Clone(v.Comments)
		v.Likes = slices.Clone(v.Likes)
		posts[k] = v
	}
	comments := make(map[bson.ObjectID]models.Comment, len(m.comments))
	for k, v := range m.comments {
		comments[k] = v
	}
	return posts, comments
}

func (m *memStore) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createPostErr != nil {
		return m.createPostErr
	}
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	m.writes++
	m.posts[post.ID] = *post
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) FindAllNewestFirst(ctx context.Context) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	models.SortPostsNewestFirst(out)
	return out, nil
}

func (m *memStore) AddLike(ctx context.Context, postID bson.ObjectID, userID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !slices.Contains(p.Likes, userID) {
		p.Likes = append(slices.Clone(p.Likes), userID)
	}
	m.writes++
	m.posts[postID] = p
	return &p, nil
}

func (m *memStore) RemoveLike(ctx context.Context, postID bson.ObjectID, userID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Likes = slices.DeleteFunc(slices.Clone(p.Likes), func(s string) bool { return s == userID })
	m.writes++
	m.posts[postID] = p
	return &p, nil
}

func (m *memStore) AppendComment(ctx context.Context, postID, commentID bson.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendCommentErr != nil {
		return m.appendCommentErr
	}
	p, ok := m.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Comments = append(slices.Clone(p.Comments), commentID)
	p.UpdatedAt = at
	m.writes++
	m.posts[postID] = p
	return nil
}

func (m *memStore) Delete(ctx context.Context, id bson.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNotFound
	}
	m.writes++
	delete(m.posts, id)
	return nil
}

// memComments shares state with memStore but satisfies CommentStore.
type memComments struct{ *memStore }

func (m memComments) Create(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.comments[c.ID] = *c
	return nil
}

func (m memComments) FindByIDsNewestFirst(ctx context.Context, ids []bson.ObjectID) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.comments[id]; ok {
			out = append(out, c)
		}
	}
	models.SortCommentsNewestFirst(out)
	return out, nil
}

func (m memComments) DeleteByIDs(ctx context.Context, ids []bson.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.comments[id]; ok {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// memTx restores the store when fn fails, like an aborted transaction.
type memTx struct{ store *memStore }

func (t memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	posts, comments := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.store.mu.Lock()
		t.store.posts, t.store.comments = posts, comments
		t.store.mu.Unlock()
		return err
	}
	return nil
}

type MockUploader struct {
	UploadImageFunc func(ctx context.Context, contentType string, body io.Reader) (string, error)
	calls           int
}

func (m *MockUploader) UploadImage(ctx context.Context, contentType string, body io.Reader) (string, error) {
	m.calls++
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, contentType, body)
	}
	return "https://cdn.example.com/posts/image", nil
}

// MockFeedCache behaves like the redis cache: Invalidate bumps the generation
// and drops the feed, SetFeed stores only for the current generation.
type MockFeedCache struct {
	GetFeedFunc    func(ctx context.Context) ([]dto.PostResponse, bool, error)
	SetFeedFunc    func(ctx context.Context, gen int64, posts []dto.PostResponse) (bool, error)
	InvalidateFunc func(ctx context.Context) error

	mu            sync.Mutex
	gen           int64
	feed          []dto.PostResponse
	invalidations int
}

func (m *MockFeedCache) GetFeed(ctx context.Context) ([]dto.PostResponse, bool, error) {
	if m.GetFeedFunc != nil {
		return m.GetFeedFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feed, m.feed != nil, nil
}

func (m *MockFeedCache) Generation(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *MockFeedCache) SetFeed(ctx context.Context, gen int64, posts []dto.PostResponse) (bool, error) {
	if m.SetFeedFunc != nil {
		return m.SetFeedFunc(ctx, gen, posts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false, nil
	}
	m.feed = posts
	return true, nil
}

func (m *MockFeedCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.invalidations++
	m.gen++
	m.feed = nil
	m.mu.Unlock()
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx)
	}
	return nil
}

type MockUserStore struct {
	CreateFunc      func(ctx context.Context, u *models.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*models.User, error)
}

func (m *MockUserStore) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}
