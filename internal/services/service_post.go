package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/metrics"
	"github.com/brauliobolano/LinkedInClone/internal/models"
	"github.com/brauliobolano/LinkedInClone/internal/repository"
	"github.com/brauliobolano/LinkedInClone/utils"
)

const MaxImageSize = 8 << 20

// sniffLen is how much of an upload is read to detect its format.
const sniffLen = 3072

// imageTypes are the formats a post may carry. SVG is excluded since it can
// carry script.
var imageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Post, error)
	FindAllNewestFirst(ctx context.Context) ([]models.Post, error)
	AddLike(ctx context.Context, postID bson.ObjectID, userID string) (*models.Post, error)
	RemoveLike(ctx context.Context, postID bson.ObjectID, userID string) (*models.Post, error)
	AppendComment(ctx context.Context, postID, commentID bson.ObjectID, at time.Time) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByIDsNewestFirst(ctx context.Context, ids []bson.ObjectID) ([]models.Comment, error)
	DeleteByIDs(ctx context.Context, ids []bson.ObjectID) (int64, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ImageUploader stores image bytes somewhere publicly readable and returns the URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, contentType string, body io.Reader) (string, error)
}

// FeedCache holds the rendered feed. Invalidate bumps a generation and
// SetFeed only stores when the generation still equals the one read before
// the feed was loaded, so a slow reader cannot overwrite a newer write.
type FeedCache interface {
	GetFeed(ctx context.Context) ([]dto.PostResponse, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetFeed(ctx context.Context, gen int64, posts []dto.PostResponse) (bool, error)
	Invalidate(ctx context.Context) error
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PostServiceDeps struct {
	Posts    PostStore
	Comments CommentStore
	// Tx may be nil for stores without transactions; Comment then compensates
	// by deleting the comment it just created.
	Tx       Transactor
	Uploader ImageUploader
	Cache    FeedCache
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	Now      func() time.Time
}

type PostService struct {
	posts    PostStore
	comments CommentStore
	tx       Transactor
	uploader ImageUploader
	cache    FeedCache
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewPostService(d PostServiceDeps) *PostService {
	s := &PostService{
		posts:    d.Posts,
		comments: d.Comments,
		tx:       d.Tx,
		uploader: d.Uploader,
		cache:    d.Cache,
		metrics:  d.Metrics,
		log:      d.Logger,
		now:      d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreatePost checks the caller and the text before touching storage, uploads
// the optional image, then persists the post with the resolved URL.
func (s *PostService) CreatePost(ctx context.Context, caller *Identity, text string, image *ImageUpload) (*dto.PostResponse, error) {
	if caller == nil {
		return nil, fmt.Errorf("%w: you must be logged in to create a post", ErrUnauthorized)
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationErr(models.ErrEmptyText)
	}
	user, err := caller.Ref()
	if err != nil {
		return nil, validationErr(err)
	}

	imageURL := ""
	if image != nil && image.Size > 0 {
		imageURL, err = s.uploadImage(ctx, caller, image)
		if err != nil {
			return nil, err
		}
	}

	post, err := models.NewPost(user, text, imageURL, s.now())
	if err != nil {
		return nil, validationErr(err)
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.metrics.RecordStoreError("create_post")
		return nil, fmt.Errorf("failed to create post: %w", storeErr("insert post", err))
	}

	s.metrics.RecordPostCreated()
	s.invalidateFeed(ctx)
	s.log.Info("Post created",
		zap.String("post_id", post.ID.Hex()),
		zap.String("user_id", user.UserID),
		zap.Bool("has_image", imageURL != ""),
	)

	resp := toPostResponse(*post, nil)
	return &resp, nil
}

func (s *PostService) uploadImage(ctx context.Context, caller *Identity, image *ImageUpload) (string, error) {
	if !strings.HasPrefix(image.ContentType, "image/") {
		return "", validationErr(fmt.Errorf("image must be an image/* file, got %q", image.ContentType))
	}
	if image.Size > MaxImageSize {
		return "", validationErr(fmt.Errorf("image exceeds %d bytes", MaxImageSize))
	}

	// The declared type comes from the client; the stored type is what the
	// bytes actually are.
	contentType, body, err := sniffImage(image.Body)
	if err != nil {
		return "", validationErr(err)
	}
	if s.uploader == nil {
		return "", fmt.Errorf("%w: no image storage configured", ErrUpload)
	}

	url, err := s.uploader.UploadImage(ctx, contentType, body)
	if err != nil {
		s.log.Error("Image upload failed",
			zap.String("user_id", caller.UserID),
			zap.String("filename", image.Filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	return url, nil
}

// sniffImage detects the format from the leading bytes and returns it with a
// reader that still yields the whole body.
func sniffImage(body io.Reader) (string, io.Reader, error) {
	if body == nil {
		return "", nil, errors.New("image has no content")
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for _, t := range imageTypes {
		if detected.Is(t) {
			return t, io.MultiReader(bytes.NewReader(head), body), nil
		}
	}
	return "", nil, fmt.Errorf("image content is %s, want png, jpeg, gif or webp", detected.String())
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*dto.PostResponse, error) {
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure("find_post", err)
	}
	return s.resolve(ctx, post)
}

// Like adds userID to the post's likes set. Repeating it changes nothing.
func (s *PostService) Like(ctx context.Context, postID, userID string) (*dto.PostResponse, error) {
	return s.updateLikes(ctx, postID, userID, "like", s.posts.AddLike)
}

// Unlike removes userID from the likes set if present.
func (s *PostService) Unlike(ctx context.Context, postID, userID string) (*dto.PostResponse, error) {
	return s.updateLikes(ctx, postID, userID, "unlike", s.posts.RemoveLike)
}

func (s *PostService) updateLikes(
	ctx context.Context,
	postID, userID, action string,
	apply func(context.Context, bson.ObjectID, string) (*models.Post, error),
) (*dto.PostResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrUnauthorized)
	}
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}

	post, err := apply(ctx, id, userID)
	if err != nil {
		return nil, s.storeFailure(action, err)
	}

	s.metrics.RecordLike(action)
	s.invalidateFeed(ctx)
	return s.resolve(ctx, post)
}

// Comment creates the comment and appends its id to the post as one unit:
// if the append fails, no comment is left behind.
func (s *PostService) Comment(ctx context.Context, postID string, caller *Identity, text string) (*dto.CommentResponse, error) {
	if caller == nil {
		return nil, fmt.Errorf("%w: you must be logged in to comment", ErrUnauthorized)
	}
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	user, err := caller.Ref()
	if err != nil {
		return nil, validationErr(err)
	}
	comment, err := models.NewComment(user, text, s.now())
	if err != nil {
		return nil, validationErr(err)
	}

	write := func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return s.storeFailure("create_comment", err)
		}
		if err := s.posts.AppendComment(ctx, id, comment.ID, comment.CreatedAt); err != nil {
			return s.storeFailure("append_comment", err)
		}
		return nil
	}

	if s.tx != nil {
		err = s.tx.WithTransaction(ctx, write)
	} else {
		err = s.writeCompensated(ctx, comment, write)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCommentCreated()
	s.invalidateFeed(ctx)

	resp := toCommentResponse(*comment)
	return &resp, nil
}

func (s *PostService) writeCompensated(ctx context.Context, comment *models.Comment, write func(context.Context) error) error {
	err := write(ctx)
	if err == nil {
		return nil
	}
	if _, derr := s.comments.DeleteByIDs(ctx, []bson.ObjectID{comment.ID}); derr != nil {
		s.log.Error("Failed to remove unreferenced comment",
			zap.String("comment_id", comment.ID.Hex()),
			zap.Error(derr),
		)
		return errors.Join(err, storeErr("compensate comment", derr))
	}
	return err
}

func (s *PostService) ListComments(ctx context.Context, postID string) ([]dto.CommentResponse, error) {
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeFailure("find_post", err)
	}
	comments, err := s.comments.FindByIDsNewestFirst(ctx, post.Comments)
	if err != nil {
		return nil, s.storeFailure("find_comments", err)
	}
	models.SortCommentsNewestFirst(comments)

	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return out, nil
}

// Remove deletes the post document. Its comments are not deleted.
func (s *PostService) Remove(ctx context.Context, postID string) error {
	id, err := parsePostID(postID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return s.storeFailure("delete_post", err)
	}
	s.metrics.RecordPostDeleted()
	s.invalidateFeed(ctx)
	return nil
}

// RemoveAsOwner is the delete endpoint's contract: an authenticated caller,
// a body userId matching the caller when given, and ownership of the post.
func (s *PostService) RemoveAsOwner(ctx context.Context, postID string, caller *Identity, claimedUserID string) error {
	if caller == nil {
		return fmt.Errorf("%w: you must be logged in to delete a post", ErrUnauthorized)
	}
	if claimedUserID != "" && claimedUserID != caller.UserID {
		return fmt.Errorf("%w: userId does not match the signed-in user", ErrForbidden)
	}
	id, err := parsePostID(postID)
	if err != nil {
		return err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return s.storeFailure("find_post", err)
	}
	if !post.IsOwnedBy(caller.UserID) {
		return fmt.Errorf("%w: only the author can delete this post", ErrForbidden)
	}
	return s.Remove(ctx, postID)
}

func (s *PostService) storeFailure(op string, err error) error {
	if errors.Is(err, ErrStore) || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: post", ErrNotFound)
	}
	s.metrics.RecordStoreError(op)
	s.log.Error("Store operation failed", zap.String("operation", op), zap.Error(err))
	return storeErr(op, err)
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Failed to invalidate feed cache", zap.Error(err))
	}
}

func parsePostID(hex string) (bson.ObjectID, error) {
	id, err := utils.Oid(strings.TrimSpace(hex))
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: invalid post id %q", ErrValidation, hex)
	}
	return id, nil
}
