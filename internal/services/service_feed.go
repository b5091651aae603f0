package services

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/dto"
	"github.com/brauliobolano/LinkedInClone/internal/models"
	"github.com/brauliobolano/LinkedInClone/utils"
)

// TimeLayout renders timestamps at the millisecond precision the store keeps,
// so clients see the same order the server sorts by.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ListAllPosts returns every post newest-first with comments resolved and all
// identifiers rendered as strings. A cached feed is served when present.
func (s *PostService) ListAllPosts(ctx context.Context) ([]dto.PostResponse, error) {
	if cached, ok := s.cachedFeed(ctx); ok {
		return cached, nil
	}
	gen, cacheable := s.feedGeneration(ctx)

	posts, err := s.posts.FindAllNewestFirst(ctx)
	if err != nil {
		return nil, s.storeFailure("list_posts", err)
	}
	models.SortPostsNewestFirst(posts)

	byID, err := s.commentsFor(ctx, posts)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p, pick(byID, p.Comments)))
	}

	if cacheable {
		stored, err := s.cache.SetFeed(ctx, gen, out)
		switch {
		case err != nil:
			s.log.Warn("Failed to store feed in cache", zap.Error(err))
		case !stored:
			s.log.Debug("Feed changed while loading, not cached", zap.Int64("generation", gen))
		}
	}
	return out, nil
}

// feedGeneration reads the cache generation before the store is queried. A
// feed is only cached when this succeeds.
func (s *PostService) feedGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn("Feed cache generation lookup failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *PostService) cachedFeed(ctx context.Context) ([]dto.PostResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	posts, ok, err := s.cache.GetFeed(ctx)
	switch {
	case err != nil:
		s.metrics.RecordFeedCache("error")
		s.log.Warn("Feed cache lookup failed", zap.Error(err))
		return nil, false
	case !ok:
		s.metrics.RecordFeedCache("miss")
		return nil, false
	}
	s.metrics.RecordFeedCache("hit")
	return posts, true
}

// commentsFor loads the comments of every post in one query.
func (s *PostService) commentsFor(ctx context.Context, posts []models.Post) (map[bson.ObjectID]models.Comment, error) {
	var ids []bson.ObjectID
	for _, p := range posts {
		ids = append(ids, p.Comments...)
	}
	byID := make(map[bson.ObjectID]models.Comment, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	comments, err := s.comments.FindByIDsNewestFirst(ctx, ids)
	if err != nil {
		return nil, s.storeFailure("find_comments", err)
	}
	for _, c := range comments {
		byID[c.ID] = c
	}
	return byID, nil
}

// resolve loads the comments of a single post and renders it.
func (s *PostService) resolve(ctx context.Context, post *models.Post) (*dto.PostResponse, error) {
	byID, err := s.commentsFor(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	resp := toPostResponse(*post, pick(byID, post.Comments))
	return &resp, nil
}

// pick returns the comments for ids that still exist, newest-first.
func pick(byID map[bson.ObjectID]models.Comment, ids []bson.ObjectID) []models.Comment {
	out := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	models.SortCommentsNewestFirst(out)
	return out
}

func toUserRefResp(u models.UserRef) dto.UserRefResp {
	return dto.UserRefResp{
		UserID:    u.UserID,
		UserImage: u.UserImage,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func toCommentResponse(c models.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        c.ID.Hex(),
		User:      toUserRefResp(c.User),
		Text:      c.Text,
		CreatedAt: c.CreatedAt.UTC().Format(TimeLayout),
		UpdatedAt: c.UpdatedAt.UTC().Format(TimeLayout),
	}
}

func toPostResponse(p models.Post, comments []models.Comment) dto.PostResponse {
	resolved := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		resolved = append(resolved, toCommentResponse(c))
	}
	likes := make([]string, 0, len(p.Likes))
	likes = append(likes, p.Likes...)

	return dto.PostResponse{
		ID:         p.ID.Hex(),
		User:       toUserRefResp(p.User),
		Text:       p.Text,
		ImageURL:   p.ImageURL,
		Comments:   resolved,
		CommentIDs: utils.HexIDs(p.Comments),
		Likes:      likes,
		LikeCount:  len(likes),
		CreatedAt:  p.CreatedAt.UTC().Format(TimeLayout),
		UpdatedAt:  p.UpdatedAt.UTC().Format(TimeLayout),
	}
}
