package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialgram/internal/data/entity"
	"socialgram/internal/data/repository"
	"socialgram/pkg/notifier"
	"socialgram/pkg/token"
)

// In-memory repository fakes. Maps are guarded by a single mutex since the
// async dispatch path touches them from another goroutine.

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email != nil && strings.EqualFold(*user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.PhoneNumber != nil && *user.PhoneNumber == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Username, username) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*entity.User
	for _, user := range f.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (f *fakeUserRepo) CountAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) failUpdates(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateErr = err
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeVerificationRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*entity.VerificationCode
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{codes: make(map[uuid.UUID]*entity.VerificationCode)}
}

func (f *fakeVerificationRepo) Create(_ context.Context, code *entity.VerificationCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *code
	f.codes[code.ID] = &clone
	return nil
}

func (f *fakeVerificationRepo) CreateExclusive(ctx context.Context, code *entity.VerificationCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.codes {
		if existing.UserID == code.UserID && existing.Usable(time.Now()) {
			return repository.ErrCodeOutstanding
		}
	}
	clone := *code
	f.codes[code.ID] = &clone
	return nil
}

func (f *fakeVerificationRepo) FindValid(_ context.Context, userID uuid.UUID, submitted string) (*entity.VerificationCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *entity.VerificationCode
	for _, code := range f.codes {
		if code.UserID != userID || code.Code != submitted || !code.Usable(time.Now()) {
			continue
		}
		if newest == nil || code.CreatedAt.After(newest.CreatedAt) {
			newest = code
		}
	}
	if newest == nil {
		return nil, nil
	}
	clone := *newest
	return &clone, nil
}

func (f *fakeVerificationRepo) MarkConfirmed(_ context.Context, codeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.codes[codeID]; ok && !code.IsConfirmed {
		code.IsConfirmed = true
		return nil
	}
	return fmt.Errorf("code %s not found or already confirmed", codeID.String())
}

func (f *fakeVerificationRepo) HasOutstanding(_ context.Context, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range f.codes {
		if code.UserID == userID && code.Usable(time.Now()) {
			return true, nil
		}
	}
	return false, nil
}

// latestCodeFor returns the newest unconsumed code value issued to the user.
func (f *fakeVerificationRepo) latestCodeFor(userID uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *entity.VerificationCode
	for _, code := range f.codes {
		if code.UserID != userID {
			continue
		}
		if newest == nil || code.CreatedAt.After(newest.CreatedAt) {
			newest = code
		}
	}
	if newest == nil {
		return ""
	}
	return newest.Code
}

// expireAll force-expires every code issued to the user.
func (f *fakeVerificationRepo) expireAll(userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range f.codes {
		if code.UserID == userID {
			code.ExpiresAt = time.Now().Add(-time.Second)
		}
	}
}

// shiftExpiry moves every one of the user's codes to now+delta.
func (f *fakeVerificationRepo) shiftExpiry(userID uuid.UUID, delta time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range f.codes {
		if code.UserID == userID {
			code.ExpiresAt = time.Now().Add(delta)
		}
	}
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*entity.Post
	likes *fakeLikeRepo
}

func newFakePostRepo(likes *fakeLikeRepo) *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]*entity.Post), likes: likes}
}

func (f *fakePostRepo) Create(_ context.Context, post *entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakePostRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post, ok := f.posts[id]; ok && post.DeletedAt == nil {
		clone := *post
		return &clone, nil
	}
	return nil, nil
}

func (f *fakePostRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var posts []*entity.Post
	for _, post := range f.posts {
		if post.DeletedAt == nil {
			clone := *post
			posts = append(posts, &clone)
		}
	}
	return posts, nil
}

func (f *fakePostRepo) CountAll(_ context.Context) (int64, error) {
	posts, _ := f.FindAll(context.Background(), 0, 0)
	return int64(len(posts)), nil
}

func (f *fakePostRepo) Update(_ context.Context, post *entity.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *post
	f.posts[post.ID] = &clone
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post, ok := f.posts[id]; ok {
		now := time.Now()
		post.DeletedAt = &now
	}
	return nil
}

func (f *fakePostRepo) GetPostStats(_ context.Context, postID uuid.UUID, viewerID *uuid.UUID) (int64, int64, bool, error) {
	f.likes.mu.Lock()
	defer f.likes.mu.Unlock()
	var likes int64
	meLiked := false
	for _, like := range f.likes.postLikes {
		if like.PostID != postID {
			continue
		}
		likes++
		if viewerID != nil && like.AuthorID == *viewerID {
			meLiked = true
		}
	}
	return likes, 0, meLiked, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*entity.PostComment
	likes    *fakeLikeRepo
}

func newFakeCommentRepo(likes *fakeLikeRepo) *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[uuid.UUID]*entity.PostComment), likes: likes}
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *entity.PostComment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *comment
	f.comments[comment.ID] = &clone
	return nil
}

func (f *fakeCommentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.PostComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.comments[id]; ok && comment.DeletedAt == nil {
		clone := *comment
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeCommentRepo) FindByPostID(_ context.Context, postID uuid.UUID, limit, offset int) ([]*entity.PostComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var comments []*entity.PostComment
	for _, comment := range f.comments {
		if comment.PostID == postID && comment.ParentID == nil && comment.DeletedAt == nil {
			clone := *comment
			comments = append(comments, &clone)
		}
	}
	return comments, nil
}

func (f *fakeCommentRepo) CountByPostID(_ context.Context, postID uuid.UUID) (int64, error) {
	comments, _ := f.FindByPostID(context.Background(), postID, 0, 0)
	return int64(len(comments)), nil
}

func (f *fakeCommentRepo) FindReplies(_ context.Context, parentID uuid.UUID) ([]*entity.PostComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var replies []*entity.PostComment
	for _, comment := range f.comments {
		if comment.ParentID != nil && *comment.ParentID == parentID && comment.DeletedAt == nil {
			clone := *comment
			replies = append(replies, &clone)
		}
	}
	return replies, nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment, ok := f.comments[id]; ok {
		now := time.Now()
		comment.DeletedAt = &now
	}
	return nil
}

func (f *fakeCommentRepo) GetCommentStats(_ context.Context, commentID uuid.UUID, viewerID *uuid.UUID) (int64, bool, error) {
	f.likes.mu.Lock()
	defer f.likes.mu.Unlock()
	var likes int64
	meLiked := false
	for _, like := range f.likes.commentLikes {
		if like.CommentID != commentID {
			continue
		}
		likes++
		if viewerID != nil && like.AuthorID == *viewerID {
			meLiked = true
		}
	}
	return likes, meLiked, nil
}

type fakeLikeRepo struct {
	mu           sync.Mutex
	postLikes    map[uuid.UUID]*entity.PostLike
	commentLikes map[uuid.UUID]*entity.CommentLike
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{
		postLikes:    make(map[uuid.UUID]*entity.PostLike),
		commentLikes: make(map[uuid.UUID]*entity.CommentLike),
	}
}

func (f *fakeLikeRepo) FindPostLike(_ context.Context, authorID, postID uuid.UUID) (*entity.PostLike, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, like := range f.postLikes {
		if like.AuthorID == authorID && like.PostID == postID {
			clone := *like
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeLikeRepo) CreatePostLike(_ context.Context, like *entity.PostLike) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *like
	f.postLikes[like.ID] = &clone
	return nil
}

func (f *fakeLikeRepo) DeletePostLike(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.postLikes, id)
	return nil
}

func (f *fakeLikeRepo) FindCommentLike(_ context.Context, authorID, commentID uuid.UUID) (*entity.CommentLike, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, like := range f.commentLikes {
		if like.AuthorID == authorID && like.CommentID == commentID {
			clone := *like
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeLikeRepo) CreateCommentLike(_ context.Context, like *entity.CommentLike) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *like
	f.commentLikes[like.ID] = &clone
	return nil
}

func (f *fakeLikeRepo) DeleteCommentLike(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.commentLikes, id)
	return nil
}

// stubIssuer mints predictable token pairs without Redis.
type stubIssuer struct {
	mu      sync.Mutex
	issued  int
	revoked map[string]bool
}

func newStubIssuer() *stubIssuer {
	return &stubIssuer{revoked: make(map[string]bool)}
}

func (s *stubIssuer) IssuePair(_ context.Context, userID uuid.UUID) (*token.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return &token.TokenPair{
		AccessToken:  "access-" + userID.String(),
		RefreshToken: "refresh-" + userID.String(),
		ExpiresIn:    1800,
	}, nil
}

func (s *stubIssuer) Refresh(ctx context.Context, refreshToken string) (uuid.UUID, *token.TokenPair, error) {
	s.mu.Lock()
	if s.revoked[refreshToken] {
		s.mu.Unlock()
		return uuid.Nil, nil, token.ErrInvalidToken
	}
	s.revoked[refreshToken] = true
	s.mu.Unlock()

	userID, err := uuid.Parse(strings.TrimPrefix(refreshToken, "refresh-"))
	if err != nil {
		return uuid.Nil, nil, token.ErrMalformedToken
	}

	pair, err := s.IssuePair(ctx, userID)
	return userID, pair, err
}

func (s *stubIssuer) Revoke(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[refreshToken] {
		return token.ErrInvalidToken
	}
	s.revoked[refreshToken] = true
	return nil
}

// recordingNotifier captures dispatches for assertion; Send runs on the
// service's dispatch goroutine.
type recordingNotifier struct {
	mu    sync.Mutex
	sends []recordedSend
}

type recordedSend struct {
	destination string
	channel     notifier.Channel
	code        string
}

func (r *recordingNotifier) Send(_ context.Context, destination string, channel notifier.Channel, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, recordedSend{destination: destination, channel: channel, code: code})
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sends)
}
