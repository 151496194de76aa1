package service

import (
	"HalalCalendar/internal/api/dto"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/nominatim"
	"HalalCalendar/internal/repository"
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockPostRepo is a mock implementation of repository.PostRepo
type MockPostRepo struct {
	mock.Mock
}

func (m *MockPostRepo) ListPublished(ctx context.Context, filter repository.PostFilter) ([]*model.Post, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepo) CountPublished(ctx context.Context, filter repository.PostFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepo) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, uint64) *model.Post); ok {
		return fn(ctx, id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepo) GetPublishedPost(ctx context.Context, id uint64) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepo) PublishedPostExists(ctx context.Context, id uint64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepo) CreatePost(ctx context.Context, post *model.Post, tags []string) error {
	args := m.Called(ctx, post, tags)
	return args.Error(0)
}

func (m *MockPostRepo) UpdatePost(ctx context.Context, post *model.Post, tags []string) error {
	args := m.Called(ctx, post, tags)
	return args.Error(0)
}

func (m *MockPostRepo) DeletePost(ctx context.Context, id uint64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockMediaService is a mock implementation of MediaService
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadImage(ctx context.Context, caller *Caller, file *dto.UploadFile) (*dto.MediaUploadDTO, error) {
	args := m.Called(ctx, caller, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MediaUploadDTO), args.Error(1)
}

func (m *MockMediaService) StoreImage(ctx context.Context, file *dto.UploadFile) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) DiscardImage(ctx context.Context, url string) {
	m.Called(ctx, url)
}

// fakeActionRepo 内存实现，(user, post) 唯一约束在锁内检查
type fakeActionRepo struct {
	repository.PostActionRepo

	mu       sync.Mutex
	likes    map[[2]uint64]time.Time
	comments map[uint64]int64
	// beforeWrite 在读写之间注入调度点，用于制造竞争
	beforeWrite func()
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{
		likes:    make(map[[2]uint64]time.Time),
		comments: make(map[uint64]int64),
	}
}

func (f *fakeActionRepo) CreateLike(_ context.Context, like *model.Like) error {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint64{like.UserID, like.PostID}
	if _, ok := f.likes[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.likes[key] = time.Now()
	return nil
}

func (f *fakeActionRepo) DeleteLike(_ context.Context, userID, postID uint64) (int64, error) {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint64{userID, postID}
	if _, ok := f.likes[key]; !ok {
		return 0, nil
	}
	delete(f.likes, key)
	return 1, nil
}

func (f *fakeActionRepo) CheckLikeExists(_ context.Context, userID, postID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.likes[[2]uint64{userID, postID}]
	return ok, nil
}

func (f *fakeActionRepo) GetLikeCountByPostID(_ context.Context, postID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key := range f.likes {
		if key[1] == postID {
			n++
		}
	}
	return n, nil
}

func (f *fakeActionRepo) GetLikeCountsByPostIDs(ctx context.Context, postIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(postIDs))
	for _, id := range postIDs {
		n, _ := f.GetLikeCountByPostID(ctx, id)
		out[id] = n
	}
	return out, nil
}

func (f *fakeActionRepo) GetCommentCountsByPostIDs(_ context.Context, postIDs []uint64) (map[uint64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint64]int64, len(postIDs))
	for _, id := range postIDs {
		out[id] = f.comments[id]
	}
	return out, nil
}

// fakePostRepo 只实现点赞流程需要的查询
type fakePostRepo struct {
	repository.PostRepo
	published map[uint64]bool
}

func (f *fakePostRepo) PublishedPostExists(_ context.Context, id uint64) (bool, error) {
	return f.published[id], nil
}

// fakeHost 记录上传与删除
type fakeHost struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	removed   []string
	err       error
	removeErr error
}

func (f *fakeHost) Remove(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return f.removeErr
}

func (f *fakeHost) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[objectName] = data
	return "https://cdn.example.com/" + objectName, nil
}

// fakeSearcher 按查询返回固定结果，可选阻塞直到上下文结束
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results []nominatim.Place
	err     error
	block   bool
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]nominatim.Place, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func likeOf(userID, postID uint64) *model.Like {
	return &model.Like{UserID: userID, PostID: postID}
}

// MockUserRepo is a mock implementation of repository.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateUserRole(ctx context.Context, id uint64, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// fakeRevoker 内存吊销列表
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (f *fakeRevoker) Revoke(_ context.Context, signature string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = make(map[string]time.Duration)
	}
	f.revoked[signature] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, signature string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[signature]
	return ok, nil
}
