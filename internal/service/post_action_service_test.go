package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActionService(actions *fakeActionRepo) PostActionService {
	posts := &fakePostRepo{published: map[uint64]bool{1: true, 2: false}}
	return NewPostActionService(posts, actions)
}

func TestToggleLikeRequiresCaller(t *testing.T) {
	svc := newActionService(newFakeActionRepo())

	_, err := svc.ToggleLike(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.LikeStatus(context.Background(), &Caller{}, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestToggleLikeUnpublishedPost(t *testing.T) {
	svc := newActionService(newFakeActionRepo())

	_, err := svc.ToggleLike(context.Background(), userCaller, 2)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.ToggleLike(context.Background(), userCaller, 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	actions := newFakeActionRepo()
	svc := newActionService(actions)
	ctx := context.Background()

	require.NoError(t, actions.CreateLike(ctx, likeOf(adminCaller.UserID, 1)))

	first, err := svc.ToggleLike(ctx, userCaller, 1)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, int64(2), first.NewCount)

	status, err := svc.LikeStatus(ctx, userCaller, 1)
	require.NoError(t, err)
	assert.True(t, status.Liked)

	second, err := svc.ToggleLike(ctx, userCaller, 1)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, int64(1), second.NewCount)

	status, err = svc.LikeStatus(ctx, userCaller, 1)
	require.NoError(t, err)
	assert.False(t, status.Liked)
}

func TestToggleLikeConcurrentConverges(t *testing.T) {
	actions := newFakeActionRepo()
	svc := newActionService(actions)
	ctx := context.Background()

	// 两个请求都在写入前完成存在性检查
	var arrived sync.WaitGroup
	arrived.Add(2)
	actions.beforeWrite = func() {
		arrived.Done()
		arrived.Wait()
	}

	results := make([]bool, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.ToggleLike(ctx, userCaller, 1)
			errs[i] = err
			if res != nil {
				results[i] = res.Liked
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.True(t, results[i])
	}
	count, err := actions.GetLikeCountByPostID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 并发取消同样收敛为未点赞
	arrived.Add(2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.ToggleLike(ctx, userCaller, 1)
			errs[i] = err
			if res != nil {
				results[i] = res.Liked
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.False(t, results[i])
	}
	count, err = actions.GetLikeCountByPostID(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}
