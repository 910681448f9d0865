//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/like/repository"
	"viralacademy.com/academy/internal/testutil"
)

func TestToggleRoundTrip(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, entity.RoleMentor)
	fan := testutil.CreateUser(t, db, entity.RoleStudent)
	category := testutil.CreateCategory(t, db, false)
	post := testutil.CreatePost(t, db, author.ID, category.ID)

	repo := repository.NewLikeRepository(db)
	target := repository.Target{Kind: repository.TargetPost, ID: post.ID}

	liked, created, err := repo.Toggle(ctx, fan.ID, target)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, created)

	// A duplicate insert is rejected by the unique index.
	dup := &entity.Like{UserID: fan.ID, PostID: &post.ID}
	assert.Error(t, db.Create(dup).Error)

	count, err := repo.Count(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	liked, created, err = repo.Toggle(ctx, fan.ID, target)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, created)

	count, err = repo.Count(ctx, target)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountManyAndLikedBy(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, entity.RoleMentor)
	a := testutil.CreateUser(t, db, entity.RoleStudent)
	b := testutil.CreateUser(t, db, entity.RoleStudent)
	category := testutil.CreateCategory(t, db, false)
	p1 := testutil.CreatePost(t, db, author.ID, category.ID)
	p2 := testutil.CreatePost(t, db, author.ID, category.ID)

	repo := repository.NewLikeRepository(db)
	for _, user := range []*entity.User{a, b} {
		_, _, err := repo.Toggle(ctx, user.ID, repository.Target{Kind: repository.TargetPost, ID: p1.ID})
		require.NoError(t, err)
	}

	counts, err := repo.CountMany(ctx, repository.TargetPost, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[p1.ID])
	assert.Zero(t, counts[p2.ID])

	liked, err := repo.LikedBy(ctx, a.ID, repository.TargetPost, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.True(t, liked[p1.ID])
	assert.False(t, liked[p2.ID])
}
