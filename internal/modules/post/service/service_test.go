package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/internal/modules/post/dto"
	"viralacademy.com/academy/pkg/apperror"
)

type fakePostRepo struct {
	posts   map[uuid.UUID]*entity.Post
	deleted []uuid.UUID
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uuid.UUID]*entity.Post{}}
}

func (f *fakePostRepo) Create(_ context.Context, p *entity.Post) error {
	p.ID = uuid.New()
	copied := *p
	f.posts[p.ID] = &copied
	return nil
}

func (f *fakePostRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePostRepo) List(context.Context, *uuid.UUID, int, int) ([]entity.Post, int64, error) {
	out := make([]entity.Post, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepo) CountComments(context.Context, []uuid.UUID) (map[uuid.UUID]int64, error) {
	return map[uuid.UUID]int64{}, nil
}

func (f *fakePostRepo) Update(_ context.Context, p *entity.Post) error {
	copied := *p
	f.posts[p.ID] = &copied
	return nil
}

func (f *fakePostRepo) AddViews(_ context.Context, id uuid.UUID, n int64) error {
	if p, ok := f.posts[id]; ok {
		p.ViewCount += n
	}
	return nil
}

type recordingViews struct {
	posts []uuid.UUID
}

func (r *recordingViews) RecordView(_ context.Context, postID, _ uuid.UUID) {
	r.posts = append(r.posts, postID)
}

func (f *fakePostRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCategories map[uuid.UUID]*entity.Category

func (f fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*entity.Category, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type noLikes struct{}

func (noLikes) CountMany(context.Context, string, []uuid.UUID) (map[uuid.UUID]int64, error) {
	return map[uuid.UUID]int64{}, nil
}

func (noLikes) LikedBy(context.Context, uuid.UUID, string, []uuid.UUID) (map[uuid.UUID]bool, error) {
	return map[uuid.UUID]bool{}, nil
}

type recordingNotifier struct {
	broadcasts []notification.Broadcast
}

func (r *recordingNotifier) Notify(context.Context, uuid.UUID, notification.Notice) {}

func (r *recordingNotifier) Broadcast(_ context.Context, b notification.Broadcast) int {
	r.broadcasts = append(r.broadcasts, b)
	return 0
}

type fixture struct {
	svc      PostService
	repo     *fakePostRepo
	notifier *recordingNotifier
	views    *recordingViews
	general  *entity.Category
	news     *entity.Category
}

func newFixture() *fixture {
	general := &entity.Category{ID: uuid.New(), Name: "General"}
	news := &entity.Category{ID: uuid.New(), Name: "Announcements", StaffOnly: true}
	repo := newFakePostRepo()
	notifier := &recordingNotifier{}
	views := &recordingViews{}
	svc := NewPostService(repo, fakeCategories{general.ID: general, news.ID: news}, noLikes{}, notifier, nil, views, nil, Config{})
	return &fixture{svc: svc, repo: repo, notifier: notifier, views: views, general: general, news: news}
}

func identity(role string) *authz.Identity {
	return &authz.Identity{ID: uuid.New(), Role: role}
}

func TestCreatePost(t *testing.T) {
	f := newFixture()
	caller := identity(entity.RoleStudent)

	resp, err := f.svc.CreatePost(context.Background(), caller, dto.CreatePostRequest{
		CategoryID: f.general.ID.String(),
		Title:      " My first launch ",
		Content:    `<p>It worked</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)

	assert.Equal(t, "My first launch", resp.Title)
	assert.Equal(t, "<p>It worked</p>", resp.Content)
	assert.Len(t, f.repo.posts, 1)
	assert.Empty(t, f.notifier.broadcasts)
}

func TestCreatePostInStaffOnlyCategory(t *testing.T) {
	t.Run("student is forbidden", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreatePost(context.Background(), identity(entity.RoleStudent), dto.CreatePostRequest{
			CategoryID: f.news.ID.String(), Title: "Hi", Content: "hello",
		})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Empty(t, f.repo.posts)
	})

	t.Run("mentor announces to everyone else", func(t *testing.T) {
		f := newFixture()
		mentor := identity(entity.RoleMentor)
		_, err := f.svc.CreatePost(context.Background(), mentor, dto.CreatePostRequest{
			CategoryID: f.news.ID.String(), Title: "Live workshop", Content: "Join us",
		})
		require.NoError(t, err)

		require.Len(t, f.notifier.broadcasts, 1)
		b := f.notifier.broadcasts[0]
		assert.True(t, b.AllActive)
		assert.Equal(t, mentor.ID, *b.ExcludeID)
		assert.Equal(t, entity.NotificationAnnouncement, b.Type)
	})
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreatePost(context.Background(), nil, dto.CreatePostRequest{CategoryID: f.general.ID.String()})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.svc.CreatePost(context.Background(), identity(entity.RoleStudent), dto.CreatePostRequest{
		CategoryID: uuid.NewString(), Title: "x", Content: "y",
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.CreatePost(context.Background(), identity(entity.RoleStudent), dto.CreatePostRequest{
		CategoryID: f.general.ID.String(), Title: "x", Content: "<script>only</script>",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreatePost(context.Background(), identity(entity.RoleStudent), dto.CreatePostRequest{
		CategoryID: "not-a-uuid", Title: "x", Content: "y",
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, f.repo.posts)

	_, err = f.svc.GetPosts(context.Background(), identity(entity.RoleStudent), dto.PostFilter{CategoryID: "not-a-uuid"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	f := newFixture()
	owner := identity(entity.RoleStudent)
	created, err := f.svc.CreatePost(context.Background(), owner, dto.CreatePostRequest{
		CategoryID: f.general.ID.String(), Title: "Draft", Content: "text",
	})
	require.NoError(t, err)

	stranger := identity(entity.RoleStudent)
	_, err = f.svc.UpdatePost(context.Background(), stranger, created.ID, dto.UpdatePostRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeletePost(context.Background(), stranger, created.ID), apperror.ErrForbidden)

	pinned := true
	_, err = f.svc.UpdatePost(context.Background(), owner, created.ID, dto.UpdatePostRequest{Title: "x", Content: "y", Pinned: &pinned})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	updated, err := f.svc.UpdatePost(context.Background(), identity(entity.RoleMentor), created.ID, dto.UpdatePostRequest{Title: "Final", Content: "done", Pinned: &pinned})
	require.NoError(t, err)
	assert.True(t, updated.Pinned)
	assert.Equal(t, "Final", updated.Title)

	require.NoError(t, f.svc.DeletePost(context.Background(), owner, created.ID))
	assert.Equal(t, []uuid.UUID{created.ID}, f.repo.deleted)

	_, err = f.svc.GetPost(context.Background(), owner, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetPostRecordsView(t *testing.T) {
	f := newFixture()
	author := identity(entity.RoleStudent)
	reader := identity(entity.RoleStudent)

	created, err := f.svc.CreatePost(context.Background(), author, dto.CreatePostRequest{
		CategoryID: f.general.ID.String(),
		Title:      "Launch checklist",
		Content:    "<p>ship it</p>",
	})
	require.NoError(t, err)
	f.repo.posts[created.ID].ViewCount = 7

	resp, err := f.svc.GetPost(context.Background(), reader, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ViewCount)
	assert.Equal(t, []uuid.UUID{created.ID}, f.views.posts)

	_, err = f.svc.GetPost(context.Background(), reader, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Len(t, f.views.posts, 1)
}
