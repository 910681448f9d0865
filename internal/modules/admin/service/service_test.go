package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/internal/modules/admin/dto"
	notification "viralacademy.com/academy/internal/modules/notification/service"
	"viralacademy.com/academy/internal/modules/user/repository"
	"viralacademy.com/academy/pkg/apperror"
	commonDto "viralacademy.com/academy/pkg/dto"
)

type fakeUserRepo struct {
	users      map[uuid.UUID]*entity.User
	lastFilter repository.UserFilter
	updates    int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = uuid.New()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(context.Context, *entity.User) error {
	f.updates++
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter, _, _ int) ([]entity.User, int64, error) {
	f.lastFilter = filter
	var out []entity.User
	for _, u := range f.users {
		if filter.Role == "" || u.Role == filter.Role {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ListActiveIDs(context.Context) ([]uuid.UUID, error) { return nil, nil }

func (f *fakeUserRepo) CountByRole(context.Context) (map[string]int64, error) { return nil, nil }

type recordingNotifier struct {
	broadcasts []notification.Broadcast
}

func (r *recordingNotifier) Notify(context.Context, uuid.UUID, notification.Notice) {}

func (r *recordingNotifier) Broadcast(_ context.Context, b notification.Broadcast) int {
	r.broadcasts = append(r.broadcasts, b)
	return 12
}

func identityOf(u *entity.User) *authz.Identity {
	return &authz.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

func TestUpdateUser(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Email: "admin@example.com", Role: entity.RoleAdmin, Active: true}
	student := &entity.User{ID: uuid.New(), Email: "s@example.com", Role: entity.RoleStudent, Active: true}
	repo := newFakeUserRepo(admin, student)
	svc := NewAdminService(repo, &recordingNotifier{})

	mentor := entity.RoleMentor
	resp, err := svc.UpdateUser(context.Background(), identityOf(admin), student.ID, dto.UpdateUserRequest{Role: &mentor})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMentor, resp.Role)
	assert.True(t, resp.Active)

	inactive := false
	tests := []struct {
		name    string
		caller  *authz.Identity
		target  uuid.UUID
		input   dto.UpdateUserRequest
		wantErr error
	}{
		{"self demotion", identityOf(admin), admin.ID, dto.UpdateUserRequest{Role: &mentor}, apperror.ErrValidation},
		{"self deactivation", identityOf(admin), admin.ID, dto.UpdateUserRequest{Active: &inactive}, apperror.ErrValidation},
		{"not admin", identityOf(student), admin.ID, dto.UpdateUserRequest{Active: &inactive}, apperror.ErrForbidden},
		{"anonymous", nil, admin.ID, dto.UpdateUserRequest{}, apperror.ErrUnauthenticated},
		{"unknown user", identityOf(admin), uuid.New(), dto.UpdateUserRequest{Active: &inactive}, apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateUser(context.Background(), tt.caller, tt.target, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)
}

func TestCreateUser(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Email: "admin@example.com", Role: entity.RoleAdmin, Active: true}
	repo := newFakeUserRepo(admin)
	svc := NewAdminService(repo, &recordingNotifier{})

	input := dto.CreateUserRequest{Email: "coach@example.com", Password: "password123", Name: " Coach ", Role: entity.RoleMentor}
	resp, err := svc.CreateUser(context.Background(), identityOf(admin), input)
	require.NoError(t, err)
	assert.Equal(t, "Coach", resp.Name)
	assert.Equal(t, entity.RoleMentor, resp.Role)

	stored := repo.users[resp.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))

	_, err = svc.CreateUser(context.Background(), identityOf(admin), input)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestListUsers(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin}
	repo := newFakeUserRepo(admin, &entity.User{ID: uuid.New(), Role: entity.RoleStudent})
	svc := NewAdminService(repo, &recordingNotifier{})

	resp, err := svc.ListUsers(context.Background(), identityOf(admin), dto.UserListQuery{
		PageQuery: commonDto.PageQuery{Page: 1, Limit: 10},
		Search:    "  ana ",
		Role:      entity.RoleStudent,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "ana", repo.lastFilter.Search)
	assert.Equal(t, 1, resp.Meta.TotalPages)

	_, err = svc.ListUsers(context.Background(), &authz.Identity{ID: uuid.New(), Role: entity.RoleMentor}, dto.UserListQuery{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestAnnounceExcludesCaller(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Role: entity.RoleAdmin}
	n := &recordingNotifier{}
	svc := NewAdminService(newFakeUserRepo(admin), n)

	resp, err := svc.Announce(context.Background(), identityOf(admin), dto.AnnouncementRequest{Title: "Holiday schedule", Message: "No live sessions next week."})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Recipients)

	require.Len(t, n.broadcasts, 1)
	assert.True(t, n.broadcasts[0].AllActive)
	assert.Equal(t, admin.ID, *n.broadcasts[0].ExcludeID)
	assert.Equal(t, entity.NotificationAnnouncement, n.broadcasts[0].Type)
}
