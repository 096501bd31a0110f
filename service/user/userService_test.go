package usersvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahmed2231web/Book-Rental-System/model"
	userrepo "github.com/ahmed2231web/Book-Rental-System/repository/user"
)

type mockRepo struct {
	byIDFn       func(ctx context.Context, id int64) (*model.User, error)
	updateFn     func(ctx context.Context, u *model.User) error
	deleteFn     func(ctx context.Context, id int64) error
	emailTakenFn func(ctx context.Context, email string, exclude int64) (bool, error)
	listFn       func(ctx context.Context, f model.UserFilter) ([]model.User, error)
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) { return m.byIDFn(ctx, id) }
func (m *mockRepo) Update(ctx context.Context, u *model.User) error         { return m.updateFn(ctx, u) }
func (m *mockRepo) Delete(ctx context.Context, id int64) error              { return m.deleteFn(ctx, id) }
func (m *mockRepo) EmailTaken(ctx context.Context, email string, exclude int64) (bool, error) {
	return m.emailTakenFn(ctx, email, exclude)
}
func (m *mockRepo) List(ctx context.Context, f model.UserFilter) ([]model.User, error) {
	return m.listFn(ctx, f)
}

func existingUser() *model.User {
	return &model.User{
		ID: 7, Email: "alice@example.com", Username: "alice",
		FirstName: "Alice", LastName: "Smith",
		Role: model.RoleUser, IsActive: true,
	}
}

func TestProfile_NotFound(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, userrepo.ErrNotFound
		},
	}

	_, err := New(m).Profile(context.Background(), 99)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdateProfile_MergesAndNormalizes(t *testing.T) {
	u := existingUser()
	var saved *model.User
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) { return u, nil },
		emailTakenFn: func(ctx context.Context, email string, exclude int64) (bool, error) {
			require.Equal(t, "new@example.com", email)
			require.EqualValues(t, 7, exclude)
			return false, nil
		},
		updateFn: func(ctx context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}

	email := " New@Example.com "
	first := "Alicia"
	got, err := New(m).UpdateProfile(context.Background(), 7, model.UpdateProfileReq{
		Email: &email, FirstName: &first,
	})
	require.NoError(t, err)
	require.Equal(t, saved, got)
	require.Equal(t, "new@example.com", got.Email)
	require.Equal(t, "Alicia", got.FirstName)
	require.Equal(t, "Smith", got.LastName)
	// Profile updates never touch role or active flag.
	require.Equal(t, model.RoleUser, got.Role)
	require.True(t, got.IsActive)
}

func TestUpdateProfile_SameEmailSkipsCheck(t *testing.T) {
	u := existingUser()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) { return u, nil },
		emailTakenFn: func(ctx context.Context, email string, exclude int64) (bool, error) {
			t.Fatal("unchanged email must not hit the uniqueness check")
			return false, nil
		},
		updateFn: func(ctx context.Context, u *model.User) error { return nil },
	}

	email := "Alice@Example.com"
	_, err := New(m).UpdateProfile(context.Background(), 7, model.UpdateProfileReq{Email: &email})
	require.NoError(t, err)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	u := existingUser()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) { return u, nil },
		emailTakenFn: func(ctx context.Context, email string, exclude int64) (bool, error) {
			return true, nil
		},
	}

	email := "taken@example.com"
	_, err := New(m).UpdateProfile(context.Background(), 7, model.UpdateProfileReq{Email: &email})
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestAdminUpdate_RoleAndActive(t *testing.T) {
	u := existingUser()
	m := &mockRepo{
		byIDFn:   func(ctx context.Context, id int64) (*model.User, error) { return u, nil },
		updateFn: func(ctx context.Context, u *model.User) error { return nil },
	}

	role := "admin"
	inactive := false
	got, err := New(m).Update(context.Background(), 7, model.UpdateUserReq{
		Role: &role, IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, got.Role)
	require.False(t, got.IsActive)
}

func TestDelete_NotFound(t *testing.T) {
	m := &mockRepo{
		deleteFn: func(ctx context.Context, id int64) error { return userrepo.ErrNotFound },
	}

	err := New(m).Delete(context.Background(), 99)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestList_PassesFilterThrough(t *testing.T) {
	active := true
	m := &mockRepo{
		listFn: func(ctx context.Context, f model.UserFilter) ([]model.User, error) {
			require.Equal(t, "admin", f.Role)
			require.Equal(t, &active, f.IsActive)
			return []model.User{*existingUser()}, nil
		},
	}

	users, err := New(m).List(context.Background(), model.UserFilter{Role: "admin", IsActive: &active})
	require.NoError(t, err)
	require.Len(t, users, 1)
}
