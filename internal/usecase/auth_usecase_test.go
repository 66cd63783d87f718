package usecase

import (
	"context"
	"testing"
	"time"

	"talkwire/internal/entity"
	"talkwire/internal/repository"
	"talkwire/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users  map[int64]entity.User
	nextId int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]entity.User)}
}

func (s *stubUserRepo) Get(_ context.Context, userId int64) (entity.User, error) {
	user, ok := s.users[userId]
	if !ok {
		return entity.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (entity.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return entity.User{}, repository.ErrUserNotFound
}

func (s *stubUserRepo) Create(_ context.Context, user entity.User) (int64, error) {
	s.nextId++
	user.Id = s.nextId
	s.users[user.Id] = user
	return user.Id, nil
}

func (s *stubUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range s.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func testAuthUsecase() (AuthUsecase, *stubUserRepo) {
	repo := newStubUserRepo()
	manager := jwt.NewJWTManager("test-secret", time.Minute)
	return NewAuthUsecase(repo, manager), repo
}

func registerRequest() entity.RegisterRequest {
	return entity.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
		Name:     "Alice",
	}
}

func TestAuthUsecase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - user created with sequential id and usable token", func(t *testing.T) {
		uc, _ := testAuthUsecase()

		resp, err := uc.Register(ctx, registerRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.User.Id)
		assert.Empty(t, resp.User.Password)

		claims, err := uc.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.UserId)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("sad path - duplicate email", func(t *testing.T) {
		uc, _ := testAuthUsecase()
		_, err := uc.Register(ctx, registerRequest())
		require.NoError(t, err)

		req := registerRequest()
		req.Username = "alice2"
		_, err = uc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrEmailAlreadyTaken)
	})

	t.Run("sad path - duplicate username", func(t *testing.T) {
		uc, _ := testAuthUsecase()
		_, err := uc.Register(ctx, registerRequest())
		require.NoError(t, err)

		req := registerRequest()
		req.Email = "other@example.com"
		_, err = uc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrUsernameAlreadyTaken)
	})

	t.Run("sad path - missing field", func(t *testing.T) {
		uc, _ := testAuthUsecase()
		req := registerRequest()
		req.Name = ""

		_, err := uc.Register(ctx, req)
		assert.Error(t, err)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - correct credentials", func(t *testing.T) {
		uc, _ := testAuthUsecase()
		_, err := uc.Register(ctx, registerRequest())
		require.NoError(t, err)

		resp, err := uc.Login(ctx, entity.LoginRequest{
			Email:    "alice@example.com",
			Password: "hunter22",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Empty(t, resp.User.Password)
	})

	t.Run("sad path - wrong password", func(t *testing.T) {
		uc, _ := testAuthUsecase()
		_, err := uc.Register(ctx, registerRequest())
		require.NoError(t, err)

		_, err = uc.Login(ctx, entity.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("sad path - unknown email maps to the same error", func(t *testing.T) {
		uc, _ := testAuthUsecase()

		_, err := uc.Login(ctx, entity.LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthUsecase_ValidateAccessToken(t *testing.T) {
	uc, _ := testAuthUsecase()

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := uc.ValidateAccessToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := jwt.NewJWTManager("other-secret", time.Minute)
		token, err := other.GenerateAccessToken(entity.User{Id: 1, Username: "alice"})
		require.NoError(t, err)

		_, err = uc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
