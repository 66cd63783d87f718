package usecase

import (
	"context"

	"talkwire/internal/entity"
	"talkwire/internal/repository"
)

type UserUsecase interface {
	Get(ctx context.Context, userId int64) (entity.User, error)
}

type userUsecase struct {
	userRepo repository.UserRepository
}

func NewUserUsecase(userRepo repository.UserRepository) UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
	}
}

func (u *userUsecase) Get(ctx context.Context, userId int64) (entity.User, error) {
	return u.userRepo.Get(ctx, userId)
}
