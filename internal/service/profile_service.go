package service

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidWeightUnit = errors.New("weight unit must be kg or lbs")
	ErrInvalidProfile    = errors.New("name must be 1 to 100 characters")
)

const maxDisplayNameLength = 100

// ProfileService exposes the signed-in user's profile and preferences.
type ProfileService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	GetPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.Preferences, error)
	UpdateWeightUnit(ctx context.Context, userID primitive.ObjectID, unit domain.WeightUnit) (*domain.Preferences, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, name string, avatarURL *string) (*domain.User, error)
}

type profileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	if !user.WeightUnit.Valid() {
		user.WeightUnit = domain.DefaultWeightUnit
	}
	return user, nil
}

// GetPreferences returns the stored preferences, falling back to defaults for unset values.
func (s *profileService) GetPreferences(ctx context.Context, userID primitive.ObjectID) (*domain.Preferences, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Preferences{UserID: user.ID, WeightUnit: user.WeightUnit}, nil
}

func (s *profileService) UpdateWeightUnit(ctx context.Context, userID primitive.ObjectID, unit domain.WeightUnit) (*domain.Preferences, error) {
	if !unit.Valid() {
		return nil, ErrInvalidWeightUnit
	}
	if err := s.userRepo.UpdateWeightUnit(ctx, userID, unit); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &domain.Preferences{UserID: userID, WeightUnit: unit}, nil
}

// UpdateProfile changes the display name and avatar shown for the user.
// An empty avatar URL clears the avatar.
func (s *profileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name string, avatarURL *string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
		return nil, ErrInvalidProfile
	}
	if avatarURL != nil && strings.TrimSpace(*avatarURL) == "" {
		avatarURL = nil
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, name, avatarURL); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}
