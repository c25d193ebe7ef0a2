package service

import (
	"alcyxob/fitsho/internal/domain"
	"alcyxob/fitsho/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSupplementNotFound = errors.New("supplement not found")
	ErrSupplementName     = errors.New("supplement name is required")
)

const maxSupplementNameLength = 100

// SupplementChecklist is the user's supplements with the taken state for one day.
type SupplementChecklist struct {
	Date  string
	Items []ChecklistItem
}

type ChecklistItem struct {
	Supplement domain.Supplement
	Taken      bool
}

// SupplementService manages the daily supplement checklist.
type SupplementService interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Supplement, error)
	Add(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Supplement, error)
	Remove(ctx context.Context, userID, supplementID primitive.ObjectID) error
	LogsForDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.SupplementLog, error)
	Checklist(ctx context.Context, userID primitive.ObjectID, date string) (*SupplementChecklist, error)
	Toggle(ctx context.Context, userID, supplementID primitive.ObjectID, date string) (bool, error)
}

type supplementService struct {
	supplementRepo repository.SupplementRepository
}

func NewSupplementService(supplementRepo repository.SupplementRepository) SupplementService {
	return &supplementService{supplementRepo: supplementRepo}
}

func (s *supplementService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Supplement, error) {
	return s.supplementRepo.List(ctx, userID)
}

func (s *supplementService) Add(ctx context.Context, userID primitive.ObjectID, name string) (*domain.Supplement, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxSupplementNameLength {
		return nil, ErrSupplementName
	}
	return s.supplementRepo.Add(ctx, userID, name)
}

// Remove deletes the supplement and every log that refers to it.
func (s *supplementService) Remove(ctx context.Context, userID, supplementID primitive.ObjectID) error {
	if err := s.supplementRepo.Remove(ctx, userID, supplementID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSupplementNotFound
		}
		return err
	}
	return nil
}

func (s *supplementService) LogsForDate(ctx context.Context, userID primitive.ObjectID, date string) ([]domain.SupplementLog, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.supplementRepo.LogsForDate(ctx, userID, date)
}

// Checklist joins the supplements with their logs for date. Supplements without a log are not taken.
func (s *supplementService) Checklist(ctx context.Context, userID primitive.ObjectID, date string) (*SupplementChecklist, error) {
	logs, err := s.LogsForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	supplements, err := s.supplementRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	taken := make(map[primitive.ObjectID]bool, len(logs))
	for _, l := range logs {
		taken[l.SupplementID] = l.Taken
	}
	items := make([]ChecklistItem, len(supplements))
	for i, sup := range supplements {
		items[i] = ChecklistItem{Supplement: sup, Taken: taken[sup.ID]}
	}
	return &SupplementChecklist{Date: date, Items: items}, nil
}

// Toggle flips the taken state of a supplement for date and returns the new state.
func (s *supplementService) Toggle(ctx context.Context, userID, supplementID primitive.ObjectID, date string) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	taken, err := s.supplementRepo.ToggleLog(ctx, userID, supplementID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrSupplementNotFound
		}
		return false, err
	}
	return taken, nil
}

func validateDate(date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
