package services

import (
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/google/uuid"
)

var ErrInvalidReview = errors.New("rating must be 1-5 and comment at most 500 chars")

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Stores  *repos.StoreRepo
}

func NewReviewService(reviews *repos.ReviewRepo, stores *repos.StoreRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Stores: stores}
}

func (s *ReviewService) List(storeID string, limit int) ([]domain.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if _, err := s.Stores.Get(storeID); err != nil {
		return nil, notFound(err, "store "+storeID)
	}
	return s.Reviews.ListByStore(storeID, limit)
}

func (s *ReviewService) Add(userID, storeID string, rating int, comment string) (domain.Review, error) {
	comment, ok := validate.Text(comment, 500)
	if !ok || !validate.Rating(rating) {
		return domain.Review{}, ErrInvalidReview
	}
	if _, err := s.Stores.Get(storeID); err != nil {
		return domain.Review{}, notFound(err, "store "+storeID)
	}
	rv := domain.Review{ID: uuid.NewString(), StoreID: storeID, UserID: userID, Rating: rating, Comment: comment}
	if err := s.Reviews.Add(rv); err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}

// Report files a business report against storeID.
func (s *ReviewService) Report(userID, storeID, reason string) error {
	reason, ok := validate.Text(reason, 500)
	if !ok || reason == "" {
		return ErrInvalidReview
	}
	if _, err := s.Stores.Get(storeID); err != nil {
		return notFound(err, "store "+storeID)
	}
	return s.Stores.Report(uuid.NewString(), storeID, userID, reason)
}
