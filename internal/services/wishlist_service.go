package services

import (
	"storefront/internal/repos"
)

type WishlistService struct {
	Wish  *repos.WishlistRepo
	Prods *repos.ProductRepo
}

func NewWishlistService(wish *repos.WishlistRepo, prods *repos.ProductRepo) *WishlistService {
	return &WishlistService{Wish: wish, Prods: prods}
}

func (s *WishlistService) List(userID string) ([]repos.WishlistRow, error) {
	return s.Wish.List(userID)
}

// Save is idempotent.
func (s *WishlistService) Save(userID, productID string) error {
	if _, err := s.Prods.Get(productID); err != nil {
		return notFound(err, "product "+productID)
	}
	return s.Wish.Add(userID, productID)
}

func (s *WishlistService) Unsave(userID, productID string) error {
	return s.Wish.Remove(userID, productID)
}
