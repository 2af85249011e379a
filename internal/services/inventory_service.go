package services

import (
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

const lowStockThreshold = 5

type InventoryService struct {
	Prods *repos.ProductRepo
}

func NewInventoryService(prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Prods: prods}
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
// storeID, when given, must own the product.
func (s *InventoryService) CheckAvailability(productID, storeID string) (domain.Availability, error) {
	p, err := s.Prods.Get(productID)
	if err != nil {
		return domain.Availability{}, notFound(err, "product")
	}
	if storeID != "" && p.StoreID != storeID {
		return domain.Availability{}, fmt.Errorf("product %s at store %s: %w", productID, storeID, ErrNotFound)
	}
	if !p.Active {
		return domain.Availability{Status: "OUT_OF_STOCK"}, nil
	}

	status := "OUT_OF_STOCK"
	switch {
	case p.Stock >= lowStockThreshold:
		status = "IN_STOCK"
	case p.Stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: p.Stock}, nil
}
