package services

import (
	"sort"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/geo"
	"storefront/internal/repos"
)

const (
	defaultRadiusKm = 10.0
	maxSearchLimit  = 50
)

type CatalogService struct {
	Stores *repos.StoreRepo
	Prods  *repos.ProductRepo
}

func NewCatalogService(stores *repos.StoreRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Stores: stores, Prods: prods}
}

// Nearby returns active stores within radiusKm of (lat, lng), nearest first.
func (s *CatalogService) Nearby(lat, lng, radiusKm float64) ([]domain.Store, error) {
	if radiusKm <= 0 {
		radiusKm = defaultRadiusKm
	}
	all, err := s.Stores.ListActive()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Store, 0, len(all))
	for _, st := range all {
		st.DistanceKm = geo.HaversineKm(lat, lng, st.Lat, st.Lng)
		if st.DistanceKm <= radiusKm {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func (s *CatalogService) Popular(limit int) ([]domain.Store, error) {
	return s.Stores.Popular(limit)
}

func (s *CatalogService) Store(id string) (domain.Store, error) {
	st, err := s.Stores.Get(id)
	return st, notFound(err, "store "+id)
}

func (s *CatalogService) Products(storeID string, page, pageSize int) ([]domain.Product, error) {
	if _, err := s.Store(storeID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 24
	}
	return s.Prods.ListByStore(storeID, pageSize, (page-1)*pageSize)
}

func (s *CatalogService) Product(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	return p, notFound(err, "product "+id)
}

// Search merges store and product matches into SearchItems, stores first.
func (s *CatalogService) Search(q string, limit int) ([]domain.SearchItem, error) {
	if limit <= 0 || limit > maxSearchLimit {
		limit = 20
	}
	q = strings.ToLower(q)
	stores, err := s.Stores.Search(q, limit)
	if err != nil {
		return nil, err
	}
	prods, err := s.Prods.Search(q, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SearchItem, 0, len(stores)+len(prods))
	for _, st := range stores {
		rating := st.Rating
		out = append(out, domain.SearchItem{
			ID: st.ID, Kind: domain.SearchKindStore, Name: st.Name, Category: st.Category,
			ImageURL: st.ImageURL, Rating: &rating, StoreID: st.ID, StoreName: st.Name,
		})
	}
	for _, p := range prods {
		price, rating := p.Price, p.Rating
		out = append(out, domain.SearchItem{
			ID: p.ID, Kind: domain.SearchKindProduct, Name: p.Name, Category: p.Category,
			ImageURL: p.ImageURL, Price: &price, Rating: &rating, StoreID: p.StoreID, StoreName: p.StoreName,
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
