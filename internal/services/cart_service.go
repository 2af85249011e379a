package services

import (
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type CartService struct {
	Carts   *repos.CartRepo
	Prods   *repos.ProductRepo
	Stores  *repos.StoreRepo
	Coupons *repos.CouponRepo
	Addrs   *repos.AddressRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, stores *repos.StoreRepo,
	coupons *repos.CouponRepo, addrs *repos.AddressRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods, Stores: stores, Coupons: coupons, Addrs: addrs}
}

func (s *CartService) ensure(userID, storeID string) (repos.CartRow, error) {
	if _, err := s.Stores.Get(storeID); err != nil {
		return repos.CartRow{}, notFound(err, "store "+storeID)
	}
	return s.Carts.Ensure(userID, storeID)
}

// storeProduct loads productID and checks it is sold at storeID.
func (s *CartService) storeProduct(storeID, productID string) (domain.Product, error) {
	p, err := s.Prods.Get(productID)
	if err != nil {
		return p, notFound(err, "product "+productID)
	}
	if p.StoreID != storeID || !p.Active {
		return p, fmt.Errorf("product %s at store %s: %w", productID, storeID, ErrNotFound)
	}
	return p, nil
}

// View prices the cart. A coupon that no longer qualifies is dropped.
func (s *CartService) View(userID, storeID string) (domain.Cart, error) {
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.view(row)
}

func (s *CartService) view(row repos.CartRow) (domain.Cart, error) {
	items, err := s.Carts.Items(row.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.CartLine{
			ProductID: it.ProductID, Name: it.Name, ImageURL: it.ImageURL,
			Quantity: it.Qty, UnitPrice: it.PriceAtAdd, LinePrice: linePrice(it.PriceAtAdd, it.Qty),
		})
	}

	var coupon *domain.Coupon
	if row.CouponCode != "" {
		c, err := s.Coupons.Get(row.CouponCode)
		ok := false
		if err == nil {
			ok, err = Eligible(c, row.StoreID, row.Fulfillment, lines)
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, err
		}
		if ok {
			coupon = &c
		} else if err := s.Carts.SetCoupon(row.ID, ""); err != nil {
			return domain.Cart{}, err
		}
	}

	return domain.Cart{
		StoreID:     row.StoreID,
		Lines:       lines,
		Summary:     Summarize(lines, row.Fulfillment, coupon),
		Fulfillment: row.Fulfillment,
		AddressID:   row.AddressID,
	}, nil
}

func (s *CartService) Add(userID, storeID, productID string, qty int) (domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	p, err := s.storeProduct(storeID, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if p.Stock <= 0 {
		return domain.Cart{}, fmt.Errorf("%s: %w", p.Name, ErrOutOfStock)
	}
	if err := s.Carts.AddItem(row.ID, productID, qty, p.Price, validate.MaxQty); err != nil {
		return domain.Cart{}, err
	}
	return s.view(row)
}

// SetQty sets an absolute quantity; 0 removes the line.
func (s *CartService) SetQty(userID, storeID, productID string, qty int) (domain.Cart, error) {
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	qty = validate.ClampQty(qty)
	if qty == 0 {
		if err := s.Carts.RemoveItem(row.ID, productID); err != nil {
			return domain.Cart{}, err
		}
		return s.view(row)
	}
	p, err := s.storeProduct(storeID, productID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.Carts.SetQty(row.ID, productID, qty, p.Price); err != nil {
		return domain.Cart{}, err
	}
	return s.view(row)
}

func (s *CartService) Remove(userID, storeID, productID string) (domain.Cart, error) {
	return s.SetQty(userID, storeID, productID, 0)
}

func (s *CartService) Clear(userID, storeID string) (domain.Cart, error) {
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.Carts.Clear(row.ID); err != nil {
		return domain.Cart{}, err
	}
	row.CouponCode = ""
	return s.view(row)
}

// ApplyCoupon attaches code after checking it exists and the cart qualifies.
func (s *CartService) ApplyCoupon(userID, storeID, code string) (domain.Cart, error) {
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	c, err := s.Coupons.Get(code)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, ErrInvalidCoupon
	}
	if err != nil {
		return domain.Cart{}, err
	}
	cart, err := s.view(row)
	if err != nil {
		return domain.Cart{}, err
	}
	ok, err := Eligible(c, storeID, row.Fulfillment, cart.Lines)
	if err != nil {
		return domain.Cart{}, err
	}
	if !ok {
		return domain.Cart{}, ErrCouponNotApplicable
	}
	if err := s.Carts.SetCoupon(row.ID, c.Code); err != nil {
		return domain.Cart{}, err
	}
	row.CouponCode = c.Code
	return s.view(row)
}

func (s *CartService) RemoveCoupon(userID, storeID string) (domain.Cart, error) {
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := s.Carts.SetCoupon(row.ID, ""); err != nil {
		return domain.Cart{}, err
	}
	row.CouponCode = ""
	return s.view(row)
}

// SetFulfillment switches delivery/pickup. Delivery needs one of the user's
// addresses; pickup clears it.
func (s *CartService) SetFulfillment(userID, storeID, mode, addressID string) (domain.Cart, error) {
	row, err := s.ensure(userID, storeID)
	if err != nil {
		return domain.Cart{}, err
	}
	st, err := s.Stores.Get(storeID)
	if err != nil {
		return domain.Cart{}, notFound(err, "store "+storeID)
	}
	switch mode {
	case domain.FulfillmentDelivery:
		if !st.Delivery {
			return domain.Cart{}, ErrFulfillment
		}
		if addressID == "" {
			return domain.Cart{}, ErrAddressRequired
		}
		if _, err := s.Addrs.Get(userID, addressID); err != nil {
			return domain.Cart{}, notFound(err, "address "+addressID)
		}
	case domain.FulfillmentPickup:
		if !st.Pickup {
			return domain.Cart{}, ErrFulfillment
		}
		addressID = ""
	default:
		return domain.Cart{}, ErrFulfillment
	}
	if err := s.Carts.SetFulfillment(row.ID, mode, addressID); err != nil {
		return domain.Cart{}, err
	}
	row.Fulfillment, row.AddressID = mode, addressID
	return s.view(row)
}

// AvailableCoupons lists the coupons offered at storeID.
func (s *CartService) AvailableCoupons(storeID string) ([]domain.Coupon, error) {
	return s.Coupons.ForStore(storeID)
}
