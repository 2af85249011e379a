package services

import (
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/google/uuid"
)

var ErrInvalidAddress = errors.New("invalid address")

type AddressService struct {
	Addrs *repos.AddressRepo
}

func NewAddressService(addrs *repos.AddressRepo) *AddressService {
	return &AddressService{Addrs: addrs}
}

func (s *AddressService) List(userID string) ([]domain.Address, error) {
	return s.Addrs.List(userID)
}

func clean(a domain.Address) (domain.Address, error) {
	var ok bool
	if a.Type, ok = validate.AddressType(a.Type); !ok {
		return a, fmt.Errorf("type: %w", ErrInvalidAddress)
	}
	if a.Pincode, ok = validate.Pincode(a.Pincode); !ok {
		return a, fmt.Errorf("pincode: %w", ErrInvalidAddress)
	}
	for _, f := range []*string{&a.House, &a.Street, &a.City, &a.State} {
		if *f, ok = validate.Text(*f, 120); !ok {
			return a, fmt.Errorf("field too long: %w", ErrInvalidAddress)
		}
	}
	return a, nil
}

func (s *AddressService) Create(userID string, a domain.Address) (domain.Address, error) {
	a, err := clean(a)
	if err != nil {
		return a, err
	}
	a.ID = uuid.NewString()
	a.UserID = userID
	return s.Addrs.Create(a)
}

func (s *AddressService) Update(userID, id string, a domain.Address) (domain.Address, error) {
	a, err := clean(a)
	if err != nil {
		return a, err
	}
	a.ID, a.UserID = id, userID
	if err := s.Addrs.Update(a); err != nil {
		return a, rowsToNotFound(err)
	}
	return s.Addrs.Get(userID, id)
}

func (s *AddressService) SetDefault(userID, id string) error {
	return rowsToNotFound(s.Addrs.SetDefault(userID, id))
}

func (s *AddressService) Delete(userID, id string) error {
	return notFound(s.Addrs.Delete(userID, id), "address "+id)
}

func rowsToNotFound(err error) error {
	if errors.Is(err, repos.ErrNoRowsAffected) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}
