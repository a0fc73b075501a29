package cart

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/omidvar1986/smartoffice/internal/domain"
)

// Service derives the Cart aggregate from the repository and applies
// mutations through it. Every mutation re-reads the persisted list before
// writing, so within one process edits apply in the order they were made.
// Across processes the last writer wins, there is no merge.
type Service struct {
	repo *Repository
	mu   sync.Mutex
	sfg  singleflight.Group // Collapses concurrent reads of the same store
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCart(ctx context.Context) domain.Cart {
	v, _, _ := s.sfg.Do("cart", func() (interface{}, error) {
		return buildCart(s.repo.Load(ctx)), nil
	})
	return v.(domain.Cart)
}

// AddItem merges by product ID, incrementing the existing quantity, or
// appends a new line item. Quantities below 1 count as 1.
func (s *Service) AddItem(ctx context.Context, product domain.Product, quantity int) domain.Cart {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.repo.Load(ctx)
	found := false
	for i := range items {
		if items[i].ID == product.ID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.CartLineItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Image:    product.Image,
			Quantity: quantity,
		})
	}

	s.repo.Save(ctx, items)
	return buildCart(items)
}

// SetQuantity updates one line item. A quantity of zero or less removes the
// item; an absent ID is a no-op, not an error.
func (s *Service) SetQuantity(ctx context.Context, itemID int64, quantity int) domain.Cart {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.repo.Load(ctx)
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			s.repo.Save(ctx, items)
			break
		}
	}
	return buildCart(items)
}

func (s *Service) RemoveItem(ctx context.Context, itemID int64) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.repo.Load(ctx)
	filtered := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			filtered = append(filtered, item)
		}
	}
	s.repo.Save(ctx, filtered)
	return buildCart(filtered)
}

func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo.Clear(ctx)
}

func buildCart(items []domain.CartLineItem) domain.Cart {
	cart := domain.Cart{Items: make([]domain.CartItem, 0, len(items))}
	for _, item := range items {
		subtotal := item.Subtotal()
		cart.Items = append(cart.Items, domain.CartItem{
			Product: domain.Product{
				ID:    item.ID,
				Name:  item.Name,
				Price: item.Price,
				Image: item.Image,
			},
			Quantity:   item.Quantity,
			TotalPrice: subtotal,
		})
		cart.TotalItems += item.Quantity
		cart.TotalPrice += subtotal
	}
	return cart
}
