package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shopflow/shopflow-client/config"
	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/session"
	"github.com/shopflow/shopflow-client/types"
)

// Guest-local inventory lives under fixed global keys, never namespaced:
// there is no user id to namespace by before sign-up.
const (
	keyGuestInventory      = "guest_inventory"
	keyGuestInventoryCount = "guest_inventory_count"
)

// InventoryAPI is the slice of the backend client the inventory screen uses.
type InventoryAPI interface {
	ListProducts(ctx context.Context) ([]types.Product, error)
	CreateProduct(ctx context.Context, product types.Product) (*types.Product, error)
	UpdateProduct(ctx context.Context, id string, product types.Product) (*types.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	LowStockProducts(ctx context.Context) ([]types.Product, error)
	ProductHistory(ctx context.Context) ([]types.ProductHistoryEntry, error)
}

// AddResult is the outcome of adding a product. SignupRequired is set when a
// guest has hit the trial cap; the item was not stored.
type AddResult struct {
	Product        *types.Product
	SignupRequired bool
}

// InventoryService serves the inventory screen. Credentialed sessions proxy
// the backend; guest sessions shadow everything into a capped local list that
// never touches the server.
type InventoryService struct {
	api      InventoryAPI
	sessions *session.Manager
	epoch    *ScreenEpoch
	limit    int
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewInventoryService(api InventoryAPI, sessions *session.Manager, epoch *ScreenEpoch, cfg config.GuestConfig) *InventoryService {
	return &InventoryService{
		api:      api,
		sessions: sessions,
		epoch:    epoch,
		limit:    cfg.InventoryLimit,
		now:      time.Now,
		log:      logger.GetLogger(),
	}
}

// List returns the products for the screen entered at gen.
func (s *InventoryService) List(ctx context.Context, gen uint64) ([]types.Product, error) {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return nil, err
	}

	var products []types.Product
	if guest {
		if products, err = s.guestList(ctx); err != nil {
			return nil, err
		}
	} else {
		if products, err = s.api.ListProducts(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.epoch.Guard(gen); err != nil {
		return nil, err
	}
	return products, nil
}

// Add stores a new product. Guests get a local id and are capped; at the cap
// the add is refused and the caller is pointed at sign-up.
func (s *InventoryService) Add(ctx context.Context, product types.Product) (AddResult, error) {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return AddResult{}, err
	}

	if !guest {
		created, err := s.api.CreateProduct(ctx, product)
		if err != nil {
			return AddResult{}, err
		}
		return AddResult{Product: created}, nil
	}

	current, err := s.guestList(ctx)
	if err != nil {
		return AddResult{}, err
	}
	if len(current) >= s.limit {
		s.log.Infow("Guest inventory cap reached", "limit", s.limit)
		return AddResult{SignupRequired: true}, nil
	}

	product.ID = fmt.Sprintf("guest-%d", s.now().UnixMilli())
	product.MongoID = ""
	current = append(current, product)
	if err := s.saveGuestList(ctx, current); err != nil {
		return AddResult{}, err
	}
	return AddResult{Product: &product}, nil
}

// Update replaces the product with the given id.
func (s *InventoryService) Update(ctx context.Context, id string, product types.Product) (*types.Product, error) {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return nil, err
	}
	if !guest {
		return s.api.UpdateProduct(ctx, id, product)
	}

	current, err := s.guestList(ctx)
	if err != nil {
		return nil, err
	}
	for i := range current {
		if current[i].EffectiveID() == id {
			product.ID = id
			product.MongoID = ""
			current[i] = product
			if err := s.saveGuestList(ctx, current); err != nil {
				return nil, err
			}
			return &current[i], nil
		}
	}
	return nil, fmt.Errorf("product %s not found", id)
}

// Delete removes the product with the given id.
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return err
	}
	if !guest {
		return s.api.DeleteProduct(ctx, id)
	}

	current, err := s.guestList(ctx)
	if err != nil {
		return err
	}
	kept := current[:0]
	for _, p := range current {
		if p.EffectiveID() != id {
			kept = append(kept, p)
		}
	}
	return s.saveGuestList(ctx, kept)
}

// LowStock returns the products at or below their restock threshold. For
// guests it is computed over the local list.
func (s *InventoryService) LowStock(ctx context.Context, gen uint64) ([]types.Product, error) {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return nil, err
	}

	var low []types.Product
	if guest {
		current, err := s.guestList(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range current {
			if p.IsLowStock() {
				low = append(low, p)
			}
		}
	} else {
		if low, err = s.api.LowStockProducts(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.epoch.Guard(gen); err != nil {
		return nil, err
	}
	return low, nil
}

// History returns the inventory audit trail. Guests have none.
func (s *InventoryService) History(ctx context.Context, gen uint64) ([]types.ProductHistoryEntry, error) {
	guest, err := s.sessions.IsGuestMode(ctx)
	if err != nil {
		return nil, err
	}
	if guest {
		return nil, nil
	}

	entries, err := s.api.ProductHistory(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.epoch.Guard(gen); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *InventoryService) guestList(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if _, err := s.sessions.GetGlobalJSON(ctx, keyGuestInventory, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *InventoryService) saveGuestList(ctx context.Context, products []types.Product) error {
	if err := s.sessions.SetGlobalJSON(ctx, keyGuestInventory, products); err != nil {
		return err
	}
	return s.sessions.SetGlobalJSON(ctx, keyGuestInventoryCount, len(products))
}
