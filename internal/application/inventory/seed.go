package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/domain/inventory"
	"github.com/xiebiao/logitrax/internal/infrastructure/config"
)

// SeedInventory 账本为空时写入初始库存
type SeedInventory struct {
	ledger inventory.Ledger
	seed   []config.SeedItem
	logger *zap.Logger
}

func NewSeedInventory(ledger inventory.Ledger, cfg *config.Config, logger *zap.Logger) *SeedInventory {
	return &SeedInventory{ledger: ledger, seed: cfg.Inventory.Seed, logger: logger}
}

// Execute 返回写入的条数,账本非空时什么都不做
func (s *SeedInventory) Execute(ctx context.Context) (int, error) {
	n, err := s.ledger.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(s.seed) == 0 {
		return 0, nil
	}

	for _, item := range s.seed {
		if _, err := s.ledger.Upsert(ctx, item.Name, item.Location, item.Quantity); err != nil {
			return 0, err
		}
	}
	s.logger.Info("inventory seeded", zap.Int("items", len(s.seed)))
	return len(s.seed), nil
}
