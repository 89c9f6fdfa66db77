package inventory

import (
	"time"

	"github.com/xiebiao/logitrax/internal/domain/inventory"
)

// ItemView 库存条目输出（同时也是缓存里的值）
type ItemView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Quantity  int       `json:"quantity"`
	Version   uint      `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(item *inventory.Item) *ItemView {
	return &ItemView{
		ID:        item.ID,
		Name:      item.Name,
		Location:  item.Location,
		Quantity:  item.Quantity,
		Version:   item.Version,
		UpdatedAt: item.UpdatedAt,
	}
}
