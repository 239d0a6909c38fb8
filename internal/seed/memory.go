package seed

import (
	"github.com/go-faster/errors"

	"github.com/xenking/food-delivery/internal/storage/memory"
)

// Stores are the in-memory repositories a Set is applied to.
type Stores struct {
	Catalog    *memory.CatalogStore
	Customers  *memory.CustomerStore
	Promotions *memory.PromotionStore
}

// Apply loads the set into the stores. Restaurants are added before their
// menu items.
func (s *Set) Apply(st Stores) error {
	for _, r := range s.Restaurants {
		st.Catalog.AddRestaurant(r)
	}
	for _, it := range s.MenuItems {
		if err := st.Catalog.AddMenuItem(it); err != nil {
			return err
		}
	}
	for _, dp := range s.DeliveryPeople {
		st.Catalog.AddDeliveryPerson(dp)
	}
	for _, c := range s.Customers {
		st.Customers.Add(c)
	}
	for _, p := range s.Promotions {
		if err := st.Promotions.Add(p); err != nil {
			return errors.Wrapf(err, "add promotion %s", p.Code)
		}
	}
	return nil
}
