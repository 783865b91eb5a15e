package models

// CartItem is one cart line. Quantity is always >= 1.
type CartItem struct {
	ProductID string `bson:"productId" json:"productId"`
	Quantity  int    `bson:"quantity"  json:"quantity"`
}

// Cart is embedded in User. A product id appears at most once in Items.
type Cart struct {
	Items []CartItem `bson:"items" json:"items"`
}

// Add increments an existing line or appends a new one with quantity 1.
func (c *Cart) Add(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: 1})
}

// Remove drops the line for productID. Absent ids are ignored.
// Reports whether a line was removed.
func (c *Cart) Remove(productID string) bool {
	kept := make([]CartItem, 0, len(c.Items))
	removed := false
	for _, item := range c.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return removed
}

func (c *Cart) Clear() { c.Items = []CartItem{} }

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// ProductIDs returns the referenced ids in cart order.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
