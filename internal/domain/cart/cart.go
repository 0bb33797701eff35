// Package cart implements the session-scoped shopping cart.
//
// A cart maps product IDs to line items holding a denormalized snapshot of
// the product at add time, so later catalog edits never change a cart that
// was already built. Line items keep insertion order, which makes the
// checkout item description reproducible.
package cart

import (
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/bakeshop/internal/domain/product"
)

// LineItem is one cart entry: a product snapshot plus a positive quantity.
// A quantity that drops to zero or below removes the item instead.
type LineItem struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

// Subtotal returns price multiplied by quantity for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds line items keyed by the string form of the product ID.
// The key order is the order items were first added.
type Cart struct {
	keys  []string
	items map[string]*LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[string]*LineItem)}
}

// Key returns the cart key for a product ID.
func Key(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// Add inserts a new line item with quantity 1 for the given product, or
// increments the quantity by exactly 1 when the product is already present.
func (c *Cart) Add(p product.Product) {
	key := Key(p.ID)
	if li, ok := c.items[key]; ok {
		li.Quantity++
		return
	}
	c.keys = append(c.keys, key)
	c.items[key] = &LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
	}
}

// SetQuantity overwrites the quantity of the line item with the given key.
// A quantity of zero or below removes the item. Unknown keys are a no-op.
func (c *Cart) SetQuantity(key string, quantity int) {
	li, ok := c.items[key]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.Remove(key)
		return
	}
	li.Quantity = quantity
}

// Remove deletes the line item with the given key if present.
func (c *Cart) Remove(key string) {
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Get returns the line item for the given key, or nil.
func (c *Cart) Get(key string) *LineItem {
	return c.items[key]
}

// Items returns the line items in insertion order.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, 0, len(c.keys))
	for _, k := range c.keys {
		items = append(items, *c.items[k])
	}
	return items
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// Total returns the sum of price times quantity over all line items.
// An empty cart totals zero.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, k := range c.keys {
		total = total.Add(c.items[k].Subtotal())
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.keys = nil
	c.items = make(map[string]*LineItem)
}

// Encode serializes the cart as a JSON array, preserving insertion order.
func (c *Cart) Encode(e *jx.Encoder) {
	e.ArrStart()
	for _, k := range c.keys {
		li := c.items[k]
		e.ObjStart()
		e.FieldStart("product_id")
		e.Int64(li.ProductID)
		e.FieldStart("name")
		e.Str(li.Name)
		e.FieldStart("price")
		e.Str(li.Price.String())
		e.FieldStart("image")
		e.Str(li.Image)
		e.FieldStart("quantity")
		e.Int(li.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// Decode restores a cart from the JSON array produced by Encode.
func Decode(d *jx.Decoder) (*Cart, error) {
	c := New()
	err := d.Arr(func(d *jx.Decoder) error {
		var li LineItem
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "product_id":
				v, err := d.Int64()
				li.ProductID = v
				return err
			case "name":
				v, err := d.Str()
				li.Name = v
				return err
			case "price":
				v, err := d.Str()
				if err != nil {
					return err
				}
				p, err := decimal.NewFromString(v)
				li.Price = p
				return err
			case "image":
				v, err := d.Str()
				li.Image = v
				return err
			case "quantity":
				v, err := d.Int()
				li.Quantity = v
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		key := Key(li.ProductID)
		c.keys = append(c.keys, key)
		c.items[key] = &li
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
