package cart

import (
	"slices"
	"time"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

// MaxQuantity bounds one line, including quantities summed into it.
const MaxQuantity = 99

var (
	ErrInvalidQuantity = errs.Mark(errs.New("quantity must be between 1 and 99"), errs.ErrInvalidQuantity)
	ErrLineNotFound    = errs.Mark(errs.New("cart line not found"), errs.ErrNotFound)
)

type Line struct {
	id        uuid.UUID
	itemID    uuid.UUID
	itemName  string
	quantity  int
	unitPrice money.Amount
}

func ReconstructLine(id, itemID uuid.UUID, itemName string, quantity int, unitPrice money.Amount) Line {
	return Line{
		id:        id,
		itemID:    itemID,
		itemName:  itemName,
		quantity:  quantity,
		unitPrice: unitPrice,
	}
}

func (l Line) ID() uuid.UUID           { return l.id }
func (l Line) ItemID() uuid.UUID       { return l.itemID }
func (l Line) ItemName() string        { return l.itemName }
func (l Line) Quantity() int           { return l.quantity }
func (l Line) UnitPrice() money.Amount { return l.unitPrice }
func (l Line) Subtotal() money.Amount  { return l.unitPrice.Times(l.quantity) }

// Cart holds one customer's pending lines. itemCount and subtotal are
// recomputed from the lines after every mutation.
type Cart struct {
	customerID uuid.UUID
	lines      []Line
	itemCount  int
	subtotal   money.Amount
	createdAt  time.Time
	updatedAt  time.Time
}

func ValidQuantity(quantity int) bool {
	return quantity >= 1 && quantity <= MaxQuantity
}

func New(customerID uuid.UUID, now time.Time) *Cart {
	return &Cart{
		customerID: customerID,
		createdAt:  now,
		updatedAt:  now,
	}
}

func Reconstruct(customerID uuid.UUID, lines []Line, createdAt, updatedAt time.Time) *Cart {
	c := &Cart{
		customerID: customerID,
		lines:      slices.Clone(lines),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
	c.recompute()
	return c
}

// AddItem sums into an existing line for the same item, keeping the price
// captured when that line was first added. The summed quantity must stay
// within MaxQuantity.
func (c *Cart) AddItem(item *catalog.Item, quantity int, now time.Time) (Line, error) {
	if !ValidQuantity(quantity) {
		return Line{}, ErrInvalidQuantity
	}
	if !item.Available() {
		return Line{}, catalog.ErrItemNotFound
	}

	if idx := c.indexOfItem(item.ID); idx >= 0 {
		if !ValidQuantity(c.lines[idx].quantity + quantity) {
			return Line{}, ErrInvalidQuantity
		}
		c.lines[idx].quantity += quantity
		c.touch(now)
		return c.lines[idx], nil
	}

	line := Line{
		id:        uuid.New(),
		itemID:    item.ID,
		itemName:  item.Name,
		quantity:  quantity,
		unitPrice: item.Price,
	}
	c.lines = append(c.lines, line)
	c.touch(now)
	return line, nil
}

// UpdateQuantity does not accept zero; removal goes through RemoveLine.
func (c *Cart) UpdateQuantity(lineID uuid.UUID, quantity int, now time.Time) error {
	if !ValidQuantity(quantity) {
		return ErrInvalidQuantity
	}
	idx := c.indexOfLine(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.lines[idx].quantity = quantity
	c.touch(now)
	return nil
}

func (c *Cart) RemoveLine(lineID uuid.UUID, now time.Time) error {
	idx := c.indexOfLine(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.lines = slices.Delete(c.lines, idx, idx+1)
	c.touch(now)
	return nil
}

// RemoveLines drops the given lines if still present and reports how many went.
func (c *Cart) RemoveLines(lineIDs []uuid.UUID, now time.Time) int {
	before := len(c.lines)
	c.lines = slices.DeleteFunc(c.lines, func(l Line) bool {
		return slices.Contains(lineIDs, l.id)
	})
	removed := before - len(c.lines)
	if removed > 0 {
		c.touch(now)
	}
	return removed
}

func (c *Cart) Clear(now time.Time) {
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.touch(now)
}

func (c *Cart) CustomerID() uuid.UUID  { return c.customerID }
func (c *Cart) ItemCount() int         { return c.itemCount }
func (c *Cart) Subtotal() money.Amount { return c.subtotal }
func (c *Cart) CreatedAt() time.Time   { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time   { return c.updatedAt }
func (c *Cart) IsEmpty() bool          { return len(c.lines) == 0 }
func (c *Cart) Lines() []Line          { return slices.Clone(c.lines) }

func (c *Cart) Line(lineID uuid.UUID) (Line, bool) {
	idx := c.indexOfLine(lineID)
	if idx < 0 {
		return Line{}, false
	}
	return c.lines[idx], true
}

func (c *Cart) touch(now time.Time) {
	c.updatedAt = now
	c.recompute()
}

func (c *Cart) recompute() {
	count := 0
	var subtotal money.Amount
	for _, l := range c.lines {
		count += l.quantity
		subtotal = subtotal.Add(l.Subtotal())
	}
	c.itemCount = count
	c.subtotal = subtotal
}

func (c *Cart) indexOfLine(lineID uuid.UUID) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.id == lineID })
}

func (c *Cart) indexOfItem(itemID uuid.UUID) int {
	return slices.IndexFunc(c.lines, func(l Line) bool { return l.itemID == itemID })
}
