package cart

import (
	"time"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/pkg/errs"

	"github.com/google/uuid"
)

type SkipReason string

const (
	SkipUnavailable     SkipReason = "unavailable"
	SkipInvalidQuantity SkipReason = "invalid_quantity"
)

// GuestLine is a line from a cart kept client-side before the customer was identified.
// Any price the client held is ignored.
type GuestLine struct {
	ItemID   uuid.UUID
	Quantity int
}

type SkippedLine struct {
	ItemID   uuid.UUID
	Quantity int
	Reason   SkipReason
}

type MergeReport struct {
	Merged  int
	Skipped []SkippedLine
}

// Merge folds guest lines into the cart. Existing items have quantities summed;
// new items are priced from the current catalog snapshot. A line whose sum would
// pass MaxQuantity is skipped whole. Calling it twice with the same payload adds
// the quantities twice.
func (c *Cart) Merge(guest []GuestLine, items map[uuid.UUID]*catalog.Item, now time.Time) MergeReport {
	var report MergeReport
	for _, gl := range guest {
		if !ValidQuantity(gl.Quantity) {
			report.Skipped = append(report.Skipped, SkippedLine{ItemID: gl.ItemID, Quantity: gl.Quantity, Reason: SkipInvalidQuantity})
			continue
		}
		item, err := catalog.Lookup(items, gl.ItemID)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedLine{ItemID: gl.ItemID, Quantity: gl.Quantity, Reason: SkipUnavailable})
			continue
		}
		if _, err := c.AddItem(item, gl.Quantity, now); err != nil {
			reason := SkipUnavailable
			if errs.Is(err, ErrInvalidQuantity) {
				reason = SkipInvalidQuantity
			}
			report.Skipped = append(report.Skipped, SkippedLine{ItemID: gl.ItemID, Quantity: gl.Quantity, Reason: reason})
			continue
		}
		report.Merged++
	}
	return report
}
