// Package pricing derives unit conversions, prices, tiers and delivery fees
// for the active product line. Every function is pure.
package pricing

import (
	"errors"
	"math"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

var (
	ErrUnknownUnit    = errors.New("unknown unit")
	ErrUnknownVariant = errors.New("unknown product variant")
	ErrUnknownRegion  = errors.New("unknown region")
	ErrNotWholeUnits  = errors.New("quantity is not a whole number of units")
	ErrBadQuantity    = errors.New("quantity must be positive")
	// ErrQuantityOutOfRange means a quantity outside [1, line maximum] or
	// one whose price does not fit in an int64.
	ErrQuantityOutOfRange = errors.New("quantity out of range")
)

// Calculator prices orders for one product line.
type Calculator struct {
	line catalog.ProductLine
}

// New returns a Calculator for line.
func New(line catalog.ProductLine) *Calculator {
	return &Calculator{line: line}
}

// Line returns the product line the calculator prices.
func (c *Calculator) Line() catalog.ProductLine { return c.line }

// ConvertToBaseUnits expresses quantity units of unitID in base units.
func (c *Calculator) ConvertToBaseUnits(quantity int, unitID string) (int, error) {
	u, ok := c.line.Unit(unitID)
	if !ok {
		return 0, ErrUnknownUnit
	}
	if quantity < 0 || quantity > math.MaxInt/u.Factor {
		return 0, ErrQuantityOutOfRange
	}
	return quantity * u.Factor, nil
}

// ConvertFromBaseUnits expresses a base-unit quantity in unitID.
func (c *Calculator) ConvertFromBaseUnits(baseUnits int, unitID string) (int, error) {
	u, ok := c.line.Unit(unitID)
	if !ok {
		return 0, ErrUnknownUnit
	}
	if baseUnits%u.Factor != 0 {
		return 0, ErrNotWholeUnits
	}
	return baseUnits / u.Factor, nil
}

// UnitPrice returns the price of one base unit of variantID.
func (c *Calculator) UnitPrice(variantID string) (int64, error) {
	v, ok := c.line.Variant(variantID)
	if !ok {
		return 0, ErrUnknownVariant
	}
	return v.PricePerBaseUnit, nil
}

// ProductPrice returns the price of baseUnits of variantID under the line's price rule.
func (c *Calculator) ProductPrice(variantID string, baseUnits int) (int64, error) {
	price, err := c.UnitPrice(variantID)
	if err != nil {
		return 0, err
	}
	if baseUnits < 1 {
		return 0, ErrBadQuantity
	}
	if price > 0 && int64(baseUnits) > math.MaxInt64/price {
		return 0, ErrQuantityOutOfRange
	}
	if c.line.PriceRule == catalog.PriceBuyTwoGetOne {
		return FreeItemPrice(baseUnits, price), nil
	}
	return int64(baseUnits) * price, nil
}

// FreeItemPrice applies the buy-two-get-one offer: from three items on,
// exactly one item is free no matter how many are ordered.
func FreeItemPrice(quantity int, unitPrice int64) int64 {
	if quantity >= 3 {
		return int64(quantity-1) * unitPrice
	}
	return int64(quantity) * unitPrice
}

// DeliveryPrice returns the delivery fee for region. Office delivery falls
// back to the home price where the region has no office. Lines with free
// delivery always return 0.
func (c *Calculator) DeliveryPrice(region string, deliveryType model.DeliveryType) (int64, error) {
	if c.line.FreeDelivery {
		return 0, nil
	}
	r, ok := catalog.LookupRegion(region)
	if !ok {
		return 0, ErrUnknownRegion
	}
	if deliveryType == model.DeliveryOffice && r.HasOffice {
		return r.Office, nil
	}
	return r.Home, nil
}

// Tier classifies a base-unit quantity.
func Tier(baseUnits int) catalog.PricingTier {
	if baseUnits >= catalog.WholesaleThreshold {
		return catalog.TierWholesale
	}
	return catalog.TierSemiWholesale
}

// IsWholesale reports whether baseUnits reaches the wholesale threshold.
func IsWholesale(baseUnits int) bool {
	return baseUnits >= catalog.WholesaleThreshold
}

// TotalCups is informational and does not affect price.
func (c *Calculator) TotalCups(variantID string, baseUnits int) (int, error) {
	v, ok := c.line.Variant(variantID)
	if !ok {
		return 0, ErrUnknownVariant
	}
	return baseUnits * v.CupsPerBaseUnit, nil
}
