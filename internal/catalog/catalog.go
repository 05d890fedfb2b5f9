// Package catalog holds the static product, unit, tier and delivery tables.
package catalog

import (
	"fmt"
	"sort"
)

// ProductVariant is one purchasable product.
type ProductVariant struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	NameArabic       string `json:"nameArabic"`
	PricePerBaseUnit int64  `json:"pricePerBaseUnit"`
	CupsPerBaseUnit  int    `json:"cupsPerBaseUnit"`
	Available        bool   `json:"available"`
}

// Unit is a purchasable quantity unit expressed as a multiple of the base unit.
type Unit struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NameArabic string `json:"nameArabic"`
	Factor     int    `json:"factor"`
}

// PriceRule selects how the product price is derived from quantity.
type PriceRule string

const (
	// PricePerUnit charges every base unit.
	PricePerUnit PriceRule = "per_unit"
	// PriceBuyTwoGetOne makes exactly one unit free once three or more are ordered.
	PriceBuyTwoGetOne PriceRule = "buy_two_get_one"
)

// PhoneRule describes the accepted national mobile numbers.
type PhoneRule struct {
	Prefixes []string `json:"prefixes"`
	Length   int      `json:"length"`
}

// ProductLine is a self-contained pricing model. A deployment runs exactly one.
type ProductLine struct {
	ID             string    `json:"id"`
	ProductName    string    `json:"productName"`
	Currency       string    `json:"currency"`
	BaseUnit       string    `json:"baseUnit"`
	DefaultVariant string    `json:"defaultVariant"`
	DefaultUnit    string    `json:"defaultUnit"`
	PriceRule      PriceRule `json:"priceRule"`
	FreeDelivery   bool      `json:"freeDelivery"`
	MaxQuantity    int       `json:"maxQuantity"`
	Phone          PhoneRule `json:"phone"`

	variants []ProductVariant
	units    []Unit
}

// Variant returns the variant with the given id.
func (l ProductLine) Variant(id string) (ProductVariant, bool) {
	for _, v := range l.variants {
		if v.ID == id {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// Unit returns the unit with the given id.
func (l ProductLine) Unit(id string) (Unit, bool) {
	for _, u := range l.units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// Variants returns all variants in display order.
func (l ProductLine) Variants() []ProductVariant {
	out := make([]ProductVariant, len(l.variants))
	copy(out, l.variants)
	return out
}

// AvailableVariants returns the variants that can currently be ordered.
func (l ProductLine) AvailableVariants() []ProductVariant {
	var out []ProductVariant
	for _, v := range l.variants {
		if v.Available {
			out = append(out, v)
		}
	}
	return out
}

// Units returns all units in display order.
func (l ProductLine) Units() []Unit {
	out := make([]Unit, len(l.units))
	copy(out, l.units)
	return out
}

var lines = map[string]ProductLine{
	cupping.ID:      cupping,
	frankincense.ID: frankincense,
}

// Line looks up a built-in product line by id.
func Line(id string) (ProductLine, error) {
	l, ok := lines[id]
	if !ok {
		return ProductLine{}, fmt.Errorf("unknown product line %q", id)
	}
	return l, nil
}

// LineIDs lists the built-in product lines.
func LineIDs() []string {
	ids := make([]string, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
