package pricing

import (
	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// QuoteRequest is the calculator input.
type QuoteRequest struct {
	VariantID    string             `json:"cupType"`
	UnitID       string             `json:"unit"`
	Quantity     int                `json:"quantity"`
	Region       string             `json:"wilaya"`
	DeliveryType model.DeliveryType `json:"deliveryType"`
}

// Quote is the full price breakdown of one order.
type Quote struct {
	VariantID        string              `json:"cupType"`
	UnitID           string              `json:"unit"`
	Quantity         int                 `json:"quantity"`
	BaseUnits        int                 `json:"baseUnits"`
	UnitPrice        int64               `json:"unitPrice"`
	ProductPrice     int64               `json:"productPrice"`
	DeliveryType     model.DeliveryType  `json:"deliveryType"`
	DeliveryPrice    int64               `json:"deliveryPrice"`
	TotalPrice       int64               `json:"totalPrice"`
	FreeDelivery     bool                `json:"freeDelivery"`
	Tier             catalog.PricingTier `json:"pricingTier"`
	TotalCups        int                 `json:"totalCups"`
	UnitsToWholesale int                 `json:"unitsToWholesale,omitempty"`
	Currency         string              `json:"currency"`
}

// Quote prices req. Empty variant, unit and delivery type take the line defaults.
func (c *Calculator) Quote(req QuoteRequest) (Quote, error) {
	req = c.withDefaults(req)
	if req.Quantity < 1 || req.Quantity > c.line.MaxQuantity {
		return Quote{}, ErrQuantityOutOfRange
	}
	base, err := c.ConvertToBaseUnits(req.Quantity, req.UnitID)
	if err != nil {
		return Quote{}, err
	}
	unitPrice, err := c.UnitPrice(req.VariantID)
	if err != nil {
		return Quote{}, err
	}
	product, err := c.ProductPrice(req.VariantID, base)
	if err != nil {
		return Quote{}, err
	}
	delivery, err := c.DeliveryPrice(req.Region, req.DeliveryType)
	if err != nil {
		return Quote{}, err
	}
	cups, err := c.TotalCups(req.VariantID, base)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		VariantID:     req.VariantID,
		UnitID:        req.UnitID,
		Quantity:      req.Quantity,
		BaseUnits:     base,
		UnitPrice:     unitPrice,
		ProductPrice:  product,
		DeliveryType:  req.DeliveryType,
		DeliveryPrice: delivery,
		TotalPrice:    product + delivery,
		FreeDelivery:  c.line.FreeDelivery,
		Tier:          Tier(base),
		TotalCups:     cups,
		Currency:      c.line.Currency,
	}
	if !IsWholesale(base) {
		q.UnitsToWholesale = catalog.WholesaleThreshold - base
	}
	return q, nil
}

func (c *Calculator) withDefaults(req QuoteRequest) QuoteRequest {
	if req.VariantID == "" {
		req.VariantID = c.line.DefaultVariant
	}
	if req.UnitID == "" {
		req.UnitID = c.line.DefaultUnit
	}
	if req.DeliveryType == "" {
		req.DeliveryType = model.DeliveryHome
	}
	return req
}
