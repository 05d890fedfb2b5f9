package catalog

// WholesaleThreshold is the base-unit quantity from which wholesale pricing applies.
const WholesaleThreshold = 50

// PricingTier labels an order by the size of its base-unit quantity.
type PricingTier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NameArabic  string `json:"nameArabic"`
	MinQuantity int    `json:"minQuantity"`
	MaxQuantity int    `json:"maxQuantity,omitempty"`
	Description string `json:"description"`
}

var (
	// TierRetail is a label for single-item buyers. No quantity maps to it,
	// so it is not listed by Tiers.
	TierRetail = PricingTier{
		ID: "retail", Name: "Retail", NameArabic: "تجزئة",
		MinQuantity: 1, MaxQuantity: WholesaleThreshold - 1,
		Description: "Individual or small quantity purchases",
	}
	TierSemiWholesale = PricingTier{
		ID: "semi_wholesale", Name: "Semi-Wholesale", NameArabic: "نصف جملة",
		MinQuantity: 1, MaxQuantity: WholesaleThreshold - 1,
		Description: "Medium quantity purchases under wholesale threshold",
	}
	TierWholesale = PricingTier{
		ID: "wholesale", Name: "Wholesale", NameArabic: "جملة",
		MinQuantity: WholesaleThreshold,
		Description: "Bulk purchases at or above the wholesale threshold",
	}
)

// Tiers lists the tiers an order can be assigned, smallest first.
func Tiers() []PricingTier {
	return []PricingTier{TierSemiWholesale, TierWholesale}
}
