package catalog

const (
	BagsPerCarton = 100
	CupsPerBag    = 6
)

// cupping is the Amiral Plast cupping-cup line: priced per bag, sold by bag
// or carton, delivered free everywhere.
var cupping = ProductLine{
	ID:             "cupping",
	ProductName:    "كؤوس الحجامة أميرال بلاست",
	Currency:       "DZD",
	BaseUnit:       "bag",
	DefaultVariant: "large_size_1",
	DefaultUnit:    "carton",
	PriceRule:      PricePerUnit,
	FreeDelivery:   true,
	MaxQuantity:    1000,
	Phone:          PhoneRule{Prefixes: []string{"077", "055", "066"}, Length: 10},
	variants: []ProductVariant{
		{ID: "large_size_1", Name: "Large Size Cups No. 1", NameArabic: "كؤوس كبيرة الحجم رقم (1)", PricePerBaseUnit: 17000, CupsPerBaseUnit: CupsPerBag, Available: true},
		{ID: "medium_size_2", Name: "Medium Size Cups No. 2", NameArabic: "كؤوس متوسطة الحجم رقم (2)", PricePerBaseUnit: 17000, CupsPerBaseUnit: CupsPerBag, Available: true},
		{ID: "medium_yellow_men_3", Name: "Medium Cups (Yellow Men) No. 3", NameArabic: "كؤوس متوسطة (الأصفرين رجال) رقم (3)", PricePerBaseUnit: 16500, CupsPerBaseUnit: CupsPerBag, Available: true},
		{ID: "medium_yellow_women_4", Name: "Medium Cups (Yellow Women) No. 4", NameArabic: "كؤوس متوسطة (الأصفرين نساء) رقم (4)", PricePerBaseUnit: 16500, CupsPerBaseUnit: CupsPerBag, Available: true},
		{ID: "small_tribal_6", Name: "Small Cups (Tribal) No. 6", NameArabic: "كؤوس صغيرة (القبيلة) رقم (6)", PricePerBaseUnit: 16000, CupsPerBaseUnit: CupsPerBag, Available: true},
		{ID: "graduated_mixed", Name: "Graduated Mixed Cups (2/2/2/2)", NameArabic: "كؤوس مدرجة (2/2/2/2)", PricePerBaseUnit: 17000, CupsPerBaseUnit: CupsPerBag, Available: true},
	},
	units: []Unit{
		{ID: "bag", Name: "Bag", NameArabic: "كيس", Factor: 1},
		{ID: "carton", Name: "Carton", NameArabic: "كرتون", Factor: BagsPerCarton},
	},
}

// frankincense is the earlier single-product line: one item price, the
// buy-two-get-one offer and region-priced delivery.
var frankincense = ProductLine{
	ID:             "frankincense",
	ProductName:    "زيت لبان الذكر",
	Currency:       "DZD",
	BaseUnit:       "piece",
	DefaultVariant: "frankincense_oil",
	DefaultUnit:    "piece",
	PriceRule:      PriceBuyTwoGetOne,
	FreeDelivery:   false,
	MaxQuantity:    50,
	Phone:          PhoneRule{Prefixes: []string{"05", "06", "07"}, Length: 10},
	variants: []ProductVariant{
		{ID: "frankincense_oil", Name: "Frankincense Oil", NameArabic: "زيت لبان الذكر", PricePerBaseUnit: 2500, Available: true},
	},
	units: []Unit{
		{ID: "piece", Name: "Piece", NameArabic: "قطعة", Factor: 1},
	},
}
