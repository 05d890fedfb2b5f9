package catalog

// Region is one wilaya and its delivery prices.
type Region struct {
	Name      string `json:"name"`
	HasOffice bool   `json:"hasOffice"`
	Office    int64  `json:"office,omitempty"`
	Home      int64  `json:"home"`
}

func withOffice(name string, office, home int64) Region {
	return Region{Name: name, HasOffice: true, Office: office, Home: home}
}

func homeOnly(name string, home int64) Region {
	return Region{Name: name, Home: home}
}

// regions is ordered as presented in the storefront select.
var regions = []Region{
	withOffice("أدرار", 600, 1100),
	withOffice("الشلف", 400, 700),
	withOffice("الأغواط", 500, 900),
	withOffice("أم_البواقي", 500, 700),
	withOffice("باتنة", 400, 600),
	withOffice("بجاية", 400, 600),
	withOffice("بسكرة", 500, 800),
	withOffice("بشار", 600, 1100),
	withOffice("البليدة", 400, 500),
	withOffice("البويرة", 400, 700),
	withOffice("تمنراست", 800, 1300),
	withOffice("تبسة", 400, 800),
	withOffice("تلمسان", 400, 800),
	withOffice("تيارت", 400, 800),
	withOffice("تيزي وزو", 400, 700),
	withOffice("الجزائر", 350, 500),
	withOffice("الجلفة", 500, 900),
	withOffice("جيجل", 400, 600),
	withOffice("سطيف", 250, 400),
	withOffice("سعيدة", 400, 800),
	withOffice("سكيكدة", 400, 650),
	withOffice("سيدي_بلعباس", 400, 800),
	withOffice("عنابة", 400, 700),
	withOffice("قالمة", 400, 700),
	withOffice("قسنطينة", 400, 600),
	withOffice("المدية", 400, 700),
	withOffice("مستغانم", 400, 700),
	withOffice("المسيلة", 400, 700),
	withOffice("معسكر", 400, 700),
	withOffice("ورقلة", 500, 1000),
	withOffice("وهران", 400, 700),
	withOffice("البيض", 500, 1000),
	withOffice("إليزي", 600, 1300),
	withOffice("برج_بوعريريج", 400, 600),
	withOffice("بومرداس", 400, 700),
	homeOnly("الطارف", 700),
	homeOnly("تندوف", 1300),
	withOffice("تيسمسيلت", 400, 800),
	withOffice("الوادي", 500, 900),
	withOffice("خنشلة", 500, 700),
	withOffice("سوق_أهراس", 500, 800),
	withOffice("تيبازة", 400, 700),
	withOffice("ميلة", 400, 600),
	withOffice("عين_الدفلة", 400, 700),
	homeOnly("النعامة", 1000),
	withOffice("عين تيموشنت", 400, 800),
	withOffice("غرداية", 500, 900),
	withOffice("غليزان", 400, 700),
	homeOnly("تيميمون", 1300),
	homeOnly("أولاد_جلال", 900),
	homeOnly("بني_عباس", 1300),
	withOffice("عين_صالح", 600, 1300),
	homeOnly("تقرت", 900),
	homeOnly("المغير", 900),
	homeOnly("المنيعة", 1000),
	homeOnly("عين_قزام", 1300),
	homeOnly("جانت", 1300),
	homeOnly("برج_باجي_مختار", 1300),
}

var regionIndex = func() map[string]Region {
	m := make(map[string]Region, len(regions))
	for _, r := range regions {
		m[r.Name] = r
	}
	return m
}()

// LookupRegion returns the delivery entry for a wilaya.
func LookupRegion(name string) (Region, bool) {
	r, ok := regionIndex[name]
	return r, ok
}

// Regions returns all wilayas in display order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}
