package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// Rules checks single order-form fields for one product line. Every rule
// returns the user-facing message, or "" when the value is acceptable.
type Rules struct {
	Line catalog.ProductLine
}

// FullName requires at least two characters after trimming.
func (r Rules) FullName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "الاسم الكامل مطلوب"
	}
	if utf8.RuneCountInString(name) < 2 {
		return "الاسم يجب أن يكون أكثر من حرف واحد"
	}
	return ""
}

// Phone accepts a national mobile number with an allowed prefix and the
// configured length, and rejects a single digit repeated throughout.
func (r Rules) Phone(phone string) string {
	if phone == "" {
		return "رقم الهاتف مطلوب"
	}
	if !r.hasValidShape(phone) {
		return fmt.Sprintf("رقم غير صالح، أدخل رقمًا صحيحًا من شبكات الجزائر (%s)", strings.Join(r.Line.Phone.Prefixes, "/"))
	}
	if repeatedDigit(phone) {
		return "رقم غير صالح، تحقق من عدم تكرار الأرقام"
	}
	return ""
}

func (r Rules) hasValidShape(phone string) bool {
	if len(phone) != r.Line.Phone.Length {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	for _, p := range r.Line.Phone.Prefixes {
		if strings.HasPrefix(phone, p) {
			return true
		}
	}
	return false
}

func repeatedDigit(s string) bool {
	if s == "" {
		return false
	}
	return strings.Count(s, s[:1]) == len(s)
}

// Wilaya requires a region from the delivery table.
func (r Rules) Wilaya(wilaya string) string {
	if wilaya == "" {
		return "الولاية مطلوبة"
	}
	if _, ok := catalog.LookupRegion(wilaya); !ok {
		return "الولاية غير معروفة"
	}
	return ""
}

// Baladia requires a non-blank locality.
func (r Rules) Baladia(baladia string) string {
	if strings.TrimSpace(baladia) == "" {
		return "البلدية مطلوبة"
	}
	return ""
}

// Quantity requires 1 <= q <= the line ceiling.
func (r Rules) Quantity(q int) string {
	if q < 1 {
		return "الكمية يجب أن تكون 1 على الأقل"
	}
	if q > r.Line.MaxQuantity {
		return fmt.Sprintf("الكمية لا يمكن أن تكون أكثر من %d", r.Line.MaxQuantity)
	}
	return ""
}

// Variant requires a known, available product variant.
func (r Rules) Variant(id string) string {
	v, ok := r.Line.Variant(id)
	if !ok {
		return "نوع المنتج غير موجود"
	}
	if !v.Available {
		return "نوع المنتج غير متوفر حاليًا"
	}
	return ""
}

// Unit requires a known unit.
func (r Rules) Unit(id string) string {
	if _, ok := r.Line.Unit(id); !ok {
		return "الوحدة غير معروفة"
	}
	return ""
}

// DeliveryType requires office or home.
func (r Rules) DeliveryType(t model.DeliveryType) string {
	if t != model.DeliveryOffice && t != model.DeliveryHome {
		return "نوع التوصيل غير صالح"
	}
	return ""
}
