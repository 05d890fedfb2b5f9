package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

func newValidator(t *testing.T, line string) *Validator {
	t.Helper()
	l, err := catalog.Line(line)
	require.NoError(t, err)
	return New(l)
}

func validForm() model.OrderForm {
	return model.OrderForm{
		FullName: "أمين بن علي",
		Phone:    "0771234567",
		Wilaya:   "وهران",
		Baladia:  "بئر الجير",
		CupType:  "small_tribal_6",
		Unit:     "carton",
		Quantity: 3,
	}
}

func fieldsOf(errs []FieldError) map[string]string {
	m := make(map[string]string, len(errs))
	for _, e := range errs {
		m[e.Field] = e.Message
	}
	return m
}

func TestValidateAcceptsValidForm(t *testing.T) {
	v := newValidator(t, "cupping")
	assert.Nil(t, v.Validate(v.Normalize(validForm())))
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	v := newValidator(t, "cupping")
	f := model.OrderForm{FullName: " a ", Phone: "123", AltPhone: "0779999", Quantity: 0, CupType: "ghost", Unit: "crate", DeliveryType: "drone"}
	got := fieldsOf(v.Validate(f))
	assert.Len(t, got, 9)
	for _, field := range []string{"fullName", "phone", "altPhone", "wilaya", "baladia", "cupType", "unit", "deliveryType", "quantity"} {
		assert.NotEmpty(t, got[field], field)
	}
	assert.Equal(t, "الاسم يجب أن يكون أكثر من حرف واحد", got["fullName"])
	assert.Equal(t, "الولاية مطلوبة", got["wilaya"])
}

func TestPhoneRule(t *testing.T) {
	cup := newValidator(t, "cupping").Rules()
	frank := newValidator(t, "frankincense").Rules()

	assert.Empty(t, cup.Phone("0551234567"))
	assert.NotEmpty(t, cup.Phone("0501234567"), "two-digit prefix is not enough on the cupping line")
	assert.Empty(t, frank.Phone("0501234567"))

	assert.Equal(t, "رقم الهاتف مطلوب", frank.Phone(""))
	assert.NotEmpty(t, frank.Phone("0000000000"))
	assert.NotEmpty(t, frank.Phone("0812345678"))
	assert.NotEmpty(t, frank.Phone("07123456789"))
	assert.NotEmpty(t, frank.Phone("07-2345678"))

	sevens := Rules{Line: catalog.ProductLine{Phone: catalog.PhoneRule{Prefixes: []string{"77"}, Length: 10}}}
	assert.Equal(t, "رقم غير صالح، تحقق من عدم تكرار الأرقام", sevens.Phone("7777777777"))
}

func TestWilayaRule(t *testing.T) {
	r := newValidator(t, "cupping").Rules()
	assert.Empty(t, r.Wilaya("سطيف"))
	assert.Equal(t, "الولاية مطلوبة", r.Wilaya(""))
	assert.Equal(t, "الولاية غير معروفة", r.Wilaya("Marseille"))
}

func TestQuantityCeilingPerLine(t *testing.T) {
	cup := newValidator(t, "cupping")
	frank := newValidator(t, "frankincense")

	f := validForm()
	f.Quantity = 1000
	assert.Nil(t, cup.Validate(cup.Normalize(f)))
	f.Quantity = 1001
	assert.Contains(t, fieldsOf(cup.Validate(cup.Normalize(f))), "quantity")

	g := validForm()
	g.Phone = "0661234567"
	g.CupType, g.Unit = "", ""
	g.Quantity = 51
	got := fieldsOf(frank.Validate(frank.Normalize(g)))
	assert.Equal(t, "الكمية لا يمكن أن تكون أكثر من 50", got["quantity"])
}

func TestQuantityLowerBoundIsOneForEveryUnit(t *testing.T) {
	for _, id := range catalog.LineIDs() {
		v := newValidator(t, id)
		for _, u := range v.Rules().Line.Units() {
			f := validForm()
			f.CupType, f.Unit = "", u.ID
			f.Quantity = 1
			assert.Nil(t, v.Validate(v.Normalize(f)), "line=%s unit=%s", id, u.ID)
			f.Quantity = 0
			assert.Contains(t, fieldsOf(v.Validate(v.Normalize(f))), "quantity", "line=%s unit=%s", id, u.ID)
		}
	}
}

func TestIncrementDecrementClamp(t *testing.T) {
	v := newValidator(t, "frankincense")
	assert.Equal(t, 2, v.Increment(1))
	assert.Equal(t, 50, v.Increment(50))
	assert.Equal(t, 1, v.Decrement(1))
	assert.Equal(t, 49, v.Decrement(50))
	assert.Equal(t, 1, ClampQuantity(-4, 10))
	assert.Equal(t, 10, ClampQuantity(99, 10))
}

func TestNormalizeDefaults(t *testing.T) {
	v := newValidator(t, "cupping")
	f := v.Normalize(model.OrderForm{Phone: " 0771234567 "})
	assert.Equal(t, "large_size_1", f.CupType)
	assert.Equal(t, "carton", f.Unit)
	assert.Equal(t, model.DeliveryHome, f.DeliveryType)
	assert.Equal(t, "0771234567", f.Phone)
}
