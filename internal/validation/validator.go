// Package validation checks submitted order forms before any network call.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/model"
)

// FieldError is one violation, scoped to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator validates order forms for one product line.
type Validator struct {
	rules Rules
	v     *validator.Validate
}

// New builds a Validator with the line-specific rules registered as tags.
func New(line catalog.ProductLine) *Validator {
	rules := Rules{Line: line}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	stringRule := func(rule func(string) string) validator.Func {
		return func(fl validator.FieldLevel) bool { return rule(fl.Field().String()) == "" }
	}
	for tag, fn := range map[string]validator.Func{
		"fullname": stringRule(rules.FullName),
		"phone":    stringRule(rules.Phone),
		"wilaya":   stringRule(rules.Wilaya),
		"baladia":  stringRule(rules.Baladia),
		"variant":  stringRule(rules.Variant),
		"unit":     stringRule(rules.Unit),
		"quantity": func(fl validator.FieldLevel) bool { return rules.Quantity(int(fl.Field().Int())) == "" },
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return &Validator{rules: rules, v: v}
}

// Rules exposes the single-field rules.
func (v *Validator) Rules() Rules { return v.rules }

// Normalize fills line defaults for omitted selections and trims phone numbers.
func (v *Validator) Normalize(f model.OrderForm) model.OrderForm {
	if f.CupType == "" {
		f.CupType = v.rules.Line.DefaultVariant
	}
	if f.Unit == "" {
		f.Unit = v.rules.Line.DefaultUnit
	}
	if f.DeliveryType == "" {
		f.DeliveryType = model.DeliveryHome
	}
	f.Phone = strings.TrimSpace(f.Phone)
	f.AltPhone = strings.TrimSpace(f.AltPhone)
	return f
}

// Validate returns every field violation of f, or nil when f is acceptable.
// Expected invalid input never produces an error value.
func (v *Validator) Validate(f model.OrderForm) []FieldError {
	err := v.v.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "form", Message: "بيانات الطلب غير صالحة"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: v.message(fe)})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	var msg string
	switch fe.Tag() {
	case "fullname":
		msg = v.rules.FullName(asString(fe.Value()))
	case "phone":
		msg = v.rules.Phone(asString(fe.Value()))
	case "wilaya":
		msg = v.rules.Wilaya(asString(fe.Value()))
	case "baladia":
		msg = v.rules.Baladia(asString(fe.Value()))
	case "variant":
		msg = v.rules.Variant(asString(fe.Value()))
	case "unit":
		msg = v.rules.Unit(asString(fe.Value()))
	case "quantity":
		q, _ := fe.Value().(int)
		msg = v.rules.Quantity(q)
	case "oneof":
		msg = v.rules.DeliveryType(model.DeliveryType(asString(fe.Value())))
	}
	if msg == "" {
		msg = "قيمة غير صالحة"
	}
	return msg
}

func asString(val any) string {
	switch s := val.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return reflect.ValueOf(val).String()
}

// ClampQuantity bounds q to [1, ceiling].
func ClampQuantity(q, ceiling int) int {
	if q < 1 {
		return 1
	}
	if q > ceiling {
		return ceiling
	}
	return q
}

// Increment returns q+1 without passing the line ceiling.
func (v *Validator) Increment(q int) int {
	return ClampQuantity(q+1, v.rules.Line.MaxQuantity)
}

// Decrement returns q-1 without going below 1.
func (v *Validator) Decrement(q int) int {
	return ClampQuantity(q-1, v.rules.Line.MaxQuantity)
}
