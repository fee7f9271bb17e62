package validator

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"bizops/internal/pkg/money"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Lets decimal fields use the numeric tags (gt, gte, lte).
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	// cents rejects money values with more than two decimal places.
	_ = validate.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		return money.IsCents(decimal.NewFromFloat(fl.Field().Float()))
	})
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

func decimalValue(v reflect.Value) interface{} {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

// Validate struct fields. Returns nil when valid, otherwise field name -> failed tag.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = e.Tag()
	}
	return out
}

// Summary renders Validate's result as a stable, human readable string.
func Summary(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" failed "+fields[k])
	}
	return strings.Join(parts, ", ")
}
