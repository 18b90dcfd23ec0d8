package domain

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// lenientHook coerces scalar document fields into the target kind. Values
// that cannot be converted become the zero value instead of failing.
func lenientHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if data == nil {
		return reflect.Zero(to).Interface(), nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cast.ToInt64(data), nil
	case reflect.String:
		return cast.ToString(data), nil
	case reflect.Bool:
		return cast.ToBool(data), nil
	}
	return data, nil
}

func decodeDocument(raw interface{}, out interface{}) error {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return errors.Errorf("document is %T, want object", raw)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       lenientHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(doc)
}

// DecodeProduct builds a Product from a stored document. Documents written
// before the active flag existed are treated as active.
func DecodeProduct(key string, raw interface{}) (Product, error) {
	p := Product{Active: true}
	if err := decodeDocument(raw, &p); err != nil {
		return Product{}, errors.Wrapf(err, "decode product %s", key)
	}
	p.ID = key
	return p, nil
}

func DecodeSale(key string, raw interface{}) (Sale, error) {
	var s Sale
	if err := decodeDocument(raw, &s); err != nil {
		return Sale{}, errors.Wrapf(err, "decode sale %s", key)
	}
	s.ID = key
	return s, nil
}

func DecodeStay(key string, raw interface{}) (Stay, error) {
	var s Stay
	if err := decodeDocument(raw, &s); err != nil {
		return Stay{}, errors.Wrapf(err, "decode stay %s", key)
	}
	s.ID = key
	return s, nil
}

func DecodeExpense(key string, raw interface{}) (Expense, error) {
	var e Expense
	if err := decodeDocument(raw, &e); err != nil {
		return Expense{}, errors.Wrapf(err, "decode expense %s", key)
	}
	e.ID = key
	return e, nil
}
