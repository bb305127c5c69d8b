package config

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// TransformAttributes decodes an attribute map into a sensor model's typed
// configuration. Fields are matched by their json tags, so the same struct
// tags serve the config file and the decoder.
func TransformAttributes[T any](attributes AttributeMap) (T, error) {
	var transformed T

	var forResult interface{}
	if tType := reflect.TypeOf(transformed); tType != nil && tType.Kind() == reflect.Ptr {
		allocated, ok := reflect.New(tType.Elem()).Interface().(T)
		if !ok {
			return transformed, errors.Errorf("cannot allocate attribute type %T", transformed)
		}
		transformed = allocated
		forResult = transformed
	} else {
		forResult = &transformed
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  forResult,
	})
	if err != nil {
		return transformed, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return transformed, errors.Wrap(err, "cannot decode attributes")
	}
	return transformed, nil
}
