package svcs

import (
	"context"
	"reflect"

	"github.com/sectrean/svcs-kit/internal/errors"
)

// These are the special types recognized in factory signatures.
var (
	typeError     = reflect.TypeFor[error]()
	typeContext   = reflect.TypeFor[context.Context]()
	typeContainer = reflect.TypeFor[*Container]()
)

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Apply functional options and join any errors together.
func applyOptions[O any](opts []O, f func(O) error) error {
	var errs []error

	for _, o := range opts {
		err := f(o)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
