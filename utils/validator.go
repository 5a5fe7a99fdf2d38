package utils

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9_-]+$`)
	registerOnce   sync.Once
	registerResult error
)

// RegisterValidators installs the custom tags used in request bindings:
//
//	slug        lowercase letters, digits, hyphen and underscore
//	search_type "product" or "product_type"
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		}); err != nil {
			registerResult = err
			return
		}
		registerResult = v.RegisterValidation("search_type", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case SearchTypeProduct, SearchTypeProductType:
				return true
			}
			return false
		})
	})
	return registerResult
}

const (
	SearchTypeProduct     = "product"
	SearchTypeProductType = "product_type"
)
