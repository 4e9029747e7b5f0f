package respond

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"bike-parking-api-server/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var setupOnce sync.Once

// SetupValidator teaches gin's validator to report fields by their wire names and
// registers the notblank tag. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(wireName)
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

func wireName(f reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		tag := f.Tag.Get(key)
		if tag == "" {
			continue
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// BindError reports a request that could not be decoded or failed its binding rules.
// Every offending field is listed at once.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		Error(c, apperr.Validation("request body is required"))
	case errors.As(err, &verrs):
		Error(c, apperr.Validation("missing or invalid fields", invalidFields(verrs)...))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		Error(c, apperr.Validation("missing or invalid fields", typeErr.Field))
	default:
		Error(c, apperr.Validation("invalid request: "+err.Error()))
	}
}

// invalidFields turns "DescriptorInput.location.coordinates.lat" into
// "location.coordinates.lat" and folds "days[3]" into "days".
func invalidFields(verrs validator.ValidationErrors) []string {
	seen := make(map[string]bool, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if i := strings.IndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}
