package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
)

const maxBodyBytes = 64 << 10

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func requestValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("penalty", func(fl validator.FieldLevel) bool {
			_, err := penalties.Parse(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// bindJSON decodes and validates the request body into req. On failure it
// answers 400 and returns false.
func (h *Handler) bindJSON(w http.ResponseWriter, r *http.Request, req any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body", h.logger)
		return false
	}
	if err := requestValidator().Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, resolveBindError(err), h.logger)
		return false
	}
	return true
}

func resolveBindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		verr := verrs[0]
		if verr.Tag() == "required" {
			return fmt.Sprintf("%s is required", verr.Field())
		}
		return fmt.Sprintf("%s is invalid", verr.Field())
	}
	return "invalid request"
}
