package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type createTransactionRequest struct {
	Title  string                `json:"title" validate:"required"`
	Amount *amount               `json:"amount" validate:"required,gte=0"`
	Type   transaction.Direction `json:"type" validate:"required,oneof=debit credit"`
}

// Amount may be signed here; without a type it is stored as given.
type updateTransactionRequest struct {
	Title  *string                `json:"title,omitempty"`
	Amount *amount                `json:"amount,omitempty"`
	Type   *transaction.Direction `json:"type,omitempty" validate:"omitempty,oneof=debit credit"`
}

// amount is a decimal that only decodes from a bare JSON number.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		return &transaction.ValidationError{Fields: []transaction.FieldError{{
			Field:   "amount",
			Message: "must be a number",
		}}}
	}

	return a.Decimal.UnmarshalJSON(b)
}

func (a *amount) value() *decimal.Decimal {
	if a == nil {
		return nil
	}

	return &a.Decimal
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	// Lets numeric tags such as gte apply to decimal amounts.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		switch d := field.Interface().(type) {
		case decimal.Decimal:
			return d.InexactFloat64()
		case amount:
			return d.InexactFloat64()
		}

		return nil
	}, decimal.Decimal{}, amount{})

	return v
}

// decodeAndValidate parses a JSON body into dst and runs the declarative checks.
// Failures come back as *transaction.ValidationError.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return decodeError(err)
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		return toValidationError(verrs)
	}

	return nil
}

func decodeError(err error) error {
	var verr *transaction.ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &transaction.ValidationError{Fields: []transaction.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type),
		}}}
	}

	msg := "invalid request body: " + err.Error()
	if errors.Is(err, io.EOF) {
		msg = "request body is required"
	}

	return &transaction.ValidationError{Fields: []transaction.FieldError{{Message: msg}}}
}

func toValidationError(verrs validator.ValidationErrors) *transaction.ValidationError {
	out := &transaction.ValidationError{}

	for _, fe := range verrs {
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "gte":
			msg = "must be greater than or equal to " + fe.Param()
		case "oneof":
			msg = "must be one of: " + fe.Param()
		default:
			msg = "is invalid"
		}

		out.Fields = append(out.Fields, transaction.FieldError{Field: fe.Field(), Message: msg})
	}

	return out
}
