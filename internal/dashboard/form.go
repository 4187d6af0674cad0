package dashboard

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DialogMode tells whether the dialog creates a product or edits an existing one.
type DialogMode int

const (
	ModeAdd DialogMode = iota + 1
	ModeEdit
)

func (m DialogMode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	default:
		return "none"
	}
}

// Title is the dialog heading.
func (m DialogMode) Title() string {
	if m == ModeEdit {
		return "Edit Product"
	}
	return "Add Product"
}

// Field names a FormBuffer field.
type Field string

const (
	FieldName  Field = "name"
	FieldPrice Field = "price"
	FieldStock Field = "stock"
)

// Fields lists the form fields in display and validation order.
var Fields = []Field{FieldName, FieldPrice, FieldStock}

// ErrUnknownField is returned when setting a field the form does not have.
var ErrUnknownField = errors.New("unknown form field")

// FormBuffer is the raw text typed into the dialog. Numbers stay strings until Validate.
type FormBuffer struct {
	Name  string
	Price string
	Stock string
}

// ProductInput is the validated payload of a create or update request.
type ProductInput struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
	Stock int64   `json:"stock" validate:"gte=0"`
}

// DialogFormState is one add or edit episode: the mode, the product being
// edited and the draft buffer.
type DialogFormState struct {
	Mode DialogMode
	// ID of the product being edited; zero in add mode.
	ID     int64
	Buffer FormBuffer
}

// NewAddForm starts an add episode with the default values "", "0", "0".
func NewAddForm() *DialogFormState {
	return &DialogFormState{
		Mode:   ModeAdd,
		Buffer: FormBuffer{Name: "", Price: "0", Stock: "0"},
	}
}

// NewEditForm starts an edit episode prefilled from p.
func NewEditForm(p Product) *DialogFormState {
	return &DialogFormState{
		Mode: ModeEdit,
		ID:   p.ID,
		Buffer: FormBuffer{
			Name:  p.Name,
			Price: strconv.FormatFloat(p.Price, 'f', -1, 64),
			Stock: strconv.FormatInt(p.Stock, 10),
		},
	}
}

// Set replaces the text of one field. No validation happens here.
func (f *DialogFormState) Set(field Field, value string) error {
	switch field {
	case FieldName:
		f.Buffer.Name = value
	case FieldPrice:
		f.Buffer.Price = value
	case FieldStock:
		f.Buffer.Stock = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns the text of one field.
func (f *DialogFormState) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Buffer.Name
	case FieldPrice:
		return f.Buffer.Price
	case FieldStock:
		return f.Buffer.Stock
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate parses the buffer into a ProductInput. The name is trimmed.
// On failure it returns a *ValidationError for the first invalid field
// in Fields order.
func (f *DialogFormState) Validate() (ProductInput, error) {
	problems := make(map[Field]string)

	input := ProductInput{Name: strings.TrimSpace(f.Buffer.Name)}

	price, msg := parsePrice(f.Buffer.Price)
	if msg != "" {
		problems[FieldPrice] = msg
	}
	input.Price = price

	stock, msg := parseStock(f.Buffer.Stock)
	if msg != "" {
		problems[FieldStock] = msg
	}
	input.Stock = stock

	if err := validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return ProductInput{}, fmt.Errorf("validate product input: %w", err)
		}
		for _, fe := range validationErrors {
			field := Field(fe.Field())
			if _, seen := problems[field]; !seen {
				problems[field] = ruleMessage(fe)
			}
		}
	}

	for _, field := range Fields {
		if msg, ok := problems[field]; ok {
			return ProductInput{}, &ValidationError{Field: string(field), Message: msg}
		}
	}
	return input, nil
}

func parsePrice(s string) (float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "is required"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "must be a number"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "must be a finite number"
	}
	return v, ""
}

// parseStock accepts integers and integral decimals such as "3.0".
func parseStock(s string) (int64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "is required"
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "must be a whole number"
	}
	if v != math.Trunc(v) {
		return 0, "must be a whole number"
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, "is out of range"
	}
	return int64(v), ""
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must not be negative"
	default:
		return fmt.Sprintf("failed on rule: %s", fe.Tag())
	}
}
