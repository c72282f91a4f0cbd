package checkout

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"tea-kart/internal/model"

	"github.com/go-playground/validator/v10"
)

// Field names accepted by Form.SetField. They match the JSON wire names.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldAddressLine1 = "address_line1"
	FieldAddressLine2 = "address_line2"
	FieldCity         = "city"
	FieldPostalCode   = "postal_code"
	FieldCountry      = "country"
)

var fieldSetters = map[string]func(*model.CustomerInfo, string){
	FieldName:         func(c *model.CustomerInfo, v string) { c.Name = v },
	FieldEmail:        func(c *model.CustomerInfo, v string) { c.Email = v },
	FieldPhone:        func(c *model.CustomerInfo, v string) { c.Phone = v },
	FieldAddressLine1: func(c *model.CustomerInfo, v string) { c.AddressLine1 = v },
	FieldAddressLine2: func(c *model.CustomerInfo, v string) { c.AddressLine2 = v },
	FieldCity:         func(c *model.CustomerInfo, v string) { c.City = v },
	FieldPostalCode:   func(c *model.CustomerInfo, v string) { c.PostalCode = v },
	FieldCountry:      func(c *model.CustomerInfo, v string) { c.Country = v },
}

// Fields returns the settable field names in sorted order.
func Fields() []string {
	names := make([]string, 0, len(fieldSetters))
	for name := range fieldSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Form holds the customer details being edited for one session.
type Form struct {
	mu   sync.RWMutex
	info model.CustomerInfo
}

// NewForm creates an empty checkout form.
func NewForm() *Form {
	return &Form{}
}

// SetField updates a single field by its wire name.
func (f *Form) SetField(name, value string) error {
	set, ok := fieldSetters[name]
	if !ok {
		return model.ErrUnknownField
	}

	f.mu.Lock()
	set(&f.info, value)
	f.mu.Unlock()
	return nil
}

// Customer returns a copy of the current form values.
func (f *Form) Customer() model.CustomerInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.info
}

// Validate reports whether every required field is filled in. The returned
// map holds a message per blank required field.
func (f *Form) Validate() (bool, map[string]string) {
	fields := ValidateCustomer(f.Customer())
	return len(fields) == 0, fields
}

// ValidateCustomer checks that the required fields are non-blank after
// trimming. Only presence is checked, not format.
func ValidateCustomer(info model.CustomerInfo) map[string]string {
	err := validate.Struct(info)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["customer"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Field() + " is required"
	}
	return fields
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
	// notblank rejects empty and whitespace-only strings.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}
