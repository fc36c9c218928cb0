package checkout

import (
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"strings"
)

// Form is the customer contact and shipping address entered at checkout.
type Form struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Street   string `json:"street"`
	Building string `json:"building"`
	Floor    string `json:"floor"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
}

// ValidationError lists the required form fields that are blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required fields are empty: %s", strings.Join(e.Fields, ", "))
}

// Normalize trims every field and fills the country when it is blank.
func (f Form) Normalize(defaultCountry string) Form {
	n := Form{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		City:     strings.TrimSpace(f.City),
		Street:   strings.TrimSpace(f.Street),
		Building: strings.TrimSpace(f.Building),
		Floor:    strings.TrimSpace(f.Floor),
		ZipCode:  strings.TrimSpace(f.ZipCode),
		Country:  strings.TrimSpace(f.Country),
	}
	if n.Country == "" {
		n.Country = defaultCountry
	}
	return n
}

// Validate expects a normalized form.
func (f Form) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"email", f.Email},
		{"phone", f.Phone},
		{"city", f.City},
		{"street", f.Street},
		{"building", f.Building},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}

	return nil
}

func (f Form) customer() domain.Customer {
	return domain.Customer{
		Name:  f.Name,
		Email: f.Email,
		Phone: f.Phone,
	}
}

func (f Form) address() domain.ShippingAddress {
	return domain.ShippingAddress{
		City:     f.City,
		Street:   f.Street,
		Building: f.Building,
		Floor:    f.Floor,
		ZipCode:  f.ZipCode,
		Country:  f.Country,
	}
}
