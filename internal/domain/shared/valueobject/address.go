package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is an immutable postal address shared by tenants, vendors,
// customers and employees. All fields optional except line1 and city.
type Address struct {
	line1      string
	line2      string
	city       string
	state      string
	postalCode string
	country    string
}

// NewAddress creates an address. Line1 and city are required.
func NewAddress(line1, line2, city, state, postalCode, country string) (Address, error) {
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	if line1 == "" {
		return Address{}, fmt.Errorf("address line1 is required")
	}
	if city == "" {
		return Address{}, fmt.Errorf("address city is required")
	}
	return Address{
		line1:      line1,
		line2:      strings.TrimSpace(line2),
		city:       city,
		state:      strings.TrimSpace(state),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
	}, nil
}

// EmptyAddress returns the zero address
func EmptyAddress() Address {
	return Address{}
}

func (a Address) Line1() string      { return a.line1 }
func (a Address) Line2() string      { return a.line2 }
func (a Address) City() string       { return a.city }
func (a Address) State() string      { return a.state }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }

// IsEmpty reports whether no fields are set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Oneline renders the address as a single comma-joined line
func (a Address) Oneline() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.line1, a.line2, a.city, a.state, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type addressJSON struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Line1: a.line1, Line2: a.line2, City: a.city,
		State: a.state, PostalCode: a.postalCode, Country: a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler without re-validating,
// so rows written before validation tightened still load.
func (a *Address) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.line1 = raw.Line1
	a.line2 = raw.Line2
	a.city = raw.City
	a.state = raw.State
	a.postalCode = raw.PostalCode
	a.country = raw.Country
	return nil
}

// Value stores the address as a JSON column
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
}
