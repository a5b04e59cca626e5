// Package properties is the client for the property listing endpoints.
package properties

import (
	"strings"

	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/internal/utils"
)

// Types the backend accepts for property_type.
var Types = []string{"apartment", "villa", "townhouse", "penthouse", "studio", "duplex", "land", "commercial"}

// Property is a listing as returned by the backend. The lightweight listing
// endpoint omits most optional fields.
type Property struct {
	ID             int64      `json:"id"`
	UUID           string     `json:"uuid,omitempty"`
	Title          string     `json:"title"`
	Address        string     `json:"address"`
	Description    string     `json:"description,omitempty"`
	PropertyType   string     `json:"property_type"`
	Status         string     `json:"status,omitempty"`
	Bedrooms       *int       `json:"bedrooms,omitempty"`
	Bathrooms      *float64   `json:"bathrooms,omitempty"`
	SquareFeet     *int       `json:"square_feet,omitempty"`
	Price          float64    `json:"price"`
	PricePerSqft   *float64   `json:"price_per_sqft,omitempty"`
	Emirate        string     `json:"emirate,omitempty"`
	Area           string     `json:"area,omitempty"`
	Building       string     `json:"building,omitempty"`
	Furnished      bool       `json:"furnished"`
	Balcony        bool       `json:"balcony"`
	ParkingSpaces  *int       `json:"parking_spaces,omitempty"`
	Amenities      []string   `json:"amenities,omitempty"`
	Features       []string   `json:"features,omitempty"`
	AgentID        *int64     `json:"agent_id,omitempty"`
	AgentName      string     `json:"agent_name,omitempty"`
	IsFeatured     bool       `json:"is_featured"`
	ViewsCount     int        `json:"views_count,omitempty"`
	InquiriesCount int        `json:"inquiries_count,omitempty"`
	ListedAt       utils.Time `json:"listed_at"`
	CreatedAt      utils.Time `json:"created_at"`
	UpdatedAt      utils.Time `json:"updated_at"`
}

// Input is the body for create and update. On update only non-nil fields are
// sent; on create Title, Address, PropertyType and Price are required.
type Input struct {
	Title         *string  `json:"title,omitempty"`
	Address       *string  `json:"address,omitempty"`
	Description   *string  `json:"description,omitempty"`
	PropertyType  *string  `json:"property_type,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFeet    *int     `json:"square_feet,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Emirate       *string  `json:"emirate,omitempty"`
	Area          *string  `json:"area,omitempty"`
	Furnished     *bool    `json:"furnished,omitempty"`
	Balcony       *bool    `json:"balcony,omitempty"`
	ParkingSpaces *int     `json:"parking_spaces,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Features      []string `json:"features,omitempty"`
}

// ValidateCreate checks the fields a new listing needs.
func (in Input) ValidateCreate() error {
	if strings.TrimSpace(utils.Value(in.Title)) == "" {
		return errors.Validationf("title is required")
	}
	if strings.TrimSpace(utils.Value(in.Address)) == "" {
		return errors.Validationf("address is required")
	}
	if in.Price == nil || *in.Price <= 0 {
		return errors.Validationf("price must be greater than zero")
	}
	return in.validateType()
}

// ValidateUpdate checks whatever fields are being changed.
func (in Input) ValidateUpdate() error {
	if in.Price != nil && *in.Price <= 0 {
		return errors.Validationf("price must be greater than zero")
	}
	if in.PropertyType == nil {
		return nil
	}
	return in.validateType()
}

func (in Input) validateType() error {
	t := strings.ToLower(utils.Value(in.PropertyType))
	for _, known := range Types {
		if t == known {
			return nil
		}
	}
	return errors.Validationf("property type must be one of: %s", strings.Join(Types, ", "))
}
