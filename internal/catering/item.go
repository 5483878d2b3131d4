package catering

import (
	"fmt"
	"strings"
	"time"
)

const MenuItemsCollection = "menuItems"

// MenuItem is a product of the catering catalog.
type MenuItem struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	// AvailabilityTime is the earliest "HH:MM" event time the product can be
	// ordered for. Empty means all day.
	AvailabilityTime string    `json:"availabilityTime,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NormalizeCategory lowercases a category label and joins its words with
// underscores, so "Plateau Salé" and "plateau_salé" name the same category.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "_"))
}

// Normalize trims every text field and normalizes the category.
func (m *MenuItem) Normalize() {
	m.Reference = strings.TrimSpace(m.Reference)
	m.Name = strings.TrimSpace(m.Name)
	m.Category = NormalizeCategory(m.Category)
	m.Description = strings.TrimSpace(m.Description)
	m.Image = strings.TrimSpace(m.Image)
	m.AvailabilityTime = strings.TrimSpace(m.AvailabilityTime)
}

// Validate checks the required fields: reference, name, category and a non
// negative price.
func (m *MenuItem) Validate() error {
	var missing []string
	if m.Reference == "" {
		missing = append(missing, "reference")
	}
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidItem, strings.Join(missing, ", "))
	}
	if m.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidItem)
	}
	if m.AvailabilityTime != "" {
		if _, err := time.Parse("15:04", m.AvailabilityTime); err != nil {
			return fmt.Errorf("%w: availability time %q", ErrInvalidItem, m.AvailabilityTime)
		}
	}
	return nil
}

// AvailableAt reports whether the item can be served at an "HH:MM" event time.
func (m *MenuItem) AvailableAt(eventTime string) bool {
	return m.AvailabilityTime == "" || eventTime >= m.AvailabilityTime
}
