package menu

// Outlet identifies one of the two points of sale. The value doubles as the
// id of the outlet's MenuRecord inside the homepage settings document.
type Outlet string

const (
	Mamita       Outlet = "menu_1"
	BoutiqueCafe Outlet = "menu_2"
)

// Outlets returns every known outlet in display order.
func Outlets() []Outlet {
	return []Outlet{Mamita, BoutiqueCafe}
}

// ParseOutlet validates a raw outlet identifier.
func ParseOutlet(s string) (Outlet, error) {
	switch o := Outlet(s); o {
	case Mamita, BoutiqueCafe:
		return o, nil
	default:
		return "", ErrUnknownOutlet
	}
}

// DisplayName is the public name used as email sender name and in subjects.
func (o Outlet) DisplayName() string {
	if o == Mamita {
		return "Le Mamita"
	}
	return "La Boutique Café"
}

// SubscriptionField is the boolean field set on user documents that opted in
// to this outlet's newsletter.
func (o Outlet) SubscriptionField() string {
	if o == Mamita {
		return "newsletterMamita"
	}
	return "newsletterBoutiqueCafe"
}

// ExternalListKey is the key of the outlet's array in the external
// subscribers document.
func (o Outlet) ExternalListKey() string {
	if o == Mamita {
		return "mamita"
	}
	return "boutiqueCafe"
}

func (o Outlet) String() string { return string(o) }
