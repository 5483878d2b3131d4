package menu

// Document locations in the store.
const (
	SettingsCollection = "settings"
	UsersCollection    = "users"

	HomepageTextDocID        = "homepage_text"
	ExternalSubscribersDocID = "external_newsletter_subscribers"
)

// MenuSection is one titled block of a daily menu.
type MenuSection struct {
	Title     string   `json:"title"`
	Lines     []string `json:"lines"`
	IsVisible bool     `json:"isVisible"`
}

// MenuRecord is the daily menu of one outlet as edited in the back office.
type MenuRecord struct {
	ID          Outlet        `json:"id"`
	Image       string        `json:"image"`
	Date        string        `json:"date"`
	Hours       string        `json:"horaires"`
	Sections    []MenuSection `json:"sections"`
	FooterLines []string      `json:"footerLines"`
}

// VisibleSections returns the sections flagged visible, in order.
func (m *MenuRecord) VisibleSections() []MenuSection {
	out := make([]MenuSection, 0, len(m.Sections))
	for _, s := range m.Sections {
		if s.IsVisible {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy so callers can strip lines without touching the
// stored record.
func (m *MenuRecord) Clone() *MenuRecord {
	c := *m
	c.Sections = make([]MenuSection, len(m.Sections))
	for i, s := range m.Sections {
		s.Lines = append([]string(nil), s.Lines...)
		c.Sections[i] = s
	}
	c.FooterLines = append([]string(nil), m.FooterLines...)
	return &c
}

// HomepageText is the shared settings document holding every outlet menu.
type HomepageText struct {
	Menus []MenuRecord `json:"menus"`
}

// Find returns the menu with the given outlet id.
func (h *HomepageText) Find(o Outlet) (*MenuRecord, bool) {
	for i := range h.Menus {
		if h.Menus[i].ID == o {
			return &h.Menus[i], true
		}
	}
	return nil, false
}

// Upsert replaces the menu with the same id or appends it.
func (h *HomepageText) Upsert(rec MenuRecord) {
	for i := range h.Menus {
		if h.Menus[i].ID == rec.ID {
			h.Menus[i] = rec
			return
		}
	}
	h.Menus = append(h.Menus, rec)
}

// ExternalSubscribers is the manually curated address list, one array per
// outlet.
type ExternalSubscribers struct {
	Mamita       []string `json:"mamita"`
	BoutiqueCafe []string `json:"boutiqueCafe"`
}

// List returns the addresses for the outlet. Never nil.
func (e *ExternalSubscribers) List(o Outlet) []string {
	var l []string
	if o == Mamita {
		l = e.Mamita
	} else {
		l = e.BoutiqueCafe
	}
	if l == nil {
		return []string{}
	}
	return l
}

// Set replaces the address list for the outlet.
func (e *ExternalSubscribers) Set(o Outlet, list []string) {
	if o == Mamita {
		e.Mamita = list
		return
	}
	e.BoutiqueCafe = list
}

// User is the subset of a registered user document the service reads.
type User struct {
	Email string `json:"email"`
}

// DefaultMenu is the empty template shown before an outlet menu was saved.
func DefaultMenu(o Outlet) MenuRecord {
	section := func(title string, n int) MenuSection {
		return MenuSection{Title: title, Lines: make([]string, n), IsVisible: true}
	}
	return MenuRecord{
		ID:    o,
		Date:  "",
		Hours: "Du Lundi au Vendredi : de 7h à 14h",
		Sections: []MenuSection{
			section("Entrée", 4),
			section("Plat chaud", 4),
			section("Accompagnement", 2),
			section("Dessert", 4),
			section("Boisson", 4),
		},
		FooterLines: make([]string, 3),
	}
}
