package newsletter_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lemamita/mamita/internal/llm"
	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
	"github.com/lemamita/mamita/internal/store"
	"github.com/lemamita/mamita/pkg/mailer"
	"github.com/lemamita/mamita/pkg/mailer/smtp"
)

func validConfig() smtp.Config {
	return smtp.Config{
		Host:        "smtp.example.com",
		Port:        465,
		Username:    "user",
		Password:    "secret",
		FromAddress: "news@lemamita.fr",
	}
}

// countingStore records how often each repository method is called.
type countingStore struct {
	store.Documents
	mu    sync.Mutex
	calls map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{Documents: store.NewMemory(), calls: map[string]int{}}
}

func (c *countingStore) count(name string) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}

func (c *countingStore) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *countingStore) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingStore) Get(ctx context.Context, collection, id string, dst any) error {
	c.count("Get")
	return c.Documents.Get(ctx, collection, id, dst)
}

func (c *countingStore) QueryEmails(ctx context.Context, collection, field string) ([]string, error) {
	c.count("QueryEmails")
	return c.Documents.QueryEmails(ctx, collection, field)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *mailer.Email) error {
	return m.Called(ctx, email).Error(0)
}

type MockFormatter struct {
	mock.Mock
}

func (m *MockFormatter) Format(ctx context.Context, req newsletter.FormatRequest) (*newsletter.Content, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*newsletter.Content)
	return c, args.Error(1)
}

// echoGenerator answers like a model that copies every section verbatim,
// visible or not, without touching prices.
type echoGenerator struct {
	mu       sync.Mutex
	requests []llm.Request
	subject  string
	menu     *menu.MenuRecord
}

func (g *echoGenerator) Name() string { return "echo" }

func (g *echoGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	out := newsletter.Content{Subject: g.subject}
	for _, s := range g.menu.Sections {
		out.Sections = append(out.Sections, newsletter.Section{Title: s.Title, Lines: s.Lines})
	}
	data, err := json.Marshal(out)
	return string(data), err
}

func seedMenu(t *testing.T, docs store.Documents, recs ...menu.MenuRecord) {
	t.Helper()
	require.NoError(t, docs.Put(context.Background(), menu.SettingsCollection, menu.HomepageTextDocID, menu.HomepageText{Menus: recs}))
}

func seedExternal(t *testing.T, docs store.Documents, ext menu.ExternalSubscribers) {
	t.Helper()
	require.NoError(t, docs.Put(context.Background(), menu.SettingsCollection, menu.ExternalSubscribersDocID, ext))
}

func seedUser(t *testing.T, docs store.Documents, id string, doc map[string]any) {
	t.Helper()
	require.NoError(t, docs.Put(context.Background(), menu.UsersCollection, id, doc))
}

func sampleMenu() menu.MenuRecord {
	return menu.MenuRecord{
		ID:    menu.Mamita,
		Image: "https://cdn.lemamita.fr/logo.png",
		Date:  "Lundi 3 mars",
		Hours: "7h - 14h",
		Sections: []menu.MenuSection{
			{Title: "Entrée", Lines: []string{"Soupe 5.00€", "  "}, IsVisible: true},
			{Title: "Dessert", Lines: []string{"Tarte"}, IsVisible: false},
		},
		FooterLines: []string{"Bon appétit à tous", "Réservations au 01 23 45 67 89", ""},
	}
}
