package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"vitrine/internal/cache"
	"vitrine/internal/domain"
	"vitrine/internal/logger"
	"vitrine/internal/repository/pushsub"
	"vitrine/internal/service/authrelay"
	"vitrine/internal/service/catalog"
	"vitrine/internal/service/checkout"
	"vitrine/internal/service/insights"
	"vitrine/internal/service/push"
	"vitrine/internal/service/session"
)

// fakeBackend answers every backend call the router's services make.
type fakeBackend struct {
	mu sync.Mutex

	store       domain.Store
	products    []domain.Product
	additionals []domain.Additional
	productCall int

	orders      map[string]domain.OrderStatus
	submitted   []domain.CheckoutRequest
	checkoutErr error

	user      domain.User
	token     string
	threads   []domain.Thread
	messages  []domain.Message
	inventory []domain.InventoryItem
	pushed    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		store: domain.Store{
			ID:             "store-1",
			Slug:           "shop",
			Name:           "Shop",
			Currency:       "BRL",
			IsOpen:         true,
			Modules:        map[string]bool{"whatsapp": true},
			PaymentMethods: []domain.PaymentMethod{{ID: "pix", Label: "Pix", Enabled: true}},
		},
		products: []domain.Product{
			{
				ID:                 "pizza",
				Name:               "Pizza",
				PriceCents:         1000,
				AdditionalsEnabled: true,
				AdditionalIDs:      []string{"cheese", "bacon"},
				Availability:       domain.AvailabilityAvailable,
			},
			{ID: "soda", Name: "Soda", PriceCents: 500, Availability: domain.AvailabilityAvailable},
			{ID: "cake", Name: "Custom cake", IsCustom: true, Availability: domain.AvailabilityAvailable},
			{ID: "wine", Name: "Wine", PriceCents: 9000, Availability: domain.AvailabilityContactToOrder},
		},
		additionals: []domain.Additional{
			{ID: "cheese", Name: "Cheese", PriceCents: 200, IsActive: true, DisplayOrder: 1},
			{ID: "bacon", Name: "Bacon", PriceCents: 300, IsActive: true, DisplayOrder: 2},
		},
		orders: map[string]domain.OrderStatus{},
		user:   domain.User{ID: "user-1", Name: "Ana", Email: "ana@example.com", StoreSlug: "shop"},
	}
}

func (f *fakeBackend) GetStore(_ context.Context, slug string) (domain.Store, error) {
	if slug != f.store.Slug {
		return domain.Store{}, domain.ErrNotFound
	}
	return f.store, nil
}

func (f *fakeBackend) ListProducts(context.Context, string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.productCall++
	return f.products, nil
}

func (f *fakeBackend) ListAdditionals(context.Context, string) ([]domain.Additional, error) {
	return f.additionals, nil
}

func (f *fakeBackend) SubmitCheckout(_ context.Context, _ string, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	if f.checkoutErr != nil {
		return domain.CheckoutResult{}, f.checkoutErr
	}
	f.submitted = append(f.submitted, req)
	return domain.CheckoutResult{OrderID: "order-1", Status: "pending"}, nil
}

func (f *fakeBackend) GetOrderStatus(_ context.Context, _, orderID string) (domain.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.orders[orderID]
	if !ok {
		return domain.OrderStatus{}, domain.ErrNotFound
	}
	return st, nil
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (string, domain.User, error) {
	if email != f.user.Email || password != "secret" {
		return "", domain.User{}, domain.ErrUnauthorized
	}
	return f.token, f.user, nil
}

func (f *fakeBackend) Me(context.Context, string) (domain.User, error) {
	return f.user, nil
}

func (f *fakeBackend) GetSettings(context.Context, string, string) (domain.StoreSettings, error) {
	return domain.StoreSettings{PaymentMethods: f.store.PaymentMethods}, nil
}

func (f *fakeBackend) UpdateSettings(_ context.Context, _, _ string, s domain.StoreSettings) (domain.StoreSettings, error) {
	return s, nil
}

func (f *fakeBackend) ListInventory(context.Context, string, string) ([]domain.InventoryItem, error) {
	return f.inventory, nil
}

func (f *fakeBackend) UpdateInventory(_ context.Context, _, _, productID string, upd domain.InventoryUpdate) (domain.InventoryItem, error) {
	item := domain.InventoryItem{ProductID: productID, Availability: domain.AvailabilityAvailable}
	if upd.Availability != nil {
		item.Availability = *upd.Availability
	}
	return item, nil
}

func (f *fakeBackend) ListThreads(context.Context, string, string) ([]domain.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Thread(nil), f.threads...), nil
}

func (f *fakeBackend) ListMessages(_ context.Context, _, _, threadID string) ([]domain.Message, error) {
	if threadID != "t1" {
		return nil, domain.ErrNotFound
	}
	return f.messages, nil
}

func (f *fakeBackend) SendMessage(_ context.Context, _, _, threadID, body string) (domain.Message, error) {
	return domain.Message{ID: "m9", ThreadID: threadID, Direction: "outbound", Body: body}, nil
}

func (f *fakeBackend) GetInsightsSummary(context.Context, string, string, string) (domain.InsightsSummary, error) {
	return domain.InsightsSummary{RevenueCents: 10000, Orders: 4}, nil
}

func (f *fakeBackend) GetDailyRevenue(context.Context, string, string, string) ([]domain.DailyRevenue, error) {
	return nil, nil
}

func (f *fakeBackend) GetTopProducts(context.Context, string, string, string) ([]domain.TopProduct, error) {
	return nil, nil
}

func (f *fakeBackend) SendPush(_ context.Context, _, _ string, sub domain.PushSubscription, _ domain.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, sub.Endpoint)
	return nil
}

type testEnv struct {
	backend  *fakeBackend
	sessions *session.Registry
	push     *push.Service
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fb := newFakeBackend()
	fb.token = signedToken(t, time.Now().Add(time.Hour))
	deps := minimalDeps(fb)
	deps.Options = Options{
		OrderPollInterval:        10 * time.Millisecond,
		ThreadsPollInterval:      10 * time.Millisecond,
		ConversationPollInterval: 10 * time.Millisecond,
	}
	env := &testEnv{
		backend:  fb,
		sessions: deps.Sessions,
		push:     deps.Push.(*push.Service),
	}
	router, err := buildRouter(logger.Nop(), nil, deps, context.Background())
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	env.router = router
	return env
}

func minimalDeps(fb *fakeBackend) Deps {
	return Deps{
		Catalog:  catalog.New(fb, cache.NewMemory(), time.Minute),
		Checkout: checkout.New(fb),
		Orders:   fb,
		Auth:     authrelay.New(fb, time.Hour),
		Merchant: fb,
		Insights: insights.New(fb),
		Push:     push.New(pushsub.NewMemory(), fb),
		Sessions: session.NewRegistry(time.Hour),
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// client replays cookies between requests like a browser would.
type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, router: e.router, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(method, path, body string) *httptest.ResponseRecorder {
	cl.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return cl.send(req)
}

func (cl *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.router.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

type apiError struct {
	Error errorBody `json:"error"`
}
