package ordering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"table-order-api/dbtest"
	"table-order-api/models"
	"table-order-api/repository"
	"table-order-api/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// orderedAt falls inside the 10% schedule entry.
var orderedAt = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	orders   *repository.OrderRepository
	sessions *repository.SessionRepository
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Seeded(t)
	f := &fixture{
		db:       db,
		orders:   repository.NewOrderRepository(db),
		sessions: repository.NewSessionRepository(db),
		now:      orderedAt,
	}
	f.svc = f.service(f.orders)
	return f
}

func (f *fixture) service(orders OrderStore) *Service {
	return NewService(Deps{
		Sessions: f.sessions,
		Catalog:  repository.NewProductRepository(f.db),
		Taxes:    repository.NewTaxRateRepository(f.db),
		Orders:   orders,
		Clock:    func() time.Time { return f.now },
	})
}

func (f *fixture) openSession(t *testing.T, ttl time.Duration) *models.Session {
	t.Helper()
	table, err := repository.NewTableRepository(f.db).FindActiveByToken(context.Background(), "ital-window-1")
	require.NoError(t, err)
	session, err := f.sessions.Create(context.Background(), table, ttl, f.now, repository.SessionMeta{UserAgent: "test"})
	require.NoError(t, err)
	return session
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestCreateOrderSingleProduct(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)

	res, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "espresso-x2",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)

	order := res.Order
	assert.Equal(t, "960.00", order.Subtotal.String())
	assert.Equal(t, "96.00", order.Tax.String())
	assert.Equal(t, "1056.00", order.Total.String())
	assert.Equal(t, "B1", order.TableNo)
	assert.Equal(t, session.ID, order.SessionID)
	assert.Equal(t, models.StatusUnpaid, order.Status)
	assert.Equal(t, "ORD_20250601_001", order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "480.00", order.Items[0].UnitPrice.String())
	assert.Equal(t, "960.00", order.Items[0].TotalPrice.String())
}

func TestCreateOrderToppingsSnapshot(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)

	res, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "latte-toppings",
		Items: []ItemRequest{{
			ProductID: seed.ProductLatte,
			Quantity:  2,
			Toppings:  []string{seed.ToppingOatMilk, seed.ToppingExtraShot},
		}},
	})
	require.NoError(t, err)

	item := res.Order.Items[0]
	assert.Equal(t, "720.00", item.UnitPrice.String())
	assert.Equal(t, "1440.00", item.TotalPrice.String())
	require.Len(t, item.Toppings, 2)
	assert.Equal(t, seed.ToppingOatMilk, item.Toppings[0].ToppingID)
	assert.Equal(t, seed.ToppingExtraShot, item.Toppings[1].ToppingID)
	assert.Equal(t, 2, item.Toppings[0].Quantity)
	assert.Equal(t, "60.00", item.Toppings[0].UnitPrice.String())
}

func TestCreateOrderBrunchSet(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)

	res, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "brunch-salad",
		Items: []ItemRequest{{
			ProductID:  seed.ProductBrunchSet,
			Quantity:   1,
			Components: []ComponentRequest{{ProductID: seed.ProductSalad, Quantity: 1}},
		}},
	})
	require.NoError(t, err)

	order := res.Order
	assert.Equal(t, "1330.00", order.Subtotal.String())
	assert.Equal(t, "133.00", order.Tax.String())
	assert.Equal(t, "1463.00", order.Total.String())

	require.Len(t, order.Items, 1)
	parent := order.Items[0]
	assert.Equal(t, "1280.00", parent.TotalPrice.String())
	assert.Nil(t, parent.ParentItemID)

	byProduct := map[string]models.OrderItem{}
	for _, c := range parent.Components {
		require.NotNil(t, c.ParentItemID)
		assert.Equal(t, parent.ID, *c.ParentItemID)
		byProduct[c.ProductID] = c
	}
	require.Contains(t, byProduct, seed.ProductSalad)
	assert.Equal(t, "50.00", byProduct[seed.ProductSalad].TotalPrice.String())
	require.Contains(t, byProduct, seed.ProductLatte)
	assert.Equal(t, 1, byProduct[seed.ProductLatte].Quantity)
	assert.True(t, byProduct[seed.ProductLatte].TotalPrice.IsZero())
}

func TestCreateOrderSetQuantityScalesComponents(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)

	res, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "brunch-x3",
		Items: []ItemRequest{{
			ProductID: seed.ProductBrunchSet,
			Quantity:  3,
			Components: []ComponentRequest{
				{ProductID: seed.ProductHerbTea, Quantity: 1, Toppings: []string{seed.ToppingHoney}},
			},
		}},
	})
	require.NoError(t, err)

	parent := res.Order.Items[0]
	subtotal := parent.TotalPrice
	for _, c := range parent.Components {
		assert.Equal(t, 3, c.Quantity, c.ProductID)
		subtotal = subtotal.Add(c.TotalPrice)
		if c.ProductID == seed.ProductHerbTea {
			require.Len(t, c.Toppings, 1)
			assert.Equal(t, 3, c.Toppings[0].Quantity)
			assert.Equal(t, "210.00", c.TotalPrice.String())
		}
	}
	assert.True(t, subtotal.Equal(res.Order.Subtotal))
}

func TestCreateOrderTaxFollowsSchedule(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	session := f.openSession(t, time.Hour)

	res, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "after-revision",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "52.80", res.Order.Tax.String())
	assert.Equal(t, "532.80", res.Order.Total.String())
}

func TestCreateOrderValidationErrorsLeaveNoRows(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)

	tests := []struct {
		name  string
		items []ItemRequest
		key   string
		code  Code
	}{
		{"missing key", []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 1}}, "", CodeInvalidRequest},
		{"no items", nil, "k-empty", CodeInvalidRequest},
		{"zero quantity", []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 0}}, "k-zero", CodeInvalidRequest},
		{"unknown product", []ItemRequest{{ProductID: "prod-ghost", Quantity: 1}}, "k-ghost", CodeInvalidProduct},
		{"topping not allowed", []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 1, Toppings: []string{seed.ToppingHoney}}}, "k-topping", CodeInvalidTopping},
		{"component above max", []ItemRequest{{
			ProductID:  seed.ProductBrunchSet,
			Quantity:   1,
			Components: []ComponentRequest{{ProductID: seed.ProductSalad, Quantity: 2}},
		}}, "k-max", CodeInvalidComponent},
		{"component outside set", []ItemRequest{{
			ProductID:  seed.ProductBrunchSet,
			Quantity:   1,
			Components: []ComponentRequest{{ProductID: seed.ProductEspresso, Quantity: 1}},
		}}, "k-outside", CodeInvalidComponent},
		{"one bad line fails the order", []ItemRequest{
			{ProductID: seed.ProductEspresso, Quantity: 1},
			{ProductID: "prod-ghost", Quantity: 1},
		}, "k-mixed", CodeInvalidProduct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
				SessionToken:   session.Token,
				IdempotencyKey: tt.key,
				Items:          tt.items,
			})
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
	assert.Zero(t, f.countOrders(t))
}

func TestCreateOrderUnavailableProduct(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", seed.ProductPanini).Update("is_available", false).Error)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "panini-off",
		Items:          []ItemRequest{{ProductID: seed.ProductPanini, Quantity: 1}},
	})
	assert.Equal(t, CodeInvalidProduct, CodeOf(err))

	// the panini is also the brunch default main
	_, err = f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "brunch-panini-off",
		Items:          []ItemRequest{{ProductID: seed.ProductBrunchSet, Quantity: 1}},
	})
	assert.Equal(t, CodeInvalidComponent, CodeOf(err))
}

func TestCreateOrderInvalidSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   "no-such-token",
		IdempotencyKey: "k",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 1}},
	})
	assert.Equal(t, CodeInvalidSession, CodeOf(err))
}

func TestCreateOrderExpiresStaleSession(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, 30*time.Minute)
	f.now = f.now.Add(31 * time.Minute)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "late",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 1}},
	})
	assert.Equal(t, CodeInvalidSession, CodeOf(err))

	stored, err := f.sessions.FindByToken(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, models.SessionExpired, stored.Status)
	assert.Zero(t, f.countOrders(t))
}

func TestCreateOrderReplaysSameKey(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)
	in := CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "retry-me",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 2}},
	}

	first, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	// a retry with different content still returns the original order
	in.Items[0].Quantity = 5
	second, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, first.Order.OrderNumber, second.Order.OrderNumber)
	assert.Equal(t, "1056.00", second.Order.Total.String())
	assert.EqualValues(t, 1, f.countOrders(t))
}

// raceStore hides the existing order from the first pre-check so the unique
// index has to settle the duplicate.
type raceStore struct {
	*repository.OrderRepository
	mu      sync.Mutex
	checked bool
}

func (s *raceStore) FindIDByIdempotencyKey(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	first := !s.checked
	s.checked = true
	s.mu.Unlock()
	if first {
		return "", repository.ErrNotFound
	}
	return s.OrderRepository.FindIDByIdempotencyKey(ctx, key)
}

func TestCreateOrderLostRaceReturnsWinner(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)
	in := CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "raced",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 2}},
	}
	winner, err := f.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	loser := f.service(&raceStore{OrderRepository: f.orders})
	res, err := loser.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, res.Replayed)
	assert.Equal(t, winner.Order.ID, res.Order.ID)
	assert.EqualValues(t, 1, f.countOrders(t))
}

func TestCreateOrderConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)
	in := CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "double-tap",
		Items:          []ItemRequest{{ProductID: seed.ProductLatte, Quantity: 1, Toppings: []string{seed.ToppingOatMilk}}},
	}

	const n = 8
	results := make([]*Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.CreateOrder(context.Background(), in)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Order.ID, results[i].Order.ID)
		assert.Equal(t, "704.00", results[i].Order.Total.String())
		if !results[i].Replayed {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.EqualValues(t, 1, f.countOrders(t))
}

type failingWriter struct {
	*repository.OrderRepository
}

func (failingWriter) Create(context.Context, *models.Order) error {
	return errors.New("disk full")
}

func TestCreateOrderPersistenceFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	session := f.openSession(t, time.Hour)

	svc := f.service(failingWriter{OrderRepository: f.orders})
	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionToken:   session.Token,
		IdempotencyKey: "doomed",
		Items:          []ItemRequest{{ProductID: seed.ProductEspresso, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Empty(t, CodeOf(err))
}
