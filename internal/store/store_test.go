package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/events"
	apperrors "github.com/jafarshop/larek/pkg/errors"
)

// ============================================================================
// Test helpers
// ============================================================================

func price(v float64) *float64 { return &v }

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: "a", Title: "Alpha", Price: price(100)},
		{ID: "b", Title: "Beta", Price: nil},
		{ID: "c", Title: "Gamma", Price: price(50)},
	}
}

// recorder captures every event emitted on the bus
type recorder struct {
	events []events.Event
}

func (r *recorder) count(name events.Name) int {
	n := 0
	for _, e := range r.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

func (r *recorder) last(name events.Name) (events.Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return events.Event{}, false
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *recorder) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	bus := events.NewBus(logger)
	rec := &recorder{}
	bus.SubscribeAll(func(ctx context.Context, e events.Event) { rec.events = append(rec.events, e) })
	s := New(bus, logger, opts...)
	require.NoError(t, s.SetCatalog(context.Background(), testCatalog()))
	rec.events = nil
	return s, rec
}

func basketIDs(s *Store) []string {
	ids := []string{}
	for _, p := range s.BasketItems() {
		ids = append(ids, p.ID)
	}
	return ids
}

// ============================================================================
// Catalog / Preview Tests
// ============================================================================

func TestSetCatalog_EmitsItemsChanged(t *testing.T) {
	s, rec := newTestStore(t)
	ctx := context.Background()

	next := []domain.Product{{ID: "z", Price: price(1)}}
	require.NoError(t, s.SetCatalog(ctx, next))

	ev, ok := rec.last(events.ItemsChanged)
	require.True(t, ok)
	assert.Equal(t, events.CatalogChangedPayload{Catalog: next}, ev.Payload)
	assert.Equal(t, next, s.Catalog())
}

func TestSetCatalog_DropsStalePreview(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPreview(ctx, testCatalog()[0]))
	_, ok := s.Preview()
	require.True(t, ok)

	require.NoError(t, s.SetCatalog(ctx, testCatalog()[1:]))
	_, ok = s.Preview()
	assert.False(t, ok)
}

func TestSetCatalog_KeepsPreviewStillInCatalog(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPreview(ctx, testCatalog()[2]))
	require.NoError(t, s.SetCatalog(ctx, testCatalog()))

	p, ok := s.Preview()
	require.True(t, ok)
	assert.Equal(t, "c", p.ID)
}

func TestSetCatalog_PrunesBasket(t *testing.T) {
	s, rec := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "c", true))
	rec.events = nil

	require.NoError(t, s.SetCatalog(ctx, testCatalog()[1:]))
	assert.Equal(t, []string{"c"}, basketIDs(s))
	assert.Equal(t, []string{"c"}, s.Order().Items)
	assert.Equal(t, 1, rec.count(events.BasketChanged))
}

func TestSetCatalog_PrunesSeveralOrphansInStrictMode(t *testing.T) {
	s, rec := newTestStore(t, WithStrictInvariants(true))
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "c", true))
	s.bus.On(events.BasketChanged, func(context.Context, events.Event) { s.BasketTotal() })
	rec.events = nil

	require.NotPanics(t, func() {
		require.NoError(t, s.SetCatalog(ctx, testCatalog()[1:2]))
	})
	assert.Empty(t, s.Order().Items)
	assert.Equal(t, 2, rec.count(events.BasketChanged))
}

func TestSetPreview_EmitsProduct(t *testing.T) {
	s, rec := newTestStore(t)
	product := testCatalog()[0]

	require.NoError(t, s.SetPreview(context.Background(), product))

	ev, ok := rec.last(events.PreviewChanged)
	require.True(t, ok)
	assert.Equal(t, product, ev.Payload)
}

func TestSetLoading(t *testing.T) {
	s, rec := newTestStore(t)

	require.NoError(t, s.SetLoading(context.Background(), true))
	assert.True(t, s.Loading())
	ev, ok := rec.last(events.LoadingChanged)
	require.True(t, ok)
	assert.Equal(t, true, ev.Payload)
}

// ============================================================================
// Basket Tests
// ============================================================================

func TestBasket_Scenario(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "c", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	assert.Equal(t, []string{"a", "c"}, basketIDs(s), "catalog order, not insertion order")
	assert.Equal(t, float64(150), s.BasketTotal())

	err := s.ToggleBasketMembership(ctx, "b", true)
	var notForSale *apperrors.ErrNotPurchasable
	require.True(t, errors.As(err, &notForSale))
	assert.Equal(t, []string{"a", "c"}, basketIDs(s))
	assert.Equal(t, float64(150), s.BasketTotal())

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", false))
	assert.Equal(t, []string{"c"}, basketIDs(s))
	assert.Equal(t, float64(50), s.BasketTotal())

	require.NoError(t, s.ClearBasket(ctx))
	assert.Empty(t, basketIDs(s))
	assert.Equal(t, float64(0), s.BasketTotal())
}

func TestToggle_DeduplicatesInserts(t *testing.T) {
	s, rec := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))

	assert.Equal(t, []string{"a"}, s.Order().Items)
	assert.Equal(t, 1, s.BasketCount())
	assert.True(t, s.IsInBasket("a"))
	assert.False(t, s.IsInBasket("c"))
	assert.Equal(t, 2, rec.count(events.BasketChanged))
}

func TestToggle_RoundTripRestoresTotal(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "c", true))
	before := s.BasketTotal()

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "a", false))
	assert.Equal(t, before, s.BasketTotal())
}

func TestToggle_RejectsPricelessWithoutEvent(t *testing.T) {
	s, rec := newTestStore(t)

	err := s.ToggleBasketMembership(context.Background(), "b", true)
	require.Error(t, err)
	assert.Equal(t, 0, rec.count(events.BasketChanged))
	assert.Equal(t, 0, s.BasketCount())
	assert.Equal(t, float64(0), s.BasketTotal())
}

func TestToggle_RejectsUnknownProduct(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.ToggleBasketMembership(context.Background(), "nope", true)
	var notFound *apperrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "nope", notFound.ID)
}

func TestClearBasket_EmitsPerItem(t *testing.T) {
	s, rec := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "c", true))
	rec.events = nil

	require.NoError(t, s.ClearBasket(ctx))
	assert.Equal(t, 2, rec.count(events.BasketChanged))
	assert.Empty(t, s.Order().Items)
}

func TestPrepareOrder_ComputesTotal(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.ToggleBasketMembership(ctx, "c", true))

	order := s.PrepareOrder()
	assert.Equal(t, float64(150), order.Total)
	assert.Equal(t, []string{"a", "c"}, order.Items)
}

// ============================================================================
// Invariant Tests
// ============================================================================

func TestBasketItems_OrphanExcludedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	s := New(events.NewBus(logger), logger)
	require.NoError(t, s.SetCatalog(context.Background(), testCatalog()))

	s.order.Items = []string{"a", "ghost"}

	assert.Equal(t, []string{"a"}, basketIDs(s))
	assert.Equal(t, float64(100), s.BasketTotal())
	assert.GreaterOrEqual(t, logs.FilterMessage("Store invariant violated").Len(), 1)
}

func TestBasketItems_OrphanPanicsInStrictMode(t *testing.T) {
	s, _ := newTestStore(t, WithStrictInvariants(true))
	s.order.Items = []string{"ghost"}

	assert.PanicsWithError(t, "invariant violation: basket item ghost has no catalog entry", func() {
		s.BasketTotal()
	})
}

// ============================================================================
// Form Tests
// ============================================================================

func TestValidateOrderStep(t *testing.T) {
	tests := []struct {
		name    string
		payment string
		address string
		valid   bool
		errors  domain.FormErrors
	}{
		{"both missing", "", "", false, domain.FormErrors{domain.FieldPayment: MsgPaymentRequired, domain.FieldAddress: MsgAddressRequired}},
		{"payment missing", "", "x", false, domain.FormErrors{domain.FieldPayment: MsgPaymentRequired}},
		{"address missing", "card", "", false, domain.FormErrors{domain.FieldAddress: MsgAddressRequired}},
		{"valid", "card", "x", true, domain.FormErrors{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStore(t)
			s.order.Payment = tt.payment
			s.order.Address = tt.address

			assert.Equal(t, tt.valid, s.ValidateOrderStep(context.Background()))
			assert.Equal(t, tt.errors, s.FormErrors())

			ev, ok := rec.last(events.OrderFormErrorsChanged)
			require.True(t, ok)
			assert.Equal(t, tt.errors, ev.Payload)
		})
	}
}

func TestValidateContactsStep(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		phone  string
		valid  bool
		errors domain.FormErrors
	}{
		{"email missing", "", "+7", false, domain.FormErrors{domain.FieldEmail: MsgEmailRequired}},
		{"phone missing", "a@b.c", "", false, domain.FormErrors{domain.FieldPhone: MsgPhoneRequired}},
		{"valid", "a@b.c", "+7", true, domain.FormErrors{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStore(t)
			s.order.Email = tt.email
			s.order.Phone = tt.phone

			assert.Equal(t, tt.valid, s.ValidateContactsStep(context.Background()))
			assert.Equal(t, tt.errors, s.FormErrors())
			assert.Equal(t, 1, rec.count(events.ContactsFormErrorsChanged))
		})
	}
}

func TestValidation_ReplacesPreviousErrors(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	assert.False(t, s.ValidateOrderStep(ctx))
	require.Len(t, s.FormErrors(), 2)

	s.order.Email = "a@b.c"
	assert.False(t, s.ValidateContactsStep(ctx))
	assert.Equal(t, domain.FormErrors{domain.FieldPhone: MsgPhoneRequired}, s.FormErrors())
}

func TestSetOrderField_EmitsReadyOnlyWhenValid(t *testing.T) {
	s, rec := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetOrderField(ctx, domain.FieldPayment, "card"))
	assert.Equal(t, 0, rec.count(events.OrderReady))

	require.NoError(t, s.SetOrderField(ctx, domain.FieldAddress, "Moscow"))
	ev, ok := rec.last(events.OrderReady)
	require.True(t, ok)
	order := ev.Payload.(domain.Order)
	assert.Equal(t, "card", order.Payment)
	assert.Equal(t, "Moscow", order.Address)
}

func TestSetOrderField_RejectsContactField(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.SetOrderField(context.Background(), domain.FieldEmail, "a@b.c")
	var invalid *apperrors.ErrInvalidField
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "", s.Order().Email)
}

func TestSetContactsField_EmptyEmailBlocksReady(t *testing.T) {
	s, rec := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetContactsField(ctx, domain.FieldPhone, "+7 900 000 00 00"))
	require.NoError(t, s.SetContactsField(ctx, domain.FieldEmail, ""))

	assert.Equal(t, domain.FormErrors{domain.FieldEmail: "Необходимо указать email"}, s.FormErrors())
	assert.Equal(t, 0, rec.count(events.ContactsReady))

	require.NoError(t, s.SetContactsField(ctx, domain.FieldEmail, "a@b.c"))
	assert.Equal(t, 1, rec.count(events.ContactsReady))
}

func TestSetContactsField_RejectsOrderField(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.SetContactsField(context.Background(), domain.FieldAddress, "x")
	require.Error(t, err)
}

// ============================================================================
// CompleteOrder Tests
// ============================================================================

func fillOrder(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.ToggleBasketMembership(ctx, "a", true))
	require.NoError(t, s.SetOrderField(ctx, domain.FieldPayment, "card"))
	require.NoError(t, s.SetOrderField(ctx, domain.FieldAddress, "Moscow"))
	require.NoError(t, s.SetContactsField(ctx, domain.FieldEmail, "a@b.c"))
	require.NoError(t, s.SetContactsField(ctx, domain.FieldPhone, "+7"))
}

func TestCompleteOrder_ResetsEverything(t *testing.T) {
	s, _ := newTestStore(t)
	fillOrder(t, s)
	s.PrepareOrder()

	require.NoError(t, s.CompleteOrder(context.Background()))
	assert.Equal(t, domain.Order{Items: []string{}}, s.Order())
	assert.Empty(t, s.FormErrors())
}

func TestCompleteOrder_RetainsContacts(t *testing.T) {
	s, _ := newTestStore(t, WithRetainedContacts(true))
	fillOrder(t, s)
	s.PrepareOrder()

	require.NoError(t, s.CompleteOrder(context.Background()))
	order := s.Order()
	assert.Empty(t, order.Items)
	assert.Equal(t, float64(0), order.Total)
	assert.Equal(t, "card", order.Payment)
	assert.Equal(t, "Moscow", order.Address)
	assert.Equal(t, "a@b.c", order.Email)
	assert.Equal(t, "+7", order.Phone)
}
