// Package storefront composes one visitor session: it builds the bus, the
// store and the views, and declares which handler reacts to which event.
package storefront

import (
	"context"
	stderrors "errors"
	"html/template"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/events"
	"github.com/jafarshop/larek/internal/metrics"
	"github.com/jafarshop/larek/internal/repository"
	"github.com/jafarshop/larek/internal/store"
	"github.com/jafarshop/larek/internal/view"
	"github.com/jafarshop/larek/pkg/errors"
)

// Banner texts shown above the gallery
const (
	BannerCatalogFailed = "Не удалось загрузить каталог. Попробуйте обновить страницу."
	BannerOrderFailed   = "Не удалось оформить заказ. Попробуйте ещё раз."
)

// CatalogClient is the remote API as seen by a session
type CatalogClient interface {
	GetProductList(ctx context.Context) ([]domain.Product, error)
	PostOrder(ctx context.Context, order domain.Order) (*domain.OrderResult, error)
}

// screen is the rendered state of the page between requests
type screen struct {
	catalog  []template.HTML
	counter  int
	locked   bool
	loading  bool
	banner   string
	basket   view.BasketProps
	order    view.OrderFormProps
	contacts view.ContactsFormProps
	success  view.SuccessProps

	modalOpen bool
	modal     func() (template.HTML, error)
}

// Shop is one visitor session
type Shop struct {
	ID uuid.UUID

	mu      sync.Mutex
	bus     *events.Bus
	store   *store.Store
	client  CatalogClient
	journal repository.OrderJournal
	logger  *zap.Logger
	stage   domain.Stage
	screen  screen
	loaded  bool
	failure error

	// unix nanos, read by the sweeper without waiting on mu
	lastSeen atomic.Int64
}

// NewShop builds a session and subscribes its handlers
func NewShop(id uuid.UUID, client CatalogClient, journal repository.OrderJournal, logger *zap.Logger, opts ...store.Option) *Shop {
	logger = logger.With(zap.String("session_id", id.String()))
	bus := events.NewBus(logger)

	s := &Shop{
		ID:      id,
		bus:     bus,
		store:   store.New(bus, logger, opts...),
		client:  client,
		journal: journal,
		logger:  logger,
		stage:   domain.StageCatalog,
	}
	s.touch()
	s.subscribe()
	return s
}

func (s *Shop) subscribe() {
	s.bus.SubscribeAll(func(_ context.Context, e events.Event) {
		metrics.EventsEmittedTotal.WithLabelValues(metricLabel(e.Name)).Inc()
		s.logger.Debug("Event emitted", zap.String("event", string(e.Name)))
	})

	s.bus.On(events.ItemsChanged, s.onItemsChanged)
	s.bus.On(events.LoadingChanged, s.onLoadingChanged)
	s.bus.On(events.CardSelect, s.onCardSelect)
	s.bus.On(events.PreviewChanged, s.onPreviewChanged)
	s.bus.On(events.PreviewToggle, s.onPreviewToggle)
	s.bus.On(events.BasketChanged, s.onBasketChanged)
	s.bus.On(events.BasketOpen, s.onBasketOpen)
	s.bus.On(events.BasketRemove, s.onBasketRemove)
	s.bus.On(events.OrderOpen, s.onOrderOpen)
	s.bus.Subscribe(events.FieldChanges(domain.StepOrder), s.onOrderFieldChange)
	s.bus.On(events.OrderFormErrorsChanged, s.onOrderFormErrors)
	s.bus.On(events.OrderSubmit, s.onOrderSubmit)
	s.bus.Subscribe(events.FieldChanges(domain.StepContacts), s.onContactsFieldChange)
	s.bus.On(events.ContactsFormErrorsChanged, s.onContactsFormErrors)
	s.bus.On(events.ContactsSubmit, s.onContactsSubmit)
	s.bus.On(events.ModalOpen, s.onModalOpen)
	s.bus.On(events.ModalClose, s.onModalClose)
}

// field-change names carry the field, so they are folded per form
func metricLabel(name events.Name) string {
	for _, step := range []domain.Step{domain.StepOrder, domain.StepContacts} {
		if events.FieldChanges(step).Match(name) {
			return string(step) + ".*:change"
		}
	}
	return string(name)
}

// Load fetches the catalog unless it was already loaded. force reloads it.
func (s *Shop) Load(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.loaded && !force {
		return nil
	}

	s.failure = nil
	defer func() { s.failure = nil }()

	if err := s.store.SetLoading(ctx, true); err != nil {
		return err
	}
	products, err := s.client.GetProductList(ctx)
	if lerr := s.store.SetLoading(ctx, false); lerr != nil {
		return lerr
	}
	if err != nil {
		s.logger.Error("Failed to load catalog", zap.Error(err))
		s.screen.banner = BannerCatalogFailed
		return err
	}

	if err := s.store.SetCatalog(ctx, products); err != nil {
		return err
	}
	if s.failure != nil {
		return s.failure
	}
	s.loaded = true
	s.logger.Info("Catalog loaded", zap.Int("products", len(products)))
	return nil
}

// Dispatch emits a user intent and returns the first error a handler recorded
func (s *Shop) Dispatch(ctx context.Context, name events.Name, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.failure = nil
	if err := s.bus.Emit(ctx, name, payload); err != nil && s.failure == nil {
		s.failure = err
	}
	err := s.failure
	s.failure = nil
	return err
}

// Render produces the full page. The banner is shown once.
func (s *Shop) Render() (template.HTML, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	var content template.HTML
	if s.screen.modalOpen && s.screen.modal != nil {
		var err error
		if content, err = s.screen.modal(); err != nil {
			return "", err
		}
	}
	modal, err := view.Modal{}.Render(view.ModalProps{Open: s.screen.modalOpen, Content: content})
	if err != nil {
		return "", err
	}

	page, err := view.Page{}.Render(view.PageProps{
		Catalog: s.screen.catalog,
		Counter: s.screen.counter,
		Locked:  s.screen.locked,
		Loading: s.screen.loading,
		Error:   s.screen.banner,
		Modal:   modal,
	})
	if err != nil {
		return "", err
	}
	s.screen.banner = ""
	return page, nil
}

// Stage returns the current checkout stage
func (s *Shop) Stage() domain.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// LastSeen returns the time of the last request served by the session.
// It does not wait for a dispatch in progress.
func (s *Shop) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Shop) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// fail keeps the first error of the current dispatch
func (s *Shop) fail(err error) {
	if err != nil && s.failure == nil {
		s.failure = err
	}
}

func (s *Shop) transition(next domain.Stage) error {
	if !s.stage.CanTransitionTo(next) {
		return &errors.ErrInvalidStateTransition{From: s.stage, To: next}
	}
	s.stage = next
	return nil
}

func (s *Shop) require(stage domain.Stage) error {
	if s.stage != stage {
		return &errors.ErrInvalidStateTransition{From: s.stage, To: stage}
	}
	return nil
}

func (s *Shop) openModal(ctx context.Context, content func() (template.HTML, error)) {
	s.screen.modal = content
	if !s.screen.modalOpen {
		s.screen.modalOpen = true
		s.fail(s.bus.Emit(ctx, events.ModalOpen, nil))
	}
}

func (s *Shop) onItemsChanged(_ context.Context, e events.Event) {
	payload, _ := e.Payload.(events.CatalogChangedPayload)
	cards := make([]template.HTML, 0, len(payload.Catalog))
	for _, p := range payload.Catalog {
		card, err := view.CardCatalog{}.Render(view.NewCardProps(p))
		if err != nil {
			s.fail(err)
			return
		}
		cards = append(cards, card)
	}
	s.screen.catalog = cards
	s.screen.counter = s.store.BasketCount()
}

func (s *Shop) onLoadingChanged(_ context.Context, e events.Event) {
	s.screen.loading, _ = e.Payload.(bool)
}

func (s *Shop) onCardSelect(ctx context.Context, e events.Event) {
	id, _ := e.Payload.(string)
	product, ok := s.store.Product(id)
	if !ok {
		s.fail(&errors.ErrNotFound{Resource: "product", ID: id})
		return
	}
	if err := s.transition(domain.StagePreview); err != nil {
		s.fail(err)
		return
	}
	s.fail(s.store.SetPreview(ctx, product))
}

func (s *Shop) onPreviewChanged(ctx context.Context, _ events.Event) {
	s.openModal(ctx, s.renderPreview)
}

func (s *Shop) renderPreview() (template.HTML, error) {
	product, ok := s.store.Preview()
	if !ok {
		return "", nil
	}
	props := view.NewCardProps(product)
	props.InBasket = s.store.IsInBasket(product.ID)
	return view.CardPreview{}.Render(props)
}

func (s *Shop) onPreviewToggle(ctx context.Context, _ events.Event) {
	if err := s.require(domain.StagePreview); err != nil {
		s.fail(err)
		return
	}
	product, ok := s.store.Preview()
	if !ok {
		s.fail(&errors.ErrNotFound{Resource: "preview", ID: ""})
		return
	}
	if err := s.store.ToggleBasketMembership(ctx, product.ID, !s.store.IsInBasket(product.ID)); err != nil {
		s.fail(err)
		return
	}
	s.fail(s.bus.Emit(ctx, events.PreviewChanged, product))
}

func (s *Shop) onBasketChanged(_ context.Context, _ events.Event) {
	items := s.store.BasketItems()
	lines := make([]template.HTML, 0, len(items))
	for i, p := range items {
		props := view.NewCardProps(p)
		props.Index = i + 1
		line, err := view.CardBasket{}.Render(props)
		if err != nil {
			s.fail(err)
			return
		}
		lines = append(lines, line)
	}
	s.screen.counter = len(items)
	s.screen.basket = view.BasketProps{Items: lines, Total: s.store.BasketTotal()}
}

func (s *Shop) onBasketOpen(ctx context.Context, _ events.Event) {
	if err := s.transition(domain.StageBasket); err != nil {
		s.fail(err)
		return
	}
	s.openModal(ctx, func() (template.HTML, error) {
		return view.Basket{}.Render(s.screen.basket)
	})
}

func (s *Shop) onBasketRemove(ctx context.Context, e events.Event) {
	if err := s.require(domain.StageBasket); err != nil {
		s.fail(err)
		return
	}
	id, _ := e.Payload.(string)
	s.fail(s.store.ToggleBasketMembership(ctx, id, false))
}

func (s *Shop) onOrderOpen(ctx context.Context, _ events.Event) {
	if s.store.BasketCount() == 0 {
		s.fail(&errors.ErrInvalidStateTransition{From: s.stage, To: domain.StageOrderForm})
		return
	}
	if err := s.transition(domain.StageOrderForm); err != nil {
		s.fail(err)
		return
	}

	valid := s.store.ValidateOrderStep(ctx)
	order := s.store.Order()
	s.screen.order = view.OrderFormProps{
		FormProps: view.FormProps{Valid: valid},
		Payment:   order.Payment,
		Address:   order.Address,
	}
	s.openModal(ctx, func() (template.HTML, error) {
		return view.OrderForm{}.Render(s.screen.order)
	})
}

func (s *Shop) onOrderFieldChange(ctx context.Context, e events.Event) {
	if err := s.require(domain.StageOrderForm); err != nil {
		s.fail(err)
		return
	}
	change, _ := e.Payload.(events.FieldChangePayload)
	s.fail(s.store.SetOrderField(ctx, change.Field, change.Value))
}

func (s *Shop) onOrderFormErrors(_ context.Context, e events.Event) {
	errs, _ := e.Payload.(domain.FormErrors)
	order := s.store.Order()
	s.screen.order.Valid = errs.Valid()
	s.screen.order.Errors = errs.Messages(domain.StepOrder.Fields()...)
	s.screen.order.Payment = order.Payment
	s.screen.order.Address = order.Address
}

func (s *Shop) onOrderSubmit(ctx context.Context, _ events.Event) {
	if err := s.require(domain.StageOrderForm); err != nil {
		s.fail(err)
		return
	}
	if !s.store.ValidateOrderStep(ctx) {
		return
	}
	if err := s.transition(domain.StageContactsForm); err != nil {
		s.fail(err)
		return
	}

	valid := s.store.ValidateContactsStep(ctx)
	order := s.store.Order()
	s.screen.contacts = view.ContactsFormProps{
		FormProps: view.FormProps{Valid: valid},
		Email:     order.Email,
		Phone:     order.Phone,
	}
	s.openModal(ctx, func() (template.HTML, error) {
		return view.ContactsForm{}.Render(s.screen.contacts)
	})
}

func (s *Shop) onContactsFieldChange(ctx context.Context, e events.Event) {
	if err := s.require(domain.StageContactsForm); err != nil {
		s.fail(err)
		return
	}
	change, _ := e.Payload.(events.FieldChangePayload)
	s.fail(s.store.SetContactsField(ctx, change.Field, change.Value))
}

func (s *Shop) onContactsFormErrors(_ context.Context, e events.Event) {
	errs, _ := e.Payload.(domain.FormErrors)
	order := s.store.Order()
	s.screen.contacts.Valid = errs.Valid()
	s.screen.contacts.Errors = errs.Messages(domain.StepContacts.Fields()...)
	s.screen.contacts.Email = order.Email
	s.screen.contacts.Phone = order.Phone
}

func (s *Shop) onContactsSubmit(ctx context.Context, _ events.Event) {
	if err := s.require(domain.StageContactsForm); err != nil {
		s.fail(err)
		return
	}
	if !s.store.ValidateContactsStep(ctx) {
		return
	}

	order := s.store.PrepareOrder()
	result, err := s.client.PostOrder(ctx, order)
	if err != nil {
		s.logger.Error("Failed to submit order", zap.Float64("total", order.Total), zap.Error(err))
		s.screen.banner = BannerOrderFailed
		var netErr *errors.NetworkError
		// the API explains rejected orders; server faults keep the generic text
		if stderrors.As(err, &netErr) && netErr.Status < 500 && netErr.Message != "" {
			s.screen.banner = netErr.Message
		}
		s.fail(err)
		return
	}

	metrics.OrdersSubmittedTotal.Inc()
	s.logger.Info("Order submitted",
		zap.String("order_id", result.ID),
		zap.Float64("total", result.Total),
		zap.Int("items", len(order.Items)),
	)

	record := &domain.OrderRecord{
		SessionID: s.ID,
		RemoteID:  result.ID,
		Payment:   order.Payment,
		Address:   order.Address,
		Email:     order.Email,
		Phone:     order.Phone,
		Total:     result.Total,
		Items:     order.Items,
	}
	if err := s.journal.Append(ctx, record); err != nil {
		s.logger.Warn("Failed to journal order", zap.String("order_id", result.ID), zap.Error(err))
	}

	if err := s.store.CompleteOrder(ctx); err != nil {
		s.fail(err)
		return
	}
	if err := s.transition(domain.StageSuccess); err != nil {
		s.fail(err)
		return
	}
	s.screen.success = view.SuccessProps{Total: result.Total}
	s.openModal(ctx, func() (template.HTML, error) {
		return view.Success{}.Render(s.screen.success)
	})
}

func (s *Shop) onModalOpen(_ context.Context, _ events.Event) {
	s.screen.locked = true
}

func (s *Shop) onModalClose(_ context.Context, _ events.Event) {
	s.screen.locked = false
	s.screen.modalOpen = false
	s.screen.modal = nil
	if s.stage == domain.StageCatalog {
		return
	}
	s.fail(s.transition(domain.StageCatalog))
}
