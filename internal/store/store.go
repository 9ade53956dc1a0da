package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/events"
	"github.com/jafarshop/larek/pkg/errors"
)

// Validation messages shown next to the checkout forms
const (
	MsgPaymentRequired = "Необходимо выбрать способ оплаты"
	MsgAddressRequired = "Необходимо указать адрес"
	MsgEmailRequired   = "Необходимо указать email"
	MsgPhoneRequired   = "Необходимо указать телефон"
)

var requiredMessages = map[domain.OrderField]string{
	domain.FieldPayment: MsgPaymentRequired,
	domain.FieldAddress: MsgAddressRequired,
	domain.FieldEmail:   MsgEmailRequired,
	domain.FieldPhone:   MsgPhoneRequired,
}

// Store owns the catalog, the basket and the checkout form of one visitor.
// It never renders anything: every change is announced on the bus.
type Store struct {
	bus    *events.Bus
	logger *zap.Logger

	strict         bool
	retainContacts bool

	catalog    []domain.Product
	preview    string
	loading    bool
	order      domain.Order
	formErrors domain.FormErrors
}

// Option configures a Store
type Option func(*Store)

// WithStrictInvariants makes invariant violations panic instead of degrading
func WithStrictInvariants(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// WithRetainedContacts keeps payment, address, email and phone after a completed order
func WithRetainedContacts(retain bool) Option {
	return func(s *Store) { s.retainContacts = retain }
}

// New creates an empty store
func New(bus *events.Bus, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		bus:        bus,
		logger:     logger,
		order:      domain.Order{Items: []string{}},
		formErrors: domain.FormErrors{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCatalog replaces the catalog. A preview or basket entry that is missing
// from the new catalog is dropped.
func (s *Store) SetCatalog(ctx context.Context, products []domain.Product) error {
	s.catalog = append([]domain.Product(nil), products...)

	if s.preview != "" {
		if _, ok := s.Product(s.preview); !ok {
			s.preview = ""
		}
	}

	kept := s.order.Items[:0:0]
	var dropped []string
	for _, id := range s.order.Items {
		if _, ok := s.Product(id); ok {
			kept = append(kept, id)
			continue
		}
		s.logger.Warn("Dropping basket item missing from new catalog", zap.String("product_id", id))
		dropped = append(dropped, id)
	}
	s.order.Items = kept
	for range dropped {
		if err := s.bus.Emit(ctx, events.BasketChanged, nil); err != nil {
			return err
		}
	}

	return s.bus.Emit(ctx, events.ItemsChanged, events.CatalogChangedPayload{Catalog: s.Catalog()})
}

// Catalog returns a copy of the catalog
func (s *Store) Catalog() []domain.Product {
	return append([]domain.Product(nil), s.catalog...)
}

// Product looks a catalog entry up by id
func (s *Store) Product(id string) (domain.Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// SetPreview selects the product shown in the detail view
func (s *Store) SetPreview(ctx context.Context, product domain.Product) error {
	s.preview = product.ID
	return s.bus.Emit(ctx, events.PreviewChanged, product)
}

// Preview returns the product in the detail view, if any
func (s *Store) Preview() (domain.Product, bool) {
	if s.preview == "" {
		return domain.Product{}, false
	}
	return s.Product(s.preview)
}

// SetLoading flips the loading flag
func (s *Store) SetLoading(ctx context.Context, loading bool) error {
	s.loading = loading
	return s.bus.Emit(ctx, events.LoadingChanged, loading)
}

// Loading reports whether a catalog request is in flight
func (s *Store) Loading() bool {
	return s.loading
}

// BasketItems returns the catalog entries in the basket, in catalog order
func (s *Store) BasketItems() []domain.Product {
	items := make([]domain.Product, 0, len(s.order.Items))
	for _, p := range s.catalog {
		if s.IsInBasket(p.ID) {
			items = append(items, p)
		}
	}
	if len(items) != len(s.order.Items) {
		s.checkOrphans()
	}
	return items
}

// BasketCount returns the number of products in the basket
func (s *Store) BasketCount() int {
	return len(s.BasketItems())
}

// BasketTotal sums the prices of the basket items
func (s *Store) BasketTotal() float64 {
	var total float64
	for _, p := range s.BasketItems() {
		if p.Price == nil {
			s.violate(fmt.Sprintf("basket item %s has no price", p.ID))
			continue
		}
		total += *p.Price
	}
	return total
}

// IsInBasket reports basket membership
func (s *Store) IsInBasket(id string) bool {
	for _, item := range s.order.Items {
		if item == id {
			return true
		}
	}
	return false
}

// ToggleBasketMembership adds or removes a product. Products that are unknown
// or not for sale are refused and nothing is emitted.
func (s *Store) ToggleBasketMembership(ctx context.Context, id string, in bool) error {
	if !in {
		return s.remove(ctx, id)
	}

	product, ok := s.Product(id)
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id}
	}
	if !product.Purchasable() {
		return &errors.ErrNotPurchasable{ID: id}
	}
	if !s.IsInBasket(id) {
		s.order.Items = append(s.order.Items, id)
	}
	return s.bus.Emit(ctx, events.BasketChanged, nil)
}

func (s *Store) remove(ctx context.Context, id string) error {
	kept := s.order.Items[:0:0]
	for _, item := range s.order.Items {
		if item != id {
			kept = append(kept, item)
		}
	}
	s.order.Items = kept
	return s.bus.Emit(ctx, events.BasketChanged, nil)
}

// ClearBasket removes the items one by one, emitting one BasketChanged per item
func (s *Store) ClearBasket(ctx context.Context) error {
	for _, id := range append([]string(nil), s.order.Items...) {
		if err := s.remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Order returns a snapshot of the in-progress order
func (s *Store) Order() domain.Order {
	return s.order.Clone()
}

// PrepareOrder recomputes the total and returns the order to submit
func (s *Store) PrepareOrder() domain.Order {
	s.order.Total = s.BasketTotal()
	return s.order.Clone()
}

// CompleteOrder empties the basket after a successful submission and resets
// the form fields unless the store retains contacts.
func (s *Store) CompleteOrder(ctx context.Context) error {
	if err := s.ClearBasket(ctx); err != nil {
		return err
	}
	s.order.Total = 0
	if !s.retainContacts {
		s.order = domain.Order{Items: []string{}}
	}
	s.formErrors = domain.FormErrors{}
	return nil
}

// SetOrderField writes a delivery/payment field and revalidates the step
func (s *Store) SetOrderField(ctx context.Context, field domain.OrderField, value string) error {
	if !domain.StepOrder.Owns(field) {
		return &errors.ErrInvalidField{Form: string(domain.StepOrder), Field: string(field)}
	}
	s.order.Set(field, value)
	if s.ValidateOrderStep(ctx) {
		return s.bus.Emit(ctx, events.OrderReady, s.Order())
	}
	return nil
}

// SetContactsField writes a contact field and revalidates the step
func (s *Store) SetContactsField(ctx context.Context, field domain.OrderField, value string) error {
	if !domain.StepContacts.Owns(field) {
		return &errors.ErrInvalidField{Form: string(domain.StepContacts), Field: string(field)}
	}
	s.order.Set(field, value)
	if s.ValidateContactsStep(ctx) {
		return s.bus.Emit(ctx, events.ContactsReady, s.Order())
	}
	return nil
}

// ValidateOrderStep requires payment and address
func (s *Store) ValidateOrderStep(ctx context.Context) bool {
	return s.validate(ctx, domain.StepOrder, events.OrderFormErrorsChanged)
}

// ValidateContactsStep requires email and phone
func (s *Store) ValidateContactsStep(ctx context.Context) bool {
	return s.validate(ctx, domain.StepContacts, events.ContactsFormErrorsChanged)
}

func (s *Store) validate(ctx context.Context, step domain.Step, name events.Name) bool {
	errs := domain.FormErrors{}
	for _, field := range step.Fields() {
		if s.order.Get(field) == "" {
			errs[field] = requiredMessages[field]
		}
	}
	s.formErrors = errs

	if err := s.bus.Emit(ctx, name, s.FormErrors()); err != nil {
		s.logger.Error("Failed to publish form errors", zap.String("step", string(step)), zap.Error(err))
	}
	return errs.Valid()
}

// FormErrors returns a copy of the current validation failures
func (s *Store) FormErrors() domain.FormErrors {
	cp := make(domain.FormErrors, len(s.formErrors))
	for k, v := range s.formErrors {
		cp[k] = v
	}
	return cp
}

func (s *Store) checkOrphans() {
	for _, id := range s.order.Items {
		if _, ok := s.Product(id); !ok {
			s.violate(fmt.Sprintf("basket item %s has no catalog entry", id))
		}
	}
}

func (s *Store) violate(msg string) {
	err := &errors.InvariantViolation{Message: msg}
	s.logger.Error("Store invariant violated", zap.Error(err))
	if s.strict {
		panic(err)
	}
}
