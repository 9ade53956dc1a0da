package events

import "github.com/jafarshop/larek/internal/domain"

// Name identifies an event kind
type Name string

// Store notifications
const (
	ItemsChanged              Name = "items:changed"
	PreviewChanged            Name = "preview:changed"
	BasketChanged             Name = "basket:changed"
	LoadingChanged            Name = "loading:changed"
	OrderReady                Name = "order:ready"
	ContactsReady             Name = "contacts:ready"
	OrderFormErrorsChanged    Name = "orderFormErrors:change"
	ContactsFormErrorsChanged Name = "contactsFormErrors:change"
)

// User intents
const (
	CardSelect     Name = "card:select"
	PreviewToggle  Name = "preview:toggle"
	BasketOpen     Name = "basket:open"
	BasketRemove   Name = "basket:remove"
	OrderOpen      Name = "order:open"
	OrderSubmit    Name = "order:submit"
	ContactsSubmit Name = "contacts:submit"
)

// Modal host notifications
const (
	ModalOpen  Name = "modal:open"
	ModalClose Name = "modal:close"
)

// FieldChange returns the event emitted when a form field is edited,
// e.g. "order.address:change"
func FieldChange(step domain.Step, field domain.OrderField) Name {
	return Name(string(step) + "." + string(field) + ":change")
}

// FieldChanges matches every field edit of a form
func FieldChanges(step domain.Step) Pattern {
	return Pattern{Prefix: string(step) + ".", Suffix: ":change"}
}

// CatalogChangedPayload accompanies ItemsChanged
type CatalogChangedPayload struct {
	Catalog []domain.Product
}

// FieldChangePayload accompanies field edits
type FieldChangePayload struct {
	Field domain.OrderField
	Value string
}
