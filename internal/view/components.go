package view

import (
	"html/template"

	"github.com/jafarshop/larek/internal/domain"
)

// CardProps feeds the three card variants
type CardProps struct {
	ID          string
	Title       string
	Category    string
	Image       string
	Description string
	Price       *float64
	Index       int
	InBasket    bool
}

// NewCardProps copies the displayable fields of a product
func NewCardProps(p domain.Product) CardProps {
	return CardProps{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
		Price:       p.Price,
	}
}

// Purchasable reports whether the buy control is enabled
func (p CardProps) Purchasable() bool {
	return p.Price != nil
}

// ButtonLabel is the preview action caption
func (p CardProps) ButtonLabel() string {
	if p.InBasket {
		return "Убрать"
	}
	return "Купить"
}

// CardCatalog is the gallery tile
type CardCatalog struct{}

func (CardCatalog) Render(props CardProps) (template.HTML, error) {
	return render("card-catalog", props)
}

// CardPreview is the detail view shown in the modal
type CardPreview struct{}

func (CardPreview) Render(props CardProps) (template.HTML, error) {
	return render("card-preview", props)
}

// CardBasket is one numbered basket line
type CardBasket struct{}

func (CardBasket) Render(props CardProps) (template.HTML, error) {
	return render("card-basket", props)
}

// BasketProps lists the rendered basket lines and their total
type BasketProps struct {
	Items []template.HTML
	Total float64
}

// Basket lists the basket lines and the checkout button
type Basket struct{}

func (Basket) Render(props BasketProps) (template.HTML, error) {
	return render("basket", props)
}

// FormProps carries the state shared by both checkout forms
type FormProps struct {
	Valid  bool
	Errors []string
}

// OrderFormProps is the state of the delivery/payment step
type OrderFormProps struct {
	FormProps
	Payment string
	Address string
}

// PaymentOption is one payment button
type PaymentOption struct {
	Value  string
	Label  string
	Active bool
}

// PaymentOptions lists the payment buttons with the selected one marked
func (p OrderFormProps) PaymentOptions() []PaymentOption {
	opts := make([]PaymentOption, 0, len(domain.PaymentMethods))
	for _, m := range domain.PaymentMethods {
		opts = append(opts, PaymentOption{
			Value:  string(m),
			Label:  m.Label(),
			Active: string(m) == p.Payment,
		})
	}
	return opts
}

// OrderForm is the delivery/payment step
type OrderForm struct{}

func (OrderForm) Render(props OrderFormProps) (template.HTML, error) {
	return render("order", props)
}

// ContactsFormProps is the state of the contact step
type ContactsFormProps struct {
	FormProps
	Email string
	Phone string
}

// ContactsForm is the contact step
type ContactsForm struct{}

func (ContactsForm) Render(props ContactsFormProps) (template.HTML, error) {
	return render("contacts", props)
}

// SuccessProps carries the total charged by the API
type SuccessProps struct {
	Total float64
}

// Success confirms the order
type Success struct{}

func (Success) Render(props SuccessProps) (template.HTML, error) {
	return render("success", props)
}

// ModalProps wraps the content of the open step
type ModalProps struct {
	Open    bool
	Content template.HTML
}

// Modal hosts the current step
type Modal struct{}

func (Modal) Render(props ModalProps) (template.HTML, error) {
	return render("modal", props)
}

// PageProps assembles the document shell
type PageProps struct {
	Catalog []template.HTML
	Counter int
	Locked  bool
	Loading bool
	Error   string
	Modal   template.HTML
}

// Page is the document shell
type Page struct{}

func (Page) Render(props PageProps) (template.HTML, error) {
	return render("page", props)
}

var (
	_ Renderable[CardProps]         = CardCatalog{}
	_ Renderable[CardProps]         = CardPreview{}
	_ Renderable[CardProps]         = CardBasket{}
	_ Renderable[BasketProps]       = Basket{}
	_ Renderable[OrderFormProps]    = OrderForm{}
	_ Renderable[ContactsFormProps] = ContactsForm{}
	_ Renderable[SuccessProps]      = Success{}
	_ Renderable[ModalProps]        = Modal{}
	_ Renderable[PageProps]         = Page{}
)
