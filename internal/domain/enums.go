package domain

// OrderField names a user-editable order field
type OrderField string

const (
	FieldPayment OrderField = "payment"
	FieldAddress OrderField = "address"
	FieldEmail   OrderField = "email"
	FieldPhone   OrderField = "phone"
)

// Step is one of the two checkout forms
type Step string

const (
	StepOrder    Step = "order"
	StepContacts Step = "contacts"
)

// Fields returns the fields owned by the step, in display order
func (s Step) Fields() []OrderField {
	switch s {
	case StepOrder:
		return []OrderField{FieldPayment, FieldAddress}
	case StepContacts:
		return []OrderField{FieldEmail, FieldPhone}
	default:
		return nil
	}
}

// Owns checks if the field belongs to the step
func (s Step) Owns(field OrderField) bool {
	for _, f := range s.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

// PaymentMethod is a payment option offered by the order form
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// PaymentMethods lists the options in the order the form shows them
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentCash}

// IsValid checks if the payment method is offered
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCard, PaymentCash:
		return true
	default:
		return false
	}
}

// Label returns the button caption
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCard:
		return "Онлайн"
	case PaymentCash:
		return "При получении"
	default:
		return string(p)
	}
}

// Stage represents where the visitor is in the checkout flow
type Stage string

const (
	StageCatalog      Stage = "catalog"
	StagePreview      Stage = "preview"
	StageBasket       Stage = "basket"
	StageOrderForm    Stage = "order_form"
	StageContactsForm Stage = "contacts_form"
	StageSuccess      Stage = "success"
)

func (s Stage) String() string {
	return string(s)
}

// IsValid checks if the stage is known
func (s Stage) IsValid() bool {
	switch s {
	case StageCatalog,
		StagePreview,
		StageBasket,
		StageOrderForm,
		StageContactsForm,
		StageSuccess:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the flow may move from s to next
func (s Stage) CanTransitionTo(next Stage) bool {
	switch s {
	case StageCatalog:
		return next == StagePreview ||
			next == StageBasket
	case StagePreview:
		return next == StagePreview ||
			next == StageBasket ||
			next == StageCatalog
	case StageBasket:
		return next == StageBasket ||
			next == StagePreview ||
			next == StageOrderForm ||
			next == StageCatalog
	case StageOrderForm:
		return next == StageOrderForm ||
			next == StageContactsForm ||
			next == StageCatalog
	case StageContactsForm:
		return next == StageContactsForm ||
			next == StageSuccess ||
			next == StageCatalog
	case StageSuccess:
		return next == StageCatalog
	default:
		return false
	}
}

// Category is a product category as delivered by the API
type Category string

const (
	CategorySoftSkill  Category = "софт-скил"
	CategoryHardSkill  Category = "хард-скил"
	CategoryOther      Category = "другое"
	CategoryAdditional Category = "дополнительное"
	CategoryButton     Category = "кнопка"
)

// Modifier returns the style suffix of the category badge, empty when unknown
func (c Category) Modifier() string {
	switch c {
	case CategorySoftSkill:
		return "soft"
	case CategoryHardSkill:
		return "hard"
	case CategoryOther:
		return "other"
	case CategoryAdditional:
		return "additional"
	case CategoryButton:
		return "button"
	default:
		return ""
	}
}
