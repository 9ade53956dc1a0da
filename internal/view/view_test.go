package view

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/larek/internal/domain"
)

func price(v float64) *float64 { return &v }

// ============================================================================
// Formatting Tests
// ============================================================================

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{750, "750"},
		{1450, "1 450"},
		{12500, "12 500"},
		{1000000, "1 000 000"},
		{1234.5, "1 234.5"},
		{-2500, "-2 500"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestPriceText(t *testing.T) {
	assert.Equal(t, "Бесценно", PriceText(nil))
	assert.Equal(t, "2 500 синапсов", PriceText(price(2500)))
	assert.Equal(t, "0 синапсов", PriceText(price(0)))
}

func TestCategoryClass(t *testing.T) {
	assert.Equal(t, "card__category_soft", CategoryClass("софт-скил"))
	assert.Equal(t, "card__category_additional", CategoryClass("дополнительное"))
	assert.Equal(t, "", CategoryClass("неизвестно"))
}

// ============================================================================
// Card Tests
// ============================================================================

func testProduct() domain.Product {
	return domain.Product{
		ID:          "p1",
		Title:       "Бэкенд-антистресс",
		Category:    "софт-скил",
		Image:       "https://cdn.example/Shell.svg",
		Description: "Если планируете решать задачи в тренажёре, берите два.",
		Price:       price(750),
	}
}

func TestCardCatalog_Render(t *testing.T) {
	html, err := CardCatalog{}.Render(NewCardProps(testProduct()))
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `action="/cards/p1/select"`)
	assert.Contains(t, out, `card__category card__category_soft`)
	assert.Contains(t, out, `Бэкенд-антистресс`)
	assert.Contains(t, out, `src="https://cdn.example/Shell.svg"`)
	assert.Contains(t, out, `750 синапсов`)
}

func TestCardPreview_ButtonState(t *testing.T) {
	props := NewCardProps(testProduct())

	html, err := CardPreview{}.Render(props)
	require.NoError(t, err)
	assert.Contains(t, string(html), ">Купить</button>")
	assert.Contains(t, string(html), `class="card__text"`)

	props.InBasket = true
	html, err = CardPreview{}.Render(props)
	require.NoError(t, err)
	assert.Contains(t, string(html), ">Убрать</button>")
	assert.NotContains(t, string(html), "disabled")
}

func TestCardPreview_PricelessIsDisabled(t *testing.T) {
	p := testProduct()
	p.Price = nil

	html, err := CardPreview{}.Render(NewCardProps(p))
	require.NoError(t, err)
	assert.Contains(t, string(html), " disabled>Купить</button>")
	assert.Contains(t, string(html), "Бесценно")
}

func TestCardBasket_Render(t *testing.T) {
	props := NewCardProps(testProduct())
	props.Index = 3

	html, err := CardBasket{}.Render(props)
	require.NoError(t, err)
	assert.Contains(t, string(html), `<span class="basket__item-index">3</span>`)
	assert.Contains(t, string(html), `action="/basket/items/p1/remove"`)
}

func TestCard_EscapesText(t *testing.T) {
	p := testProduct()
	p.Title = `<script>alert(1)</script>`

	html, err := CardCatalog{}.Render(NewCardProps(p))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}

// ============================================================================
// Basket Tests
// ============================================================================

func TestBasket_Empty(t *testing.T) {
	html, err := Basket{}.Render(BasketProps{})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "В корзине пусто :(")
	assert.Contains(t, out, " disabled>Оформить</button>")
	assert.Contains(t, out, "0 синапсов")
}

func TestBasket_WithItems(t *testing.T) {
	html, err := Basket{}.Render(BasketProps{
		Items: []template.HTML{`<li class="line">one</li>`},
		Total: 12500,
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `<li class="line">one</li>`)
	assert.NotContains(t, out, "В корзине пусто")
	assert.Contains(t, out, `type="submit">Оформить</button>`)
	assert.Contains(t, out, "12 500 синапсов")
}

// ============================================================================
// Form Tests
// ============================================================================

func TestOrderForm_Render(t *testing.T) {
	html, err := OrderForm{}.Render(OrderFormProps{
		FormProps: FormProps{Valid: false, Errors: []string{"Необходимо выбрать способ оплаты", "Необходимо указать адрес"}},
		Payment:   "",
		Address:   "",
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, " disabled>Далее</button>")
	assert.Contains(t, out, "Необходимо выбрать способ оплаты; Необходимо указать адрес")
	assert.NotContains(t, out, "button_alt-active")
}

func TestOrderForm_ActivePayment(t *testing.T) {
	html, err := OrderForm{}.Render(OrderFormProps{
		FormProps: FormProps{Valid: true},
		Payment:   "cash",
		Address:   "Москва",
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `button_alt-active" type="submit" name="payment" value="cash"`)
	assert.Equal(t, 1, strings.Count(out, "button_alt-active"))
	assert.Contains(t, out, `value="Москва"`)
	assert.Contains(t, out, `type="submit">Далее</button>`)
}

func TestContactsForm_Render(t *testing.T) {
	html, err := ContactsForm{}.Render(ContactsFormProps{
		FormProps: FormProps{Errors: []string{"Необходимо указать email"}},
		Phone:     "+7 900",
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, " disabled>Оплатить</button>")
	assert.Contains(t, out, `<span class="form__errors">Необходимо указать email</span>`)
	assert.Contains(t, out, `value="&#43;7 900"`)
}

// ============================================================================
// Success / Modal / Page Tests
// ============================================================================

func TestSuccess_Render(t *testing.T) {
	html, err := Success{}.Render(SuccessProps{Total: 4000})
	require.NoError(t, err)
	assert.Contains(t, string(html), "Списано 4 000 синапсов")
}

func TestModal_Render(t *testing.T) {
	html, err := Modal{}.Render(ModalProps{Open: true, Content: "<p>inside</p>"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "modal modal_active")
	assert.Contains(t, string(html), "<p>inside</p>")

	html, err = Modal{}.Render(ModalProps{Open: false, Content: "<p>inside</p>"})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "modal_active")
	assert.NotContains(t, string(html), "inside")
}

func TestPage_Render(t *testing.T) {
	html, err := Page{}.Render(PageProps{
		Catalog: []template.HTML{"<div>card-1</div>", "<div>card-2</div>"},
		Counter: 2,
		Locked:  true,
		Error:   "Не удалось загрузить каталог",
		Modal:   "<div>modal</div>",
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `<span class="header__basket-counter">2</span>`)
	assert.Contains(t, out, "page__wrapper_locked")
	assert.Contains(t, out, "<div>card-1</div><div>card-2</div>")
	assert.Contains(t, out, "Не удалось загрузить каталог")
	assert.Contains(t, out, "<div>modal</div>")
}
