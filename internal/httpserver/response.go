package httpserver

import (
	"time"

	"storefront/internal/domain"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"

	"github.com/shopspring/decimal"
)

// Wire views. Money is rendered as a fixed two-decimal string.

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type courseView struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         string       `json:"price"`
	Instructor    string       `json:"instructor"`
	DurationHours int          `json:"durationHours"`
	Difficulty    string       `json:"difficulty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	Lessons       []lessonView `json:"lessons,omitempty"`
}

type lessonView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	PDFURL      string `json:"pdfUrl,omitempty"`
	Position    int    `json:"position"`
}

type productView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	Category      string `json:"category"`
	StockQuantity int    `json:"stockQuantity"`
	InStock       bool   `json:"inStock"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

type pageView[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
}

type featuredView struct {
	Courses  []courseView  `json:"courses"`
	Products []productView `json:"products"`
}

type cartView struct {
	ID         string         `json:"id,omitempty"`
	Exists     bool           `json:"exists"`
	Items      []cartItemView `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPrice string         `json:"totalPrice"`
}

type cartItemView struct {
	ID         string `json:"id"`
	ItemType   string `json:"itemType"`
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	TotalPrice string `json:"totalPrice"`
	Stock      *int   `json:"stock,omitempty"`
	Active     bool   `json:"active"`
}

type addItemView struct {
	Item    cartItemView `json:"item"`
	Created bool         `json:"created"`
	Message string       `json:"message"`
}

type orderView struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes,omitempty"`
	TotalPrice string          `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Items      []orderItemView `json:"items"`
}

type orderItemView struct {
	ID         string `json:"id"`
	ItemType   string `json:"itemType"`
	ItemID     string `json:"itemId"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
	TotalPrice string `json:"totalPrice"`
}

type paymentView struct {
	Order        orderView `json:"order"`
	BankAccount  string    `json:"bankAccount"`
	BankName     string    `json:"bankName"`
	Instructions string    `json:"instructions"`
	Reference    string    `json:"reference"`
	Amount       string    `json:"amount"`
}

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCourseView(c domain.Course) courseView {
	v := courseView{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Price:         money(c.Price),
		Instructor:    c.Instructor,
		DurationHours: c.DurationHours,
		Difficulty:    string(c.Difficulty),
		ImageURL:      c.ImageURL,
	}
	for _, l := range c.Lessons {
		v.Lessons = append(v.Lessons, lessonView{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			VideoURL:    l.VideoURL,
			PDFURL:      l.PDFURL,
			Position:    l.Position,
		})
	}
	return v
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         money(p.Price),
		Category:      string(p.Category),
		StockQuantity: p.StockQuantity,
		InStock:       p.IsInStock(),
		ImageURL:      p.ImageURL,
	}
}

func mapPage[T, V any](p catalogsvc.Page[T], fn func(T) V) pageView[V] {
	items := make([]V, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return pageView[V]{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize, Pages: p.Pages}
}

func mapSlice[T, V any](in []T, fn func(T) V) []V {
	out := make([]V, 0, len(in))
	for _, it := range in {
		out = append(out, fn(it))
	}
	return out
}

func toCartView(c domain.Cart) cartView {
	return cartView{
		ID:         c.ID,
		Exists:     c.Exists(),
		Items:      mapSlice(c.Items, toCartItemView),
		TotalItems: c.TotalItems(),
		TotalPrice: money(c.TotalPrice()),
	}
}

func toCartItemView(it domain.CartItem) cartItemView {
	return cartItemView{
		ID:         it.ID,
		ItemType:   string(it.Item.Type()),
		ItemID:     it.Item.ID(),
		Name:       it.Name,
		Quantity:   it.Quantity,
		UnitPrice:  money(it.UnitPrice),
		TotalPrice: money(it.TotalPrice()),
		Stock:      it.Stock,
		Active:     it.Active,
	}
}

func toOrderView(o domain.Order) orderView {
	return orderView{
		ID:         o.ID,
		Status:     string(o.Status),
		Notes:      o.Notes,
		TotalPrice: money(o.TotalPrice),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Items:      mapSlice(o.Items, toOrderItemView),
	}
}

func toOrderItemView(it domain.OrderItem) orderItemView {
	return orderItemView{
		ID:         it.ID,
		ItemType:   string(it.Item.Type()),
		ItemID:     it.Item.ID(),
		Name:       it.Name,
		Quantity:   it.Quantity,
		Price:      money(it.Price),
		TotalPrice: money(it.TotalPrice()),
	}
}

func toPaymentView(p ordersvc.PaymentInstructions) paymentView {
	return paymentView{
		Order:        toOrderView(*p.Order),
		BankAccount:  p.AccountNumber,
		BankName:     p.Name,
		Instructions: p.Instructions,
		Reference:    p.Order.ID,
		Amount:       money(p.Order.TotalPrice),
	}
}

func toUserView(u domain.User) userView {
	return userView{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt}
}
