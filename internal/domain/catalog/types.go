// Package catalog holds the storefront's read models for products, carts and payments.
// The backend owns the data; these types only mirror its JSON.
package catalog

// Product is one item listed by the backend.
type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool { return p.Stock > 0 }

// CartItem is one line of a cart. ProductID may be a bare id or an expanded product.
type CartItem struct {
	ID         string    `json:"_id"`
	ProductID  ProductRef `json:"productId"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice"`
}

// Cart is the visitor's open cart.
type Cart struct {
	ID        string     `json:"_id"`
	UserID    string     `json:"userId"`
	Status    string     `json:"status"`
	CartItems []CartItem `json:"cartItems"`
}

// Total sums the line totals.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.CartItems {
		total += item.TotalPrice
	}
	return total
}

// ItemCount sums quantities across lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c.CartItems {
		n += item.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool { return len(c.CartItems) == 0 }

// PaymentIntent carries the processor secret the browser confirms the card payment with.
type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
}
