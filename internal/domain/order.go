package domain

type PaymentType string

const (
	PaymentTypePayNow        PaymentType = "pay_now"
	PaymentTypePayOnDelivery PaymentType = "pay_on_delivery"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card_processor"
	PaymentMethodWallet PaymentMethod = "alternate_wallet"
	PaymentMethodCash   PaymentMethod = "cash"
)

// DeliveryInfo is the address block collected at checkout. All fields
// except DeliveryNotes are required.
type DeliveryInfo struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	DeliveryNotes string `json:"delivery_notes,omitempty"`
}

// MissingFields returns the names of required fields that are empty.
func (d DeliveryInfo) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"first_name", d.FirstName},
		{"last_name", d.LastName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"postal_code", d.PostalCode},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// OrderItem is the per-line snapshot sent to the order service.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// Order is the order-creation request body. It is constructed once at
// submit time from the cart, the delivery info and the payment
// selection, and never mutated afterwards.
type Order struct {
	Items         []OrderItem   `json:"items"`
	DeliveryInfo  DeliveryInfo  `json:"delivery_info"`
	PaymentType   PaymentType   `json:"payment_type"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	DeliveryFee   int64         `json:"delivery_fee"`
	Total         int64         `json:"total"`
	Notes         string        `json:"notes,omitempty"`
}

// OrderFromCart snapshots the cart's line items into an order.
func OrderFromCart(cart *Cart, info DeliveryInfo, paymentType PaymentType, method PaymentMethod, deliveryFee int64) *Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, li := range cart.Items {
		items = append(items, OrderItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Price:     li.Price,
			Quantity:  li.Quantity,
			Image:     li.Image,
		})
	}
	return &Order{
		Items:         items,
		DeliveryInfo:  info,
		PaymentType:   paymentType,
		PaymentMethod: method,
		DeliveryFee:   deliveryFee,
		Total:         cart.Subtotal() + deliveryFee,
		Notes:         info.DeliveryNotes,
	}
}
