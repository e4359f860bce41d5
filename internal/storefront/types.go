package storefront

import "github.com/ars-4/grocer-middleware/internal/odoo"

// Response contracts. Field names follow the original storefront wire format
// so existing clients keep working; the structs decouple the responses from
// whatever shape the remote schema takes.

// Category is a public product category.
type Category struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Parent   odoo.Ref `json:"parent_id"`
	Sequence int64    `json:"sequence"`
	Image    string   `json:"image"`
}

// Product is a published product template as listed in the catalog.
type Product struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	ListPrice       float64 `json:"list_price"`
	Description     string  `json:"description_ecommerce"`
	CategoryIDs     []int64 `json:"public_categ_ids"`
	Published       bool    `json:"website_published"`
	ImageURL        string  `json:"image_url"`
	RibbonName      *string `json:"ribbon_name"`
	RibbonBgColor   *string `json:"ribbon_bg_color"`
	RibbonTextColor *string `json:"ribbon_text_color"`
}

// ProductDetail is a product with its resolved gallery and category names.
type ProductDetail struct {
	Product
	OptionalProductIDs []int64  `json:"optional_product_ids"`
	MainImage          string   `json:"image_512"`
	Images             []string `json:"images"`
	Categories         []string `json:"categories"`
}

// ribbon holds translated ribbon display fields.
type ribbon struct {
	Name      string
	BgColor   string
	TextColor string
}

// Order is a sale order summary.
type Order struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Partner     odoo.Ref `json:"partner_id"`
	AmountTotal float64  `json:"amount_total"`
	DateOrder   string   `json:"date_order"`
	State       string   `json:"state"`
	LineIDs     []int64  `json:"order_line"`
	TagIDs      []int64  `json:"tag_ids"`
}

// OrderLine is one resolved line of an order.
type OrderLine struct {
	Product odoo.Ref `json:"product"`
	Qty     float64  `json:"qty"`
	Amount  float64  `json:"amount"`
}

// OrderDetail is an order with its lines resolved into products.
type OrderDetail struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Partner     odoo.Ref    `json:"partner_id"`
	AmountTotal float64     `json:"amount_total"`
	State       string      `json:"state"`
	DateOrder   string      `json:"date_order"`
	Products    []OrderLine `json:"products"`
	TagIDs      []int64     `json:"tag_ids"`
}

// Customer is a contact summary.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CustomerProfile is the profile returned after a successful OTP login.
type CustomerProfile struct {
	Customer
	Street string `json:"street"`
	City   string `json:"city"`
}

// CustomerRecord is the full contact record returned after signup.
type CustomerRecord struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Email   string   `json:"email"`
	Street  string   `json:"street"`
	Street2 string   `json:"street2"`
	City    string   `json:"city"`
	State   odoo.Ref `json:"state_id"`
	Zip     string   `json:"zip"`
	Country odoo.Ref `json:"country_id"`
}
