package models

// --- Checkout ---

type CheckoutCustomer struct {
	Name  string `json:"name" binding:"required" validate:"required,min=2"`
	Email string `json:"email" binding:"required" validate:"required,email"`
}

type CheckoutRequest struct {
	CourseID      string           `json:"course_id" binding:"required" validate:"required"`
	PaymentMethod string           `json:"payment_method" binding:"required" validate:"required"`
	Customer      CheckoutCustomer `json:"customer" binding:"required"`
}

type CheckoutResponse struct {
	MerchantOrderID string `json:"merchant_order_id"`
	Reference       string `json:"reference"`
	PaymentURL      string `json:"payment_url,omitempty"`
	VANumber        string `json:"va_number,omitempty"`
	QRString        string `json:"qr_string,omitempty"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// --- Gateway callback ---

// GatewayCallbackData is the inbound webhook payload. The gateway may post
// it as a form or as JSON, so both tag sets are bound.
type GatewayCallbackData struct {
	MerchantCode    string `form:"merchantCode" json:"merchantCode"`
	Amount          string `form:"amount" json:"amount"`
	MerchantOrderID string `form:"merchantOrderId" json:"merchantOrderId"`
	ProductDetails  string `form:"productDetails" json:"productDetails"`
	PaymentCode     string `form:"paymentCode" json:"paymentCode"`
	ResultCode      string `form:"resultCode" json:"resultCode"`
	Reference       string `form:"reference" json:"reference"`
	Signature       string `form:"signature" json:"signature"`
}

// --- Verification ---

type VerifyRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required" validate:"required"`
}

// VerifiedPayment is the bundle the registration form needs.
type VerifiedPayment struct {
	Reference       string `json:"reference"`
	MerchantOrderID string `json:"merchant_order_id"`
	CourseID        string `json:"course_id"`
	CourseTitle     string `json:"course_title,omitempty"`
	CustomerEmail   string `json:"customer_email"`
	CustomerName    string `json:"customer_name"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type VerifyResponse struct {
	Success           bool             `json:"success"`
	AlreadyRegistered bool             `json:"already_registered"`
	UserEmail         string           `json:"user_email,omitempty"`
	Payment           *VerifiedPayment `json:"payment,omitempty"`
}

// --- Registration ---

type RegistrationCustomer struct {
	FirstName string `json:"first_name" binding:"required" validate:"required,min=2"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required" validate:"required,email"`
	Password  string `json:"password" binding:"required" validate:"required,min=8"`
}

type CompleteRegistrationRequest struct {
	PaymentReference string               `json:"payment_reference" binding:"required" validate:"required"`
	CourseID         string               `json:"course_id" binding:"required" validate:"required"`
	Customer         RegistrationCustomer `json:"customer" binding:"required"`
}

type RegistrationResult struct {
	User          *User   `json:"user"`
	Course        *Course `json:"course"`
	InvoiceNumber string  `json:"invoice_number"`
}

// --- Auth ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// --- Course management ---

type CreateCourseRequest struct {
	Title       string         `json:"title" binding:"required" validate:"required,min=3"`
	Slug        string         `json:"slug" binding:"required" validate:"required,min=3"`
	Description string         `json:"description"`
	Price       int64          `json:"price" validate:"gt=0"`
	Currency    string         `json:"currency"`
	IsPublished *bool          `json:"is_published"`
	Features    map[string]any `json:"features"`
}

type UpdateCourseRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Price       *int64         `json:"price"`
	IsPublished *bool          `json:"is_published"`
	Features    map[string]any `json:"features"`
}
