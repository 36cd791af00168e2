package gateway

// Request/response shapes of the gateway API. Field names follow the wire
// format, not our conventions.

type paymentMethodRequest struct {
	MerchantCode string `json:"merchantcode"`
	Amount       int64  `json:"amount"`
	Datetime     string `json:"datetime"`
	Signature    string `json:"signature"`
}

type paymentMethodEntry struct {
	PaymentMethod string `json:"paymentMethod"`
	PaymentName   string `json:"paymentName"`
	PaymentImage  string `json:"paymentImage"`
	TotalFee      string `json:"totalFee"`
}

type paymentMethodResponse struct {
	PaymentFee      []paymentMethodEntry `json:"paymentFee"`
	ResponseCode    string               `json:"responseCode"`
	ResponseMessage string               `json:"responseMessage"`
}

type createTransactionRequest struct {
	MerchantCode    string `json:"merchantCode"`
	PaymentAmount   int64  `json:"paymentAmount"`
	PaymentMethod   string `json:"paymentMethod"`
	MerchantOrderID string `json:"merchantOrderId"`
	ProductDetails  string `json:"productDetails"`
	CustomerVaName  string `json:"customerVaName"`
	Email           string `json:"email"`
	CallbackURL     string `json:"callbackUrl"`
	ReturnURL       string `json:"returnUrl"`
	ExpiryPeriod    int    `json:"expiryPeriod"`
	Signature       string `json:"signature"`
}

type createTransactionResponse struct {
	MerchantCode  string `json:"merchantCode"`
	Reference     string `json:"reference"`
	PaymentURL    string `json:"paymentUrl"`
	VANumber      string `json:"vaNumber"`
	QRString      string `json:"qrString"`
	Amount        string `json:"amount"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

type queryStatusRequest struct {
	MerchantCode    string `json:"merchantCode"`
	MerchantOrderID string `json:"merchantOrderId"`
	Signature       string `json:"signature"`
}

type queryStatusResponse struct {
	MerchantOrderID string `json:"merchantOrderId"`
	Reference       string `json:"reference"`
	Amount          string `json:"amount"`
	StatusCode      string `json:"statusCode"`
	StatusMessage   string `json:"statusMessage"`
}

// --- Normalized results handed to services ---

// Gateway status codes. "00" is success on every operation; on status
// queries "01" means still pending and "02" failed/expired.
const (
	StatusSuccess = "00"
	StatusPending = "01"
	StatusFailed  = "02"
)

type PaymentMethod struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Fee  int64  `json:"fee"`
}

// TransactionOrder is the input to CreateTransaction. The merchant order id
// is generated by the caller and must be reused on any retry.
type TransactionOrder struct {
	MerchantOrderID string
	Amount          int64
	PaymentMethod   string
	ProductDetails  string
	CustomerName    string
	CustomerEmail   string
}

type TransactionResult struct {
	Reference  string
	PaymentURL string
	VANumber   string
	QRString   string
	StatusCode string
}

type StatusResult struct {
	Reference     string
	StatusCode    string
	StatusMessage string
	Amount        int64
}
