package model

type Payer struct {
	Name  PayerName `json:"name"`
	Email string    `json:"email_address"`
}

type PayerName struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

func (n PayerName) Full() string {
	switch {
	case n.GivenName != "" && n.Surname != "":
		return n.GivenName + " " + n.Surname
	case n.GivenName != "":
		return n.GivenName
	default:
		return n.Surname
	}
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Final  bool         `json:"final_capture"`
	Amount PaypalAmount `json:"amount"`
}

type PaypalPayments struct {
	Captures []PaypalCapture `json:"captures"`
}

type PaypalPurchaseUnit struct {
	ReferenceID string         `json:"reference_id"`
	CustomID    string         `json:"custom_id"`
	Payments    PaypalPayments `json:"payments"`
}

// PaypalOrderResult is the shape shared by the create and capture responses
// of /v2/checkout/orders. Fields absent from a given response stay zero.
type PaypalOrderResult struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Links         []PaypalLink         `json:"links"`
	Payer         Payer                `json:"payer"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
}

type PaypalResource struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	CustomID string       `json:"custom_id"`
	Amount   PaypalAmount `json:"amount"`
	Payer    Payer        `json:"payer"`
}

type PaypalWebhookEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	CreateTime string         `json:"create_time"`
	Resource   PaypalResource `json:"resource"`
}
