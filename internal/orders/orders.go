package orders

import (
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"
)

// The endpoints in this package simulate the commercial backends the landing
// pages talk to. No money moves and no accounts are provisioned; the responses
// mirror what the real integrations would return so the funnel can be exercised
// end to end.

const (
	trialDays          = 14
	billingCycleDays   = 30
	consultationWithin = 24 * time.Hour
)

// AccountInfo is the customer identity block shared by payment and signup.
type AccountInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Website   string `json:"website"`
}

// PaymentInfo is the sanitized card summary a checkout submits. Full card
// numbers never reach this API.
type PaymentInfo struct {
	CardLast4      string `json:"cardLast4"`
	CardName       string `json:"cardName"`
	BillingAddress string `json:"billingAddress"`
	BillingCity    string `json:"billingCity"`
	BillingState   string `json:"billingState"`
	BillingZip     string `json:"billingZip"`
	BillingCountry string `json:"billingCountry"`
}

// PaymentRequest is the process-payment input.
type PaymentRequest struct {
	Plan    string       `json:"plan"`
	Amount  float64      `json:"amount"`
	Account *AccountInfo `json:"account"`
	Payment *PaymentInfo `json:"payment"`
}

// Validate checks the request the same way for every caller so handlers can
// return a single 400 message.
func (r *PaymentRequest) Validate() error {
	if r.Plan == "" || r.Amount == 0 || r.Account == nil || r.Payment == nil {
		return fmt.Errorf("missing required fields")
	}
	if r.Account.FirstName == "" || r.Account.LastName == "" || r.Account.Email == "" || r.Account.Website == "" {
		return fmt.Errorf("missing required account information")
	}
	if r.Payment.CardLast4 == "" || r.Payment.CardName == "" || r.Payment.BillingAddress == "" {
		return fmt.Errorf("missing required payment information")
	}
	return nil
}

// Order is the simulated payment confirmation.
type Order struct {
	OrderID       string         `json:"orderId"`
	Plan          string         `json:"plan"`
	Amount        float64        `json:"amount"`
	Customer      map[string]any `json:"customer"`
	Billing       map[string]any `json:"billing"`
	PaymentMethod map[string]any `json:"paymentMethod"`
	Status        string         `json:"status"`
	TrialEnds     time.Time      `json:"trialEnds"`
}

// ProcessPayment simulates a successful card payment and returns the order
// confirmation the checkout page renders.
func ProcessPayment(logger *slog.Logger, req *PaymentRequest) (*Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Processing payment",
		slog.String("plan", req.Plan),
		slog.Float64("amount", req.Amount),
		slog.String("customer_email", req.Account.Email))

	now := time.Now().UTC()
	return &Order{
		OrderID: "order_" + uuid.NewString(),
		Plan:    req.Plan,
		Amount:  req.Amount,
		Customer: map[string]any{
			"name":    req.Account.FirstName + " " + req.Account.LastName,
			"email":   req.Account.Email,
			"company": req.Account.Company,
			"website": req.Account.Website,
		},
		Billing: map[string]any{
			"address": req.Payment.BillingAddress,
			"city":    req.Payment.BillingCity,
			"state":   req.Payment.BillingState,
			"zip":     req.Payment.BillingZip,
			"country": req.Payment.BillingCountry,
		},
		PaymentMethod: map[string]any{
			"last4":          req.Payment.CardLast4,
			"cardholderName": req.Payment.CardName,
		},
		Status:    "trial_started",
		TrialEnds: now.AddDate(0, 0, trialDays),
	}, nil
}

// SignupRequest is the SaaS signup input.
type SignupRequest struct {
	Plan    string       `json:"plan"`
	Account *AccountInfo `json:"account"`
}

// Validate checks the signup request.
func (r *SignupRequest) Validate() error {
	if r.Account == nil {
		return fmt.Errorf("missing account information")
	}
	if r.Account.Email == "" || r.Account.FirstName == "" || r.Account.LastName == "" {
		return fmt.Errorf("missing required account details")
	}
	return nil
}

// SaaSAccount is the simulated provisioned account returned by signup.
type SaaSAccount struct {
	UserID       string         `json:"userId"`
	Plan         map[string]any `json:"plan"`
	Account      map[string]any `json:"account"`
	Subscription map[string]any `json:"subscription"`
	Workspace    map[string]any `json:"workspace"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// ProcessSignup simulates provisioning a SaaS trial account. Unknown plan keys
// fall back to the professional tier.
func ProcessSignup(logger *slog.Logger, req *SignupRequest) (*SaaSAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan := LookupPlan(req.Plan)
	logger.Info("Processing SaaS signup",
		slog.String("plan", plan.Name),
		slog.Float64("price", plan.Price),
		slog.String("customer_email", req.Account.Email))

	now := time.Now().UTC()
	trialEnds := now.AddDate(0, 0, trialDays)
	return &SaaSAccount{
		UserID: "tgn_" + uuid.NewString(),
		Plan: map[string]any{
			"name":     plan.Name,
			"price":    plan.Price,
			"features": plan.Features,
		},
		Account: map[string]any{
			"name":    req.Account.FirstName + " " + req.Account.LastName,
			"email":   req.Account.Email,
			"company": nilIfEmpty(req.Account.Company),
			"website": nilIfEmpty(req.Account.Website),
		},
		Subscription: map[string]any{
			"status":       "trial",
			"trialEnds":    trialEnds,
			"billingCycle": "monthly",
			"nextBilling":  trialEnds,
		},
		Workspace: map[string]any{
			"dashboardUrl": "https://app.tregnar.com/dashboard",
			"apiKey":       "tgn_" + uuid.NewString(),
			"limits":       plan.Limits,
		},
		Status:    "active_trial",
		CreatedAt: now,
	}, nil
}

// BusinessInfo describes the business buying the local SEO service.
type BusinessInfo struct {
	BusinessName string `json:"businessName"`
	BusinessType string `json:"businessType"`
	Location     string `json:"location"`
	Website      string `json:"website"`
	Description  string `json:"description"`
}

// ContactInfo is the service buyer's contact block.
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CheckoutRequest is the service checkout input.
type CheckoutRequest struct {
	BusinessInfo *BusinessInfo `json:"businessInfo"`
	ContactInfo  *ContactInfo  `json:"contactInfo"`
}

// Validate checks the checkout request.
func (r *CheckoutRequest) Validate() error {
	if r.BusinessInfo == nil || r.ContactInfo == nil {
		return fmt.Errorf("missing required business or contact information")
	}
	if r.BusinessInfo.BusinessName == "" || r.BusinessInfo.BusinessType == "" || r.BusinessInfo.Location == "" {
		return fmt.Errorf("missing required business information")
	}
	if r.ContactInfo.Name == "" || r.ContactInfo.Email == "" || r.ContactInfo.Phone == "" {
		return fmt.Errorf("missing required contact information")
	}
	return nil
}

// ServiceOrder is the simulated service signup confirmation.
type ServiceOrder struct {
	OrderID               string         `json:"orderId"`
	Service               string         `json:"service"`
	MonthlyPrice          float64        `json:"monthlyPrice"`
	Business              map[string]any `json:"business"`
	Customer              map[string]any `json:"customer"`
	Services              []string       `json:"services"`
	Status                string         `json:"status"`
	NextSteps             []string       `json:"nextSteps"`
	ConsultationScheduled time.Time      `json:"consultationScheduled"`
	MonthlyBilling        time.Time      `json:"monthlyBilling"`
}

// ProcessServiceCheckout simulates a done-for-you service signup.
func ProcessServiceCheckout(logger *slog.Logger, req *CheckoutRequest) (*ServiceOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Processing service checkout",
		slog.String("business", req.BusinessInfo.BusinessName),
		slog.String("location", req.BusinessInfo.Location),
		slog.String("customer_email", req.ContactInfo.Email))

	now := time.Now().UTC()
	return &ServiceOrder{
		OrderID:      "mbd_" + uuid.NewString(),
		Service:      serviceName,
		MonthlyPrice: serviceMonthlyPrice,
		Business: map[string]any{
			"name":        req.BusinessInfo.BusinessName,
			"type":        req.BusinessInfo.BusinessType,
			"location":    req.BusinessInfo.Location,
			"website":     nilIfEmpty(req.BusinessInfo.Website),
			"description": nilIfEmpty(req.BusinessInfo.Description),
		},
		Customer: map[string]any{
			"name":  req.ContactInfo.Name,
			"email": req.ContactInfo.Email,
			"phone": req.ContactInfo.Phone,
		},
		Services:              serviceInclusions,
		Status:                "consultation_scheduled",
		NextSteps:             serviceNextSteps,
		ConsultationScheduled: now.Add(consultationWithin),
		MonthlyBilling:        now.AddDate(0, 0, billingCycleDays),
	}, nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
