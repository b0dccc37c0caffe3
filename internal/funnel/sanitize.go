package funnel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RedactionStrategy says how a sensitive form field is rewritten before storage.
type RedactionStrategy int

const (
	// RedactFully replaces the value with a fixed marker.
	RedactFully RedactionStrategy = iota
	// MaskEmail keeps the first two characters of the local part and the domain.
	MaskEmail
	// MaskPhone keeps the last four digits.
	MaskPhone
)

const redactedMarker = "[REDACTED]"

// redactionTable maps form field names to their redaction strategy. Keeping this
// as an explicit table makes the sanitization rules testable in one place.
var redactionTable = map[string]RedactionStrategy{
	"password":        RedactFully,
	"confirmPassword": RedactFully,
	"cardNumber":      RedactFully,
	"cvv":             RedactFully,
	"ssn":             RedactFully,
	"creditCard":      RedactFully,
	"email":           MaskEmail,
	"phone":           MaskPhone,
}

// FormInteractionPayload is the form_data variant for form_interaction events.
type FormInteractionPayload struct {
	FieldName string `json:"field_name"`
	Action    string `json:"action"`
}

var validInteractionActions = map[string]bool{
	"focus":  true,
	"blur":   true,
	"change": true,
	"error":  true,
}

// PaymentPayload is the form_data variant for payment_attempt and
// payment_complete events.
type PaymentPayload struct {
	OrderID string  `json:"order_id,omitempty"`
	Plan    string  `json:"plan"`
	Amount  float64 `json:"amount"`
}

// EncodeFormData validates the client-supplied form data against the schema for
// the event type, applies the redaction table, and returns the JSON text stored
// on the event. A nil map encodes to the empty string.
func EncodeFormData(eventType EventType, data map[string]any) (string, error) {
	if data == nil {
		return "", nil
	}

	switch eventType {
	case EventFormInteraction:
		payload, err := decodeInteraction(data)
		if err != nil {
			return "", err
		}
		return marshalFormData(payload)

	case EventPaymentAttempt, EventPaymentComplete:
		payload, err := decodePayment(eventType, data)
		if err != nil {
			return "", err
		}
		return marshalFormData(payload)

	case EventStepComplete:
		// Step completion carries free-form account fields; sanitize them.
		return marshalFormData(SanitizeFormData(data))

	default:
		return "", fmt.Errorf("event type %q does not accept form_data", eventType)
	}
}

func decodeInteraction(data map[string]any) (*FormInteractionPayload, error) {
	fieldName, _ := data["field_name"].(string)
	action, _ := data["action"].(string)
	if fieldName == "" {
		return nil, fmt.Errorf("form_interaction requires field_name")
	}
	if !validInteractionActions[action] {
		return nil, fmt.Errorf("invalid form_interaction action %q", action)
	}
	return &FormInteractionPayload{FieldName: fieldName, Action: action}, nil
}

func decodePayment(eventType EventType, data map[string]any) (*PaymentPayload, error) {
	plan, _ := data["plan"].(string)
	if plan == "" {
		return nil, fmt.Errorf("%s requires plan", eventType)
	}
	amount, ok := data["amount"].(float64)
	if !ok || amount < 0 {
		return nil, fmt.Errorf("%s requires a non-negative amount", eventType)
	}
	payload := &PaymentPayload{Plan: plan, Amount: amount}
	if orderID, _ := data["order_id"].(string); orderID != "" {
		payload.OrderID = orderID
	} else if eventType == EventPaymentComplete {
		return nil, fmt.Errorf("payment_complete requires order_id")
	}
	return payload, nil
}

func marshalFormData(v any) (string, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode form_data: %w", err)
	}
	return string(encoded), nil
}

// SanitizeFormData applies the redaction table to a free-form key/value payload.
// The input map is not modified. String values for fields listed in the table
// are rewritten; everything else passes through untouched.
func SanitizeFormData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]any, len(data))
	for key, value := range data {
		strategy, sensitive := redactionTable[key]
		str, isString := value.(string)
		if !sensitive || !isString || str == "" {
			sanitized[key] = value
			continue
		}

		switch strategy {
		case RedactFully:
			sanitized[key] = redactedMarker
		case MaskEmail:
			sanitized[key] = maskEmail(str)
		case MaskPhone:
			sanitized[key] = maskPhone(str)
		}
	}
	return sanitized
}

// RedactedFields lists the field names covered by the redaction table, sorted.
func RedactedFields() []string {
	fields := make([]string, 0, len(redactionTable))
	for field := range redactionTable {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// maskEmail keeps the first two characters of the local part and the domain:
// "johndoe@example.com" becomes "jo***@example.com".
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return redactedMarker
	}
	local, domain := email[:at], email[at+1:]
	prefix := local
	if len(local) > 2 {
		prefix = local[:2]
	}
	return prefix + "***@" + domain
}

// maskPhone replaces every digit except the last four with an asterisk,
// preserving separators.
func maskPhone(phone string) string {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	var b strings.Builder
	seen := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			seen++
			if digits-seen >= 4 {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
