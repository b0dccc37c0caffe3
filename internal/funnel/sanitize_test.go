package funnel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFormDataRedactsSensitiveFields(t *testing.T) {
	data := map[string]any{
		"password":        "hunter2",
		"confirmPassword": "hunter2",
		"cardNumber":      "4242424242424242",
		"cvv":             "123",
		"ssn":             "123-45-6789",
		"creditCard":      "4242424242424242",
		"firstName":       "John",
		"plan":            "professional",
	}

	sanitized := SanitizeFormData(data)

	for _, field := range []string{"password", "confirmPassword", "cardNumber", "cvv", "ssn", "creditCard"} {
		assert.Equal(t, "[REDACTED]", sanitized[field], field)
	}
	assert.Equal(t, "John", sanitized["firstName"])
	assert.Equal(t, "professional", sanitized["plan"])

	// Input must be untouched.
	assert.Equal(t, "hunter2", data["password"])
}

func TestSanitizeFormDataMasksEmailAndPhone(t *testing.T) {
	sanitized := SanitizeFormData(map[string]any{
		"email": "johndoe@example.com",
		"phone": "555-123-4567",
	})

	assert.Equal(t, "jo***@example.com", sanitized["email"])
	assert.Equal(t, "***-***-4567", sanitized["phone"])
}

func TestSanitizeFormDataEdgeCases(t *testing.T) {
	assert.Nil(t, SanitizeFormData(nil))

	sanitized := SanitizeFormData(map[string]any{
		"email":    "not-an-email",
		"phone":    "1234",
		"password": 42, // non-string sensitive value passes through
	})
	assert.Equal(t, "[REDACTED]", sanitized["email"])
	assert.Equal(t, "1234", sanitized["phone"])
	assert.Equal(t, 42, sanitized["password"])
}

func TestMaskEmailShortLocalPart(t *testing.T) {
	assert.Equal(t, "ab***@x.io", maskEmail("ab@x.io"))
	assert.Equal(t, "a***@x.io", maskEmail("a@x.io"))
	assert.Equal(t, "[REDACTED]", maskEmail("@x.io"))
}

func TestEncodeFormDataFormInteraction(t *testing.T) {
	encoded, err := EncodeFormData(EventFormInteraction, map[string]any{
		"field_name": "email",
		"action":     "focus",
	})
	require.NoError(t, err)

	var payload FormInteractionPayload
	require.NoError(t, json.Unmarshal([]byte(encoded), &payload))
	assert.Equal(t, "email", payload.FieldName)
	assert.Equal(t, "focus", payload.Action)

	_, err = EncodeFormData(EventFormInteraction, map[string]any{"action": "focus"})
	assert.Error(t, err)

	_, err = EncodeFormData(EventFormInteraction, map[string]any{
		"field_name": "email",
		"action":     "hover",
	})
	assert.Error(t, err)
}

func TestEncodeFormDataPayment(t *testing.T) {
	encoded, err := EncodeFormData(EventPaymentAttempt, map[string]any{
		"plan":   "professional",
		"amount": 149.0,
	})
	require.NoError(t, err)

	var payload PaymentPayload
	require.NoError(t, json.Unmarshal([]byte(encoded), &payload))
	assert.Equal(t, "professional", payload.Plan)
	assert.Equal(t, 149.0, payload.Amount)
	assert.Empty(t, payload.OrderID)

	// payment_complete must carry an order id.
	_, err = EncodeFormData(EventPaymentComplete, map[string]any{
		"plan":   "professional",
		"amount": 149.0,
	})
	assert.Error(t, err)

	encoded, err = EncodeFormData(EventPaymentComplete, map[string]any{
		"plan":     "professional",
		"amount":   149.0,
		"order_id": "order_abc",
	})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(encoded), &payload))
	assert.Equal(t, "order_abc", payload.OrderID)

	_, err = EncodeFormData(EventPaymentAttempt, map[string]any{"plan": "professional", "amount": -1.0})
	assert.Error(t, err)

	_, err = EncodeFormData(EventPaymentAttempt, map[string]any{"amount": 149.0})
	assert.Error(t, err)
}

func TestEncodeFormDataStepCompleteSanitizes(t *testing.T) {
	encoded, err := EncodeFormData(EventStepComplete, map[string]any{
		"email":    "johndoe@example.com",
		"password": "hunter2",
		"company":  "Acme",
	})
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(encoded), &stored))
	assert.Equal(t, "jo***@example.com", stored["email"])
	assert.Equal(t, "[REDACTED]", stored["password"])
	assert.Equal(t, "Acme", stored["company"])
}

func TestEncodeFormDataRejectsUnexpectedTypes(t *testing.T) {
	_, err := EncodeFormData(EventPageLoad, map[string]any{"anything": "x"})
	assert.Error(t, err)

	encoded, err := EncodeFormData(EventPageLoad, nil)
	require.NoError(t, err)
	assert.Empty(t, encoded)
}

func TestRedactedFieldsSortedAndComplete(t *testing.T) {
	fields := RedactedFields()
	assert.Equal(t, []string{
		"cardNumber", "confirmPassword", "creditCard", "cvv", "email", "password", "phone", "ssn",
	}, fields)
}
