package esewa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbazaar/backend/pkg/config"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(config.EsewaConfig{
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
		Env:         "development",
		SuccessURL:  "https://skillbazaar.test/payments/callback",
		FailureURL:  "https://skillbazaar.test/payments/failed",
	})
	require.NoError(t, err)
	return client
}

func TestBuildPaymentFormSignsTotalAmount(t *testing.T) {
	client := testClient(t)

	form, err := client.BuildPaymentForm("11-201-13", decimal.NewFromInt(100))
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("8gBm/:&EnhH.1/q"))
	mac.Write([]byte("total_amount=100.00,transaction_uuid=11-201-13,product_code=EPAYTEST"))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, "100.00", form.TotalAmount)
	assert.Equal(t, "total_amount,transaction_uuid,product_code", form.SignedFields)
	assert.Equal(t, expected, form.Signature)
	assert.Equal(t, testFormURL, form.FormURL)
}

func TestBuildPaymentFormRejectsBadInput(t *testing.T) {
	client := testClient(t)

	_, err := client.BuildPaymentForm("", decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = client.BuildPaymentForm("uuid-1", decimal.Zero)
	assert.Error(t, err)
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	client := testClient(t)

	result := CallbackResult{
		TransactionCode:  "000AWEO",
		Status:           "COMPLETE",
		TotalAmount:      "100.00",
		TransactionUUID:  "11-201-13",
		ProductCode:      "EPAYTEST",
		SignedFieldNames: "total_amount,transaction_uuid,product_code",
	}
	message, err := buildSignedMessage(result)
	require.NoError(t, err)
	result.Signature = client.signRaw(message)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)

	verified, err := client.VerifyCallback(encoded)
	require.NoError(t, err)
	assert.Equal(t, "11-201-13", verified.TransactionUUID)
	assert.True(t, verified.Succeeded())
}

func TestVerifyCallbackRejectsTampering(t *testing.T) {
	client := testClient(t)

	result := CallbackResult{
		TransactionCode:  "000AWEO",
		Status:           "COMPLETE",
		TotalAmount:      "100.00",
		TransactionUUID:  "11-201-13",
		ProductCode:      "EPAYTEST",
		SignedFieldNames: "total_amount,transaction_uuid,product_code",
	}
	message, err := buildSignedMessage(result)
	require.NoError(t, err)
	result.Signature = client.signRaw(message)
	result.TotalAmount = "9999.00"

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)

	_, err = client.VerifyCallback(encoded)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifyCallbackRejectsGarbage(t *testing.T) {
	client := testClient(t)

	_, err := client.VerifyCallback("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrMalformedCallback)

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"transaction_uuid":""}`))
	_, err = client.VerifyCallback(encoded)
	assert.ErrorIs(t, err, ErrMalformedCallback)
}
