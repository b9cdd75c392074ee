// Package esewa implements the eSewa ePay v2 merchant integration:
// signed payment form parameters for checkout and verification of the
// base64 callback payload eSewa posts back after a transaction.
package esewa

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/config"
)

const (
	testFormURL       = "https://rc-epay.esewa.com.np/api/epay/main/v2/form"
	productionFormURL = "https://epay.esewa.com.np/api/epay/main/v2/form"

	signedFieldNames = "total_amount,transaction_uuid,product_code"
)

// ErrSignatureMismatch signals a callback whose signature does not match our computation.
var ErrSignatureMismatch = fmt.Errorf("esewa signature mismatch")

// ErrMalformedCallback signals a callback body that cannot be decoded.
var ErrMalformedCallback = fmt.Errorf("malformed esewa callback")

// PaymentForm carries everything the frontend needs to POST to the gateway.
type PaymentForm struct {
	FormURL         string `json:"form_url"`
	Amount          string `json:"amount"`
	TaxAmount       string `json:"tax_amount"`
	TotalAmount     string `json:"total_amount"`
	TransactionUUID string `json:"transaction_uuid"`
	ProductCode     string `json:"product_code"`
	SuccessURL      string `json:"success_url"`
	FailureURL      string `json:"failure_url"`
	SignedFields    string `json:"signed_field_names"`
	Signature       string `json:"signature"`
}

// CallbackResult is the decoded payload eSewa posts to the success URL.
type CallbackResult struct {
	TransactionCode  string `json:"transaction_code"`
	Status           string `json:"status"`
	TotalAmount      string `json:"total_amount"`
	TransactionUUID  string `json:"transaction_uuid"`
	ProductCode      string `json:"product_code"`
	SignedFieldNames string `json:"signed_field_names"`
	Signature        string `json:"signature"`
}

// Succeeded reports whether the gateway marked the transaction complete.
func (c CallbackResult) Succeeded() bool {
	return strings.EqualFold(c.Status, "COMPLETE")
}

// Client signs payment forms and verifies gateway callbacks.
type Client struct {
	productCode string
	secretKey   []byte
	formURL     string
	successURL  string
	failureURL  string
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.EsewaConfig) (*Client, error) {
	if strings.TrimSpace(cfg.ProductCode) == "" {
		return nil, fmt.Errorf("esewa product code is required")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("esewa secret key is required")
	}

	formURL := testFormURL
	if cfg.Env == config.AppEnvProd {
		formURL = productionFormURL
	}

	return &Client{
		productCode: cfg.ProductCode,
		secretKey:   []byte(cfg.SecretKey),
		formURL:     formURL,
		successURL:  cfg.SuccessURL,
		failureURL:  cfg.FailureURL,
	}, nil
}

// BuildPaymentForm produces the signed form parameters for the given
// transaction. The transaction UUID must be unique per payment attempt.
func (c *Client) BuildPaymentForm(transactionUUID string, amount decimal.Decimal) (PaymentForm, error) {
	if strings.TrimSpace(transactionUUID) == "" {
		return PaymentForm{}, fmt.Errorf("transaction uuid is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return PaymentForm{}, fmt.Errorf("amount must be positive")
	}

	total := amount.StringFixed(2)
	signature := c.sign(total, transactionUUID, c.productCode)

	return PaymentForm{
		FormURL:         c.formURL,
		Amount:          total,
		TaxAmount:       "0",
		TotalAmount:     total,
		TransactionUUID: transactionUUID,
		ProductCode:     c.productCode,
		SuccessURL:      c.successURL,
		FailureURL:      c.failureURL,
		SignedFields:    signedFieldNames,
		Signature:       signature,
	}, nil
}

// VerifyCallback decodes the base64 callback body and checks its signature
// against the fields named in signed_field_names.
func (c *Client) VerifyCallback(encoded string) (CallbackResult, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return CallbackResult{}, ErrMalformedCallback
		}
	}

	var result CallbackResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return CallbackResult{}, ErrMalformedCallback
	}
	if result.TransactionUUID == "" || result.Signature == "" || result.SignedFieldNames == "" {
		return CallbackResult{}, ErrMalformedCallback
	}

	message, err := buildSignedMessage(result)
	if err != nil {
		return CallbackResult{}, err
	}

	expected := c.signRaw(message)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(result.Signature)) != 1 {
		return CallbackResult{}, ErrSignatureMismatch
	}

	return result, nil
}

func (c *Client) sign(totalAmount, transactionUUID, productCode string) string {
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", totalAmount, transactionUUID, productCode)
	return c.signRaw(message)
}

func (c *Client) signRaw(message string) string {
	mac := hmac.New(sha256.New, c.secretKey)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func buildSignedMessage(result CallbackResult) (string, error) {
	fields := strings.Split(result.SignedFieldNames, ",")
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		var value string
		switch field {
		case "transaction_code":
			value = result.TransactionCode
		case "status":
			value = result.Status
		case "total_amount":
			value = result.TotalAmount
		case "transaction_uuid":
			value = result.TransactionUUID
		case "product_code":
			value = result.ProductCode
		case "signed_field_names":
			value = result.SignedFieldNames
		default:
			return "", ErrMalformedCallback
		}
		parts = append(parts, fmt.Sprintf("%s=%s", field, value))
	}
	return strings.Join(parts, ","), nil
}
