package robokassa

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// paymentFormURL is the merchant payment form endpoint. Test mode is
// selected with the IsTest parameter, not a separate host.
const paymentFormURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

// Config holds RoboKassa configuration
type Config struct {
	MerchantLogin string        // Merchant login (MrchLogin)
	Password1     string        // Password #1 for payment initialization
	Password2     string        // Password #2 for webhook verification (ResultURL)
	TestMode      bool          // Test mode flag
	HashAlgo      HashAlgorithm // Hash algorithm: MD5 or SHA256 (default: SHA256)
	Timeout       time.Duration
}

// Client represents RoboKassa payment gateway client
type Client struct {
	config Config
}

// CreatePaymentRequest represents payment creation request
type CreatePaymentRequest struct {
	Amount         float64           // Payment amount
	InvID          int64             // Invoice ID (unique order identifier)
	Description    string            // Payment description
	Email          string            // Optional: user email
	Culture        string            // Optional: interface language (ru, en)
	ExpirationDate string            // Optional: payment expiration (ISO 8601)
	OutSum         string            // Optional: pre-calculated amount string
	Shp            map[string]string // Optional: custom parameters (shp_*)
}

// CreatePaymentResponse represents payment creation response
// RoboKassa doesn't return JSON - we return the payment URL directly
type CreatePaymentResponse struct {
	PaymentURL string // URL to redirect user for payment
	InvID      int64  // Invoice ID
}

// NewClient creates new RoboKassa client
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
	}
}

// CreatePayment generates payment URL for user redirect.
// RoboKassa uses a GET redirect with a signed query, not an API call.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("validation error: amount must be > 0")
	}
	if req.InvID <= 0 {
		return nil, fmt.Errorf("validation error: invoice ID must be > 0")
	}
	if strings.TrimSpace(c.config.MerchantLogin) == "" {
		return nil, fmt.Errorf("robokassa config error: merchant_login is empty")
	}
	if strings.TrimSpace(c.config.Password1) == "" {
		return nil, fmt.Errorf("robokassa config error: password1 is empty")
	}

	outSum := fmt.Sprintf("%.2f", req.Amount)
	if req.OutSum != "" {
		outSum = req.OutSum
	}

	algo := c.config.HashAlgo
	if algo == "" {
		algo = HashSHA256
	}

	// Key casing is part of the signature base string.
	shpForSig := make(map[string]string)
	for k, v := range req.Shp {
		shpKey := k
		if !strings.HasPrefix(strings.ToLower(k), "shp_") {
			shpKey = "Shp_" + k
		}
		shpForSig[shpKey] = v
	}

	// Signature: Hash(MerchantLogin:OutSum:InvId:Password1[:Shp_params])
	signatureBase := BuildStartSignatureBase(
		c.config.MerchantLogin,
		outSum,
		strconv.FormatInt(req.InvID, 10),
		c.config.Password1,
		nil,
		shpForSig,
	)
	signature, err := Sign(signatureBase, algo)
	if err != nil {
		return nil, fmt.Errorf("robokassa: failed to sign payment request: %w", err)
	}

	params := url.Values{}
	params.Set("MerchantLogin", c.config.MerchantLogin)
	params.Set("OutSum", outSum)
	params.Set("InvId", strconv.FormatInt(req.InvID, 10))
	params.Set("Description", req.Description)
	params.Set("SignatureValue", signature)

	if c.config.TestMode {
		params.Set("IsTest", "1")
	}

	if req.Email != "" {
		params.Set("Email", req.Email)
	}

	if req.Culture != "" {
		params.Set("Culture", req.Culture)
	} else {
		params.Set("Culture", "ru")
	}

	if req.ExpirationDate != "" {
		params.Set("ExpirationDate", req.ExpirationDate)
	}

	for key, value := range shpForSig {
		params.Set(key, value)
	}

	return &CreatePaymentResponse{
		PaymentURL: paymentFormURL + "?" + params.Encode(),
		InvID:      req.InvID,
	}, nil
}
