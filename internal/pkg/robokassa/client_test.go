package robokassa

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

func TestCreatePayment_ShpPrefixedKeyNotDoublePrefixed(t *testing.T) {
	client := NewClient(Config{
		MerchantLogin: "leadflow",
		Password1:     "p1",
		HashAlgo:      HashSHA256,
	})

	resp, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		Amount: 2500,
		InvID:  100042,
		Shp: map[string]string{
			"Shp_deposit": "d-7",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(resp.PaymentURL)
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}
	q := u.Query()
	if q.Get("Shp_deposit") != "d-7" {
		t.Fatalf("expected Shp_deposit param, got query: %s", u.RawQuery)
	}
	if strings.Contains(u.RawQuery, "Shp_Shp_deposit") {
		t.Fatalf("unexpected double-prefixed shp parameter: %s", u.RawQuery)
	}
}

func TestCreatePayment_UnprefixedShpKeyGetsPrefixed(t *testing.T) {
	client := NewClient(Config{
		MerchantLogin: "leadflow",
		Password1:     "p1",
		HashAlgo:      HashSHA256,
	})

	resp, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		Amount: 2500,
		InvID:  100043,
		Shp:    map[string]string{"deposit": "d-7"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(resp.PaymentURL)
	if err != nil {
		t.Fatalf("failed to parse url: %v", err)
	}
	if u.Query().Get("Shp_deposit") != "d-7" {
		t.Fatalf("expected prefixed Shp_deposit param, got query: %s", u.RawQuery)
	}
}
