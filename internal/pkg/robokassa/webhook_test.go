package robokassa

import "testing"

func TestParseWebhookForm_PreservesShpKeyCase(t *testing.T) {
	payload, err := ParseWebhookForm(map[string][]string{
		"OutSum":         {"2500.00"},
		"InvId":          {"100042"},
		"SignatureValue": {"sig"},
		"Shp_depositId":  {"d-7"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Shp["Shp_depositId"] != "d-7" {
		t.Fatalf("expected original shp key preserved, got: %#v", payload.Shp)
	}
}

func TestParseWebhookForm_MissingInvId(t *testing.T) {
	_, err := ParseWebhookForm(map[string][]string{
		"OutSum":         {"2500.00"},
		"SignatureValue": {"sig"},
	})
	if err == nil {
		t.Fatal("expected error for missing InvId")
	}
}
