package robokassa

import "testing"

func TestBuildStartSignatureBase_SortedShpAndEncoded(t *testing.T) {
	receipt := `{"items":[{"name":"Deposit recharge"}]}`
	base := BuildStartSignatureBase(
		"leadflow",
		"2500.00",
		"100042",
		"pass1",
		&receipt,
		map[string]string{
			"Shp_user":    "u+1",
			"Shp_deposit": "d/7",
		},
	)

	expected := "leadflow:2500.00:100042:%7B%22items%22%3A%5B%7B%22name%22%3A%22Deposit+recharge%22%7D%5D%7D:pass1:Shp_deposit=d%2F7:Shp_user=u%2B1"
	if base != expected {
		t.Fatalf("unexpected base string:\nwant %s\ngot  %s", expected, base)
	}
}

func TestVerifySignature_CaseInsensitive(t *testing.T) {
	if !VerifySignature("aBcD", "ABcd") {
		t.Fatal("expected case-insensitive constant-time comparison")
	}
}

func TestSign_SHA256(t *testing.T) {
	sig, err := Sign("abc", HashSHA256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected hash: %s", sig)
	}
}
