package crypto

import "testing"

func TestAddressRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i)
	}
	addr := NewAddress(PawnPrefix, raw)

	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(addr) {
		t.Fatalf("round trip mismatch: %s vs %s", decoded, addr)
	}
	if decoded.Prefix() != PawnPrefix {
		t.Fatalf("prefix %q, want %q", decoded.Prefix(), PawnPrefix)
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatal("expected error for invalid bech32")
	}
	// Valid bech32 with the wrong payload length.
	if _, err := DecodeAddress("pawn1qqqq7ly3zt"); err == nil {
		t.Fatal("expected error for short payload")
	}
}

func TestModuleAddressDeterministic(t *testing.T) {
	pool := ModuleAddress("pool")
	if pool.IsZero() {
		t.Fatal("module address must not be zero")
	}
	if !pool.Equal(ModuleAddress("pool")) {
		t.Fatal("module address not deterministic")
	}
	if pool.Equal(ModuleAddress("escrow")) {
		t.Fatal("distinct modules share an address")
	}
}

func TestKeyAddressDerivation(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	if addr.IsZero() {
		t.Fatal("derived address is zero")
	}
	if len(addr.Bytes()) != 20 {
		t.Fatalf("address length %d, want 20", len(addr.Bytes()))
	}
}
