package resolve

import "testing"

func TestOptionKey_RoundTrip(t *testing.T) {
	for _, slot := range []SlotType{SlotFrom, SlotTo} {
		t.Run(string(slot), func(t *testing.T) {
			key := OptionKey{ID: 42, Type: slot}
			parsed, err := ParseOptionKey(EncodeOptionKey(key))
			if err != nil {
				t.Fatalf("ParseOptionKey: %v", err)
			}
			if parsed != key {
				t.Errorf("round trip = %+v, want %+v", parsed, key)
			}
		})
	}
}

func TestParseOptionKey_Malformed(t *testing.T) {
	if _, err := ParseOptionKey("{broken"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestEncodeOptionKey_WireFormat(t *testing.T) {
	got := EncodeOptionKey(OptionKey{ID: 7, Type: SlotTo})
	if got != `{"id":7,"type":"to"}` {
		t.Errorf("EncodeOptionKey = %s", got)
	}
}
