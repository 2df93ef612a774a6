package groupcachepb

import "testing"

func TestGetRequestRoundTrip(t *testing.T) {
	in := &GetRequest{Group: "colors", Key: "red"}
	b := in.Marshal()

	var out GetRequest
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Group != in.Group || out.Key != in.Key {
		t.Fatalf("round-trip = %+v, want %+v", out, in)
	}
}

func TestGetResponseRoundTrip(t *testing.T) {
	in := &GetResponse{Value: []byte("#FF0000"), MinuteQps: 12.5}
	b := in.Marshal()

	var out GetResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(out.Value) != string(in.Value) || out.MinuteQps != in.MinuteQps {
		t.Fatalf("round-trip = %+v, want %+v", out, in)
	}
}

func TestGetResponseZeroValueOmitsFields(t *testing.T) {
	in := &GetResponse{}
	b := in.Marshal()
	if len(b) != 0 {
		t.Fatalf("Marshal of zero value = %d bytes, want 0", len(b))
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	// Field 3, varint type, value 99 — not modeled by GetRequest, but a
	// well-behaved Unmarshal skips it rather than erroring, so the wire
	// format can grow new fields without breaking old readers.
	b := (&GetRequest{Group: "g", Key: "k"}).Marshal()
	b = append(b, 0x18, 0x63) // tag=3<<3|0 (varint), value=99

	var out GetRequest
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal with unknown trailing field: %v", err)
	}
	if out.Group != "g" || out.Key != "k" {
		t.Fatalf("round-trip with unknown field = %+v", out)
	}
}

func TestUnmarshalInvalidBytes(t *testing.T) {
	var out GetRequest
	if err := out.Unmarshal([]byte{0xFF}); err == nil {
		t.Fatalf("expected error decoding garbage bytes")
	}
}
