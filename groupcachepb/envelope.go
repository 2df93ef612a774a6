// Package groupcachepb defines the peer RPC envelope: the request/response
// pair an HTTP (or other) peer transport exchanges to satisfy a Get for a
// key this process does not own.
//
// The wire format is field-compatible with the protobuf envelope used by
// golang/groupcache (group/key on the request; value/minute_qps on the
// response), encoded with google.golang.org/protobuf's low-level protowire
// primitives rather than protoc-generated code, since no protoc toolchain
// is available here to regenerate .pb.go files from a .proto source.
package groupcachepb

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// GetRequest is sent to a peer to fetch key within group.
type GetRequest struct {
	Group string
	Key   string
}

// Marshal encodes r to its wire form.
func (r *GetRequest) Marshal() []byte {
	var b []byte
	if r.Group != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, r.Group)
	}
	if r.Key != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, r.Key)
	}
	return b
}

// Unmarshal decodes b into r, which is reset to the zero value first.
func (r *GetRequest) Unmarshal(b []byte) error {
	*r = GetRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("groupcachepb: GetRequest: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("groupcachepb: GetRequest.group: %w", protowire.ParseError(n))
			}
			r.Group = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return fmt.Errorf("groupcachepb: GetRequest.key: %w", protowire.ParseError(n))
			}
			r.Key = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("groupcachepb: GetRequest: %w", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

// GetResponse is a peer's reply to a GetRequest.
type GetResponse struct {
	Value []byte
	// MinuteQps is informational only; the core orchestrator never
	// reads it (see spec §6). It's carried for wire compatibility with
	// callers that report load back to their peers.
	MinuteQps float64
}

// Marshal encodes r to its wire form.
func (r *GetResponse) Marshal() []byte {
	var b []byte
	if len(r.Value) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Value)
	}
	if r.MinuteQps != 0 {
		b = protowire.AppendTag(b, 2, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(r.MinuteQps))
	}
	return b
}

// Unmarshal decodes b into r, which is reset to the zero value first.
func (r *GetResponse) Unmarshal(b []byte) error {
	*r = GetResponse{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("groupcachepb: GetResponse: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("groupcachepb: GetResponse.value: %w", protowire.ParseError(n))
			}
			r.Value = append([]byte(nil), v...)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("groupcachepb: GetResponse.minute_qps: %w", protowire.ParseError(n))
			}
			r.MinuteQps = math.Float64frombits(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("groupcachepb: GetResponse: %w", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
