// Package quickdeliverv1 defines the quickdeliver.v1 gRPC services. Messages
// are plain Go structs carried by a JSON codec registered under the "json"
// content-subtype; clients select it with grpc.CallContentSubtype(Codec).
package quickdeliverv1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec is the content-subtype every quickdeliver.v1 call uses.
const Codec = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return Codec }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
