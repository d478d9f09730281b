package grpc

import (
	"encoding/json"
)

// CodecName is the content-subtype clients use to reach this service.
const CodecName = "json"

// Codec carries messages as JSON so the service needs no generated stubs.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}
