package proto

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName - имя кодека сообщений сервиса
const CodecName = "json"

// jsonCodec сериализует сообщения сервиса в JSON. Типы сообщений описаны
// вручную, без protoc, поэтому стандартный protobuf-кодек к ним неприменим.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

// Codec возвращает кодек сообщений сервиса
func Codec() encoding.Codec {
	return jsonCodec{}
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
