package main

import (
	"github.com/goccy/go-json"
)

// jsonCodec 服务的消息均为普通结构体，使用JSON编码，替换connect内置的protojson
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
