package utils

import (
	"encoding/base64"
	"fmt"
)

func EncodeKey(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

func DecodeKey(b64 string, expectedLen int) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	if len(data) != expectedLen {
		return nil, fmt.Errorf("expected %d bytes, got %d", expectedLen, len(data))
	}
	return data, nil
}
