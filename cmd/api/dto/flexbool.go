package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexBool 은 폼에서 넘어오는 느슨한 불리언 값을 엄격한 bool 로 정규화한다.
// 필드가 없거나 null 이면 false 이다.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}

	switch data[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*b = FlexBool(v)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "on", "yes":
			*b = true
		case "", "false", "0", "off", "no":
			*b = false
		default:
			return fmt.Errorf("invalid boolean value %q", s)
		}
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid boolean value %s", data)
		}
		*b = n != 0
		return nil
	}
}

func (b FlexBool) Bool() bool { return bool(b) }
