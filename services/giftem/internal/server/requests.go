package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type addProductRequest struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         flexPrice `json:"price"`
	OriginalPrice flexPrice `json:"originalPrice"`
	Category      string    `json:"category"`
}

type userRefRequest struct {
	UserID string `json:"userId"`
}

type sendMessageRequest struct {
	Body string `json:"body"`
}

// flexPrice accepts a JSON number or a numeric string, as typed into a form.
// null and "" leave it unset.
type flexPrice struct {
	set   bool
	value float64
}

func (p *flexPrice) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("price %q is not a number", s)
		}
		p.set, p.value = true, v
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	p.set, p.value = true, v
	return nil
}
