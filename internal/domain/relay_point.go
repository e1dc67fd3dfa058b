package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RelayPoint is the pickup point chosen for a relay delivery, as returned by
// the pickup-point lookup. It is stored as-is.
type RelayPoint struct {
	ID       *int     `json:"id,omitempty"`
	Num      string   `json:"Num"`
	Address1 string   `json:"LgAdr1"`
	Address2 string   `json:"LgAdr2,omitempty"`
	Address3 string   `json:"LgAdr3,omitempty"`
	Address4 string   `json:"LgAdr4,omitempty"`
	CP       string   `json:"CP"`
	City     string   `json:"Ville"`
	Country  string   `json:"Pays"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Name     string   `json:"name,omitempty"`
}

// ParseRelayPoint accepts either a JSON object or a JSON string holding an
// encoded object. Empty input and null yield a nil point.
func ParseRelayPoint(raw []byte) (*RelayPoint, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: relay point: %v", ErrInvalidInput, err)
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return nil, nil
		}
		raw = []byte(inner)
	}

	var p RelayPoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: relay point: %v", ErrInvalidInput, err)
	}
	if p.Num == "" || p.Address1 == "" || p.CP == "" || p.City == "" || p.Country == "" {
		return nil, fmt.Errorf("%w: relay point is missing required fields", ErrInvalidInput)
	}
	return &p, nil
}

func (p RelayPoint) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *RelayPoint) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		return nil
	default:
		return errors.New("relay point: unsupported column type")
	}
	return json.Unmarshal(data, p)
}
