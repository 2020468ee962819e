package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// MoneyMap stores named amounts (role rates, additional services) as a JSON column.
type MoneyMap map[string]decimal.Decimal

func (m MoneyMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *MoneyMap) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*m = MoneyMap{}
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, m)
}

// GormDataType keeps the column portable between postgres and sqlite.
func (MoneyMap) GormDataType() string {
	return "text"
}

// Sum adds every amount in the map.
func (m MoneyMap) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
