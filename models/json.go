package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonScan decodes a jsonb column into dest. gorm hands us either
// []byte or string depending on the driver.
func jsonScan(dest interface{}, value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported type %T for jsonb column", value)
	}
}

func jsonValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}
