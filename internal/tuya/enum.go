package tuya

import (
	"encoding/json"
	"fmt"
)

// EnumTypeData is the parsed type declaration of an Enum data point.
type EnumTypeData struct {
	DPCode DPCode
	Range  []string
}

// ParseEnumTypeData parses the values JSON of an Enum declaration,
// e.g. {"range":["low","mid","high"]}.
func ParseEnumTypeData(code DPCode, values string) (*EnumTypeData, error) {
	var parsed struct {
		Range *[]string `json:"range"`
	}
	if err := json.Unmarshal([]byte(values), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTypeData, code, err)
	}
	if parsed.Range == nil {
		return nil, fmt.Errorf("%w: %s: missing range", ErrInvalidTypeData, code)
	}

	return &EnumTypeData{DPCode: code, Range: *parsed.Range}, nil
}

// Contains reports whether option is one of the enum's values.
func (e *EnumTypeData) Contains(option string) bool {
	for _, v := range e.Range {
		if v == option {
			return true
		}
	}
	return false
}
