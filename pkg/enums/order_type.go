package enums

import "fmt"

// OrderType distinguishes quoted orders from prepaid ones.
type OrderType string

const (
	OrderTypeOrder OrderType = "Order"
	OrderTypePaid  OrderType = "Paid"
)

func (t OrderType) String() string {
	return string(t)
}

// RequiresPOType reports whether a purchase-order type must accompany the order.
func (t OrderType) RequiresPOType() bool {
	return t == OrderTypePaid
}

// POType identifies the purchase-order book a paid order was raised against.
type POType string

const (
	POTypeNexa     POType = "Nexa"
	POTypeCarvello POType = "Carvello"
)

var validPOTypes = []POType{POTypeNexa, POTypeCarvello}

func (p POType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known POType.
func (p POType) IsValid() bool {
	for _, candidate := range validPOTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePOType converts raw input into a POType.
func ParsePOType(value string) (POType, error) {
	for _, candidate := range validPOTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid po type %q", value)
}
