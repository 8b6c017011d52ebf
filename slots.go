package gnucashxml

import (
	"fmt"
	"math/big"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// SlotType identifies which variant a SlotValue holds.
type SlotType int

const (
	SlotString SlotType = iota
	SlotGUID
	SlotInteger
	SlotNumeric
	SlotDate
	SlotTime
	SlotFrame
)

func (t SlotType) String() string {
	switch t {
	case SlotString:
		return "string"
	case SlotGUID:
		return "guid"
	case SlotInteger:
		return "integer"
	case SlotNumeric:
		return "numeric"
	case SlotDate:
		return "gdate"
	case SlotTime:
		return "timespec"
	case SlotFrame:
		return "frame"
	}
	return fmt.Sprintf("SlotType(%d)", int(t))
}

// SlotValue is one decoded slot value: a tagged variant over the closed set
// of slot types GnuCash writes. Switch on Kind and use the matching accessor.
type SlotValue struct {
	Kind SlotType

	str   string
	num   *big.Int
	rat   *big.Rat
	tm    time.Time
	frame Slots
}

// Str returns the value of a string slot.
func (v SlotValue) Str() (string, bool) {
	return v.str, v.Kind == SlotString
}

// GUID returns the value of a guid slot. The token is opaque; it is not
// validated as a UUID.
func (v SlotValue) GUID() (string, bool) {
	return v.str, v.Kind == SlotGUID
}

// Int returns the value of an integer slot.
func (v SlotValue) Int() (*big.Int, bool) {
	return v.num, v.Kind == SlotInteger
}

// Numeric returns the exact rational value of a numeric slot.
func (v SlotValue) Numeric() (*big.Rat, bool) {
	return v.rat, v.Kind == SlotNumeric
}

// Date returns the value of a gdate slot.
func (v SlotValue) Date() (time.Time, bool) {
	return v.tm, v.Kind == SlotDate
}

// Time returns the value of a timespec slot.
func (v SlotValue) Time() (time.Time, bool) {
	return v.tm, v.Kind == SlotTime
}

// Frame returns the nested slots of a frame slot.
func (v SlotValue) Frame() (Slots, bool) {
	return v.frame, v.Kind == SlotFrame
}

// Decimal returns a numeric or integer slot as a decimal. See ratDecimal for
// rounding of non-terminating quotients.
func (v SlotValue) Decimal() (decimal.Decimal, bool) {
	switch v.Kind {
	case SlotNumeric:
		return ratDecimal(v.rat), true
	case SlotInteger:
		return decimal.NewFromBigInt(v.num, 0), true
	}
	return decimal.Decimal{}, false
}

// Slots maps slot keys to decoded values. Keys are unique per level; nesting
// happens through frame values.
type Slots map[string]SlotValue

// UnknownSlotTypeError is returned when a slot value carries a type attribute
// outside the known variant set. Unknown metadata is a hard failure: dropping
// it silently would corrupt consumers that rely on specific keys.
type UnknownSlotTypeError struct {
	Type string
}

func (e *UnknownSlotTypeError) Error() string {
	return fmt.Sprintf("unknown slot type %q", e.Type)
}

// slots decodes a container of <slot> children into a Slots map. A nil
// element means the entity carried no slots at all and yields an empty map.
// Frames recurse into this same decoder with the value element acting as the
// container.
func (p *parser) slots(el *etree.Element) (Slots, error) {
	slots := Slots{}
	if el == nil {
		return slots, nil
	}
	for _, se := range findChildren(el, "", "slot") {
		key, err := childText(se, nsSlot, "key")
		if err != nil {
			return nil, err
		}
		value := findChild(se, nsSlot, "value")
		if value == nil {
			return nil, fmt.Errorf("slot %q: %w: slot:value", key, ErrMissingElement)
		}
		decoded, err := p.slotValue(value)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", key, err)
		}
		slots[key] = decoded
	}
	return slots, nil
}

func (p *parser) slotValue(value *etree.Element) (SlotValue, error) {
	switch typ := value.SelectAttrValue("type", "string"); typ {
	case "integer":
		n, ok := new(big.Int).SetString(value.Text(), 10)
		if !ok {
			return SlotValue{}, fmt.Errorf("%w: integer %q", ErrAmountSyntax, value.Text())
		}
		return SlotValue{Kind: SlotInteger, num: n}, nil
	case "numeric":
		r, err := ParseAmount(value.Text())
		if err != nil {
			return SlotValue{}, err
		}
		return SlotValue{Kind: SlotNumeric, rat: r}, nil
	case "string":
		return SlotValue{Kind: SlotString, str: value.Text()}, nil
	case "guid":
		return SlotValue{Kind: SlotGUID, str: value.Text()}, nil
	case "gdate":
		text, err := childText(value, "", "gdate")
		if err != nil {
			return SlotValue{}, err
		}
		t, err := p.parseDate(text)
		if err != nil {
			return SlotValue{}, err
		}
		return SlotValue{Kind: SlotDate, tm: t}, nil
	case "timespec":
		text, err := childText(value, nsTS, "date")
		if err != nil {
			return SlotValue{}, err
		}
		t, err := p.parseDate(text)
		if err != nil {
			return SlotValue{}, err
		}
		return SlotValue{Kind: SlotTime, tm: t}, nil
	case "frame":
		nested, err := p.slots(value)
		if err != nil {
			return SlotValue{}, err
		}
		return SlotValue{Kind: SlotFrame, frame: nested}, nil
	default:
		return SlotValue{}, &UnknownSlotTypeError{Type: typ}
	}
}
