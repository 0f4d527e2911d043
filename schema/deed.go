package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PropertyType is the single source of truth for the deed property kinds.
// The on-chain contract uses its own uint8 encoding; ChainEnum is the only
// place the two are mapped.
type PropertyType uint8

const (
	House PropertyType = iota
	Apartment
	Commercial
)

var propertyTypeLabels = map[PropertyType]string{
	House:      "House",
	Apartment:  "Apartment",
	Commercial: "Commercial",
}

var propertyTypeSlugs = map[PropertyType]string{
	House:      "house",
	Apartment:  "apartment",
	Commercial: "commercial",
}

// chainEnums maps PropertyType to the NFTDeedMint contract encoding.
var chainEnums = map[PropertyType]uint8{
	House:      0,
	Apartment:  1,
	Commercial: 2,
}

func (t PropertyType) Valid() bool {
	_, ok := propertyTypeLabels[t]
	return ok
}

func (t PropertyType) Label() string {
	return propertyTypeLabels[t]
}

func (t PropertyType) Slug() string {
	return propertyTypeSlugs[t]
}

func (t PropertyType) ChainEnum() uint8 {
	return chainEnums[t]
}

func ParsePropertyType(s string) (PropertyType, error) {
	for t, slug := range propertyTypeSlugs {
		if strings.EqualFold(s, slug) || strings.EqualFold(s, propertyTypeLabels[t]) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown property type: %s", s)
}

// PropertySizes lists the allowed sizes (m²) per property type.
var PropertySizes = map[PropertyType][]int64{
	House:      {150, 220},
	Apartment:  {90, 120},
	Commercial: {500, 1500},
}

// PriceTable holds the fixed ETH price per property size, matching the
// constants the NFTDeedMint contract was deployed with. Six entries, no
// formula.
var PriceTable = map[int64]decimal.Decimal{
	90:   decimal.RequireFromString("0.01"),
	120:  decimal.RequireFromString("0.015"),
	150:  decimal.RequireFromString("0.02"),
	220:  decimal.RequireFromString("0.03"),
	500:  decimal.RequireFromString("0.04"),
	1500: decimal.RequireFromString("0.05"),
}

// MintingPriceETH returns the fixed ETH price for a property size.
func MintingPriceETH(size int64) (decimal.Decimal, bool) {
	p, ok := PriceTable[size]
	return p, ok
}

func ValidSize(t PropertyType, size int64) bool {
	for _, s := range PropertySizes[t] {
		if s == size {
			return true
		}
	}
	return false
}

const (
	AddressMinLen = 10
	AddressMaxLen = 200
	LegalMaxLen   = 500
)

// letters, digits, space, comma, period, hyphen
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,.-]+$`)

// DeedForm is the validated wizard output; immutable once submitted to an
// attempt.
type DeedForm struct {
	PropertyType     PropertyType `json:"propertyType"`
	PropertySize     int64        `json:"propertySize"`
	PropertyAddress  string       `json:"propertyAddress"`
	LegalDescription string       `json:"legalDescription"`
}

func (f DeedForm) Validate() error {
	if !f.PropertyType.Valid() {
		return ErrInvalidPropertyType
	}
	if !ValidSize(f.PropertyType, f.PropertySize) {
		return ErrInvalidPropertySize
	}
	if err := ValidateAddress(f.PropertyAddress); err != nil {
		return err
	}
	if len(f.LegalDescription) > LegalMaxLen {
		return ErrLegalTooLong
	}
	return nil
}

// ValidateAddress applies the property address rules on their own, so the
// wizard can gate the address step before the rest of the form is filled.
func ValidateAddress(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return ErrAddressRequired
	}
	if len(addr) < AddressMinLen {
		return ErrAddressTooShort
	}
	if len(addr) > AddressMaxLen {
		return ErrAddressTooLong
	}
	if !addressPattern.MatchString(addr) {
		return ErrAddressCharset
	}
	return nil
}

// Price returns the ETH price for the form's size; Validate must have
// passed first.
func (f DeedForm) Price() decimal.Decimal {
	return PriceTable[f.PropertySize]
}

// FormPatch is a partial form update from the wizard UI; nil fields are
// left untouched.
type FormPatch struct {
	PropertyType     *PropertyType `json:"propertyType"`
	PropertySize     *int64        `json:"propertySize"`
	PropertyAddress  *string       `json:"propertyAddress"`
	LegalDescription *string       `json:"legalDescription"`
}

func (p FormPatch) Empty() bool {
	return p.PropertyType == nil && p.PropertySize == nil && p.PropertyAddress == nil && p.LegalDescription == nil
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeAddress mirrors the contract's normalizeAddress: lowercase with
// whitespace runs collapsed. Used only for the UX duplicate pre-check; the
// contract keeps the authoritative version.
func NormalizeAddress(s string) string {
	return strings.ToLower(spaceRun.ReplaceAllString(strings.TrimSpace(s), " "))
}
