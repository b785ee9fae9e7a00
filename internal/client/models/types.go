package models

import (
	"regexp"
	"strings"

	dErrors "clientele/pkg/domain-errors"
)

// Value types are validated at construction; holding one of these types
// means the value already satisfies its invariant. Stores and handlers
// rebuild them through the same constructors so no other validation path
// exists.

var (
	namePattern        = regexp.MustCompile(`^[a-zA-Z ,.'-]+$`)
	addressLinePattern = regexp.MustCompile(`^[a-zA-Z0-9 ,.'-]+$`)
	postalCodePattern  = regexp.MustCompile(`^[A-Z0-9]{5}$`)
)

// PersonName is a surname or given name: letters, spaces and ,.'- only,
// 2 to 50 characters.
type PersonName string

// NewPersonName validates and constructs a PersonName.
func NewPersonName(s string) (PersonName, error) {
	if len(s) < 2 || len(s) > 50 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "name must be 2 to 50 characters")
	}
	if !namePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "name contains invalid characters")
	}
	return PersonName(s), nil
}

func (n PersonName) String() string { return string(n) }

// AddressLine is one free-text address line: alphanumerics, spaces and
// ,.'- only, 2 to 50 characters.
type AddressLine string

// NewAddressLine validates and constructs an AddressLine.
func NewAddressLine(s string) (AddressLine, error) {
	if len(s) < 2 || len(s) > 50 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address line must be 2 to 50 characters")
	}
	if !addressLinePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address line contains invalid characters")
	}
	return AddressLine(s), nil
}

func (l AddressLine) String() string { return string(l) }

// PostalCode is exactly five uppercase letters or digits.
type PostalCode string

// NewPostalCode validates and constructs a PostalCode.
func NewPostalCode(s string) (PostalCode, error) {
	if !postalCodePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "postal code must be exactly 5 uppercase letters or digits")
	}
	return PostalCode(s), nil
}

func (p PostalCode) String() string { return string(p) }

// CityName shares the PersonName character class, 2 to 50 characters.
type CityName string

// NewCityName validates and constructs a CityName.
func NewCityName(s string) (CityName, error) {
	if len(s) < 2 || len(s) > 50 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "city must be 2 to 50 characters")
	}
	if !namePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "city contains invalid characters")
	}
	return CityName(s), nil
}

func (c CityName) String() string { return string(c) }

// FamilySituation is the enumerated marital status of a client.
type FamilySituation string

const (
	Single     FamilySituation = "SINGLE"
	Married    FamilySituation = "MARRIED"
	Divorced   FamilySituation = "DIVORCED"
	Widowed    FamilySituation = "WIDOWED"
	CivilUnion FamilySituation = "CIVIL_UNION"
)

// ParseFamilySituation validates a wire value against the known variants.
func ParseFamilySituation(s string) (FamilySituation, error) {
	switch FamilySituation(strings.ToUpper(s)) {
	case Single, Married, Divorced, Widowed, CivilUnion:
		return FamilySituation(strings.ToUpper(s)), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "unknown family situation")
}

func (f FamilySituation) String() string { return string(f) }

// ChildrenCount is bounded to 0..20.
type ChildrenCount int

// NewChildrenCount validates and constructs a ChildrenCount.
func NewChildrenCount(n int) (ChildrenCount, error) {
	if n < 0 || n > 20 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "children count must be between 0 and 20")
	}
	return ChildrenCount(n), nil
}

func (c ChildrenCount) Int() int { return int(c) }

// Address is a postal address. Line2 is optional; a nil Line2 is not the
// same as an empty one, and equality requires presence to match.
type Address struct {
	Line1      AddressLine
	Line2      *AddressLine
	PostalCode PostalCode
	City       CityName
}

// NewAddress builds an address from validated parts. line2 may be nil.
func NewAddress(line1 AddressLine, line2 *AddressLine, postalCode PostalCode, city CityName) Address {
	if line2 != nil {
		// Copy so the address does not alias caller-owned memory.
		l2 := *line2
		line2 = &l2
	}
	return Address{Line1: line1, Line2: line2, PostalCode: postalCode, City: city}
}

// Equal reports field-by-field equality. Line2 must match in both
// presence and value.
func (a Address) Equal(other Address) bool {
	if a.Line1 != other.Line1 || a.PostalCode != other.PostalCode || a.City != other.City {
		return false
	}
	if (a.Line2 == nil) != (other.Line2 == nil) {
		return false
	}
	return a.Line2 == nil || *a.Line2 == *other.Line2
}
