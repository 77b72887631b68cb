package entity

// Account-identifier subtypes, carried in span Attrs under "subtype".
// Priority resolves same-range collisions between account detectors:
// higher wins.
const (
	SubtypeIBAN     = "iban"
	SubtypeSwiftBIC = "swift_bic"
	SubtypeRouting  = "routing_aba"
	SubtypeCard     = "cc"
	SubtypeSSN      = "ssn"
	SubtypeEIN      = "ein"
	SubtypeGeneric  = "generic"
)

// SubtypePriority ranks account subtypes for collision resolution.
var SubtypePriority = map[string]int{
	SubtypeIBAN:     7,
	SubtypeSwiftBIC: 6,
	SubtypeRouting:  5,
	SubtypeCard:     4,
	SubtypeSSN:      3,
	SubtypeEIN:      2,
	SubtypeGeneric:  1,
}

// Address-line kinds, carried in span Attrs under "kind" and in
// AddressLine.Kind.
const (
	AddrKindStreet       = "street"
	AddrKindUnit         = "unit"
	AddrKindCityStateZip = "city_state_zip"
	AddrKindPOBox        = "po_box"
)

// ZIP kinds recorded for city/state lines.
const (
	ZIP5 = "zip5"
	ZIP9 = "zip9"
)
