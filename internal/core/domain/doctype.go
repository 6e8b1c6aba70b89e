package domain

// DocType classifies an inventory document. The set is closed; persistence
// enforces it with a CHECK constraint and ParseDocType guards every entry
// point above it.
type DocType string

const (
	DocTypeInbound  DocType = "INBOUND"
	DocTypeOutbound DocType = "OUTBOUND"
	DocTypeAdjust   DocType = "ADJUST"
)

// ParseDocType validates a raw string against the closed doc-type set.
func ParseDocType(s string) (DocType, error) {
	t := DocType(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "doc_type", Reason: "must be one of INBOUND, OUTBOUND, ADJUST"}
	}
	return t, nil
}

func (t DocType) Valid() bool {
	switch t {
	case DocTypeInbound, DocTypeOutbound, DocTypeAdjust:
		return true
	}
	return false
}

// SignedDelta converts an as-entered quantity into its ledger contribution:
// INBOUND adds, OUTBOUND subtracts, ADJUST applies the quantity as a signed
// correction (negative for an adjust-down).
func (t DocType) SignedDelta(quantity int) int {
	if t == DocTypeOutbound {
		return -quantity
	}
	return quantity
}
