package cart

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// RawLine is a cart line as the storefront AJAX API reports it
// (GET /cart.js) and as the save endpoint receives it.
type RawLine struct {
	VariantID     string            `json:"id"`
	Quantity      int               `json:"quantity"`
	Properties    map[string]string `json:"properties,omitempty"`
	SellingPlanID string            `json:"selling_plan,omitempty"`
}

// LineItem is one canonical cart entry. Identity is the tuple
// (VariantID, sorted Properties, SellingPlanID); Quantity is a value and
// never part of identity.
type LineItem struct {
	VariantID     string            `json:"id"`
	Quantity      int               `json:"quantity"`
	Properties    map[string]string `json:"properties,omitempty"`
	SellingPlanID string            `json:"selling_plan,omitempty"`
}

// Snapshot is one customer's cart at a point in time. No two entries share
// an identity tuple; order is insignificant for equality but preserved so a
// restore replays lines in the order the shopper added them.
type Snapshot []LineItem

// Normalize converts raw storefront lines into a canonical Snapshot.
// Duplicate identities are merged by summing quantity, keeping the position
// of the first occurrence. An empty properties map and an absent one
// canonicalize to the same thing (nil), so {} and missing compare equal.
func Normalize(rawLines []RawLine) Snapshot {
	snap := make(Snapshot, 0, len(rawLines))
	index := make(map[string]int, len(rawLines))

	for _, raw := range rawLines {
		if raw.VariantID == "" || raw.Quantity <= 0 {
			continue
		}
		item := LineItem{
			VariantID:     raw.VariantID,
			Quantity:      raw.Quantity,
			Properties:    raw.Properties,
			SellingPlanID: raw.SellingPlanID,
		}
		if len(item.Properties) == 0 {
			item.Properties = nil
		}

		key := item.identity()
		if i, ok := index[key]; ok {
			snap[i].Quantity += item.Quantity
			continue
		}
		index[key] = len(snap)
		snap = append(snap, item)
	}

	return snap
}

// RawLines renders the snapshot back into storefront form, preserving order
// for restore replay.
func (s Snapshot) RawLines() []RawLine {
	lines := make([]RawLine, len(s))
	for i, item := range s {
		lines[i] = RawLine{
			VariantID:     item.VariantID,
			Quantity:      item.Quantity,
			Properties:    item.Properties,
			SellingPlanID: item.SellingPlanID,
		}
	}
	return lines
}

// Equal reports whether two snapshots hold the same lines, ignoring order.
// Each side renders to a sorted list of "variantID:qty:propsJSON:plan"
// strings; properties serialize with sorted keys so incidental map ordering
// cannot flip the result. This is a change detector, not a security check.
func Equal(a, b Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	return strings.Join(a.fingerprint(), "\n") == strings.Join(b.fingerprint(), "\n")
}

func (s Snapshot) fingerprint() []string {
	lines := make([]string, len(s))
	for i, item := range s {
		lines[i] = item.VariantID + ":" + strconv.Itoa(item.Quantity) + ":" +
			sortedPropsJSON(item.Properties) + ":" + item.SellingPlanID
	}
	sort.Strings(lines)
	return lines
}

func (item LineItem) identity() string {
	return item.VariantID + ":" + sortedPropsJSON(item.Properties) + ":" + item.SellingPlanID
}

func sortedPropsJSON(props map[string]string) string {
	if len(props) == 0 {
		return "{}"
	}
	// encoding/json writes map keys in sorted order, which is exactly the
	// canonical form the identity tuple needs.
	b, err := json.Marshal(props)
	if err != nil {
		return "{}"
	}
	return string(b)
}
