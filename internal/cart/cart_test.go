package cart

import (
	"encoding/json"
	"testing"
)

func TestNormalizeMergesDuplicateIdentities(t *testing.T) {
	raw := []RawLine{
		{VariantID: "V1", Quantity: 1},
		{VariantID: "V2", Quantity: 2},
		{VariantID: "V1", Quantity: 3},
	}

	snap := Normalize(raw)

	if len(snap) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(snap))
	}
	if snap[0].VariantID != "V1" || snap[0].Quantity != 4 {
		t.Fatalf("expected V1 merged to quantity 4, got %+v", snap[0])
	}
	if snap[1].VariantID != "V2" || snap[1].Quantity != 2 {
		t.Fatalf("expected V2 quantity 2, got %+v", snap[1])
	}
}

func TestNormalizeIdentityIncludesPropertiesAndPlan(t *testing.T) {
	raw := []RawLine{
		{VariantID: "V1", Quantity: 1, Properties: map[string]string{"engraving": "mom"}},
		{VariantID: "V1", Quantity: 1},
		{VariantID: "V1", Quantity: 1, SellingPlanID: "plan-1"},
		{VariantID: "V1", Quantity: 1, Properties: map[string]string{"engraving": "mom"}},
	}

	snap := Normalize(raw)

	if len(snap) != 3 {
		t.Fatalf("expected 3 distinct identities, got %d: %+v", len(snap), snap)
	}
	if snap[0].Quantity != 2 {
		t.Fatalf("expected engraved line merged to quantity 2, got %d", snap[0].Quantity)
	}
}

func TestNormalizeDropsEmptyAndInvalidLines(t *testing.T) {
	raw := []RawLine{
		{VariantID: "V1", Quantity: 1, Properties: map[string]string{}},
		{VariantID: "", Quantity: 5},
		{VariantID: "V2", Quantity: 0},
		{VariantID: "V3", Quantity: -1},
	}

	snap := Normalize(raw)

	if len(snap) != 1 {
		t.Fatalf("expected only the valid line to survive, got %+v", snap)
	}
	if snap[0].Properties != nil {
		t.Fatal("expected empty properties to canonicalize to nil")
	}
}

func TestEqualIsOrderIndependent(t *testing.T) {
	lines := []RawLine{
		{VariantID: "V1", Quantity: 2, Properties: map[string]string{"size": "L", "color": "red"}},
		{VariantID: "V2", Quantity: 1},
		{VariantID: "V3", Quantity: 4, SellingPlanID: "plan-9"},
	}
	permuted := []RawLine{lines[2], lines[0], lines[1]}

	if !Equal(Normalize(lines), Normalize(permuted)) {
		t.Fatal("expected permuted carts to compare equal")
	}
}

func TestEqualEmptyPropertiesMatchesAbsent(t *testing.T) {
	a := Normalize([]RawLine{{VariantID: "V1", Quantity: 1, Properties: map[string]string{}}})
	b := Normalize([]RawLine{{VariantID: "V1", Quantity: 1}})

	if !Equal(a, b) {
		t.Fatal("expected {} properties and absent properties to compare equal")
	}
}

func TestEqualDetectsDifferences(t *testing.T) {
	base := Normalize([]RawLine{{VariantID: "V1", Quantity: 2}})

	tests := []struct {
		name  string
		other []RawLine
	}{
		{"different quantity", []RawLine{{VariantID: "V1", Quantity: 3}}},
		{"different variant", []RawLine{{VariantID: "V2", Quantity: 2}}},
		{"different properties", []RawLine{{VariantID: "V1", Quantity: 2, Properties: map[string]string{"gift": "yes"}}}},
		{"different selling plan", []RawLine{{VariantID: "V1", Quantity: 2, SellingPlanID: "plan-1"}}},
		{"extra line", []RawLine{{VariantID: "V1", Quantity: 2}, {VariantID: "V2", Quantity: 1}}},
		{"empty cart", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Equal(base, Normalize(tt.other)) {
				t.Fatal("expected carts to differ")
			}
		})
	}
}

func TestRawLinesRoundTrip(t *testing.T) {
	snap := Normalize([]RawLine{
		{VariantID: "V1", Quantity: 2, Properties: map[string]string{"color": "blue"}},
		{VariantID: "V2", Quantity: 1, SellingPlanID: "plan-3"},
	})

	again := Normalize(snap.RawLines())

	if !Equal(snap, again) {
		t.Fatal("expected normalize(rawLines(s)) == s")
	}
	// Replay order is preserved, not just set equality.
	for i := range snap {
		if snap[i].VariantID != again[i].VariantID {
			t.Fatalf("expected order preserved at %d: %s vs %s", i, snap[i].VariantID, again[i].VariantID)
		}
	}
}

func TestRawLineUnmarshalAcceptsNumericAndStringIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"numeric id", `{"id":40612934713406,"quantity":2}`, "40612934713406"},
		{"string id", `{"id":"40612934713406","quantity":2}`, "40612934713406"},
		{"null id", `{"id":null,"quantity":2}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var line RawLine
			if err := json.Unmarshal([]byte(tt.in), &line); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if line.VariantID != tt.want {
				t.Fatalf("expected id %q, got %q", tt.want, line.VariantID)
			}
			if line.Quantity != 2 {
				t.Fatalf("expected quantity 2, got %d", line.Quantity)
			}
		})
	}
}
