package utils

import (
	"reflect"
	"testing"
)

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name          string
		existing, in  Label
		want          Label
	}{
		{"empty existing", Label{}, Label{Value: "a", Source: "rank"}, Label{Value: "a", Source: "rank"}},
		{"empty incoming", Label{Value: "a", Source: "rank"}, Label{}, Label{Value: "a", Source: "rank"}},
		{"accumulate", Label{Value: "a", Source: "rank"}, Label{Value: "b", Source: "rerank"}, Label{Value: "a|b", Source: "rank,rerank"}},
		{"dedupe", Label{Value: "a|b", Source: "rank"}, Label{Value: "b", Source: "rank"}, Label{Value: "a|b", Source: "rank"}},
		{"missing source", Label{Value: "a"}, Label{Value: "b", Source: "explore"}, Label{Value: "a|b", Source: "explore"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.in); got != tt.want {
				t.Errorf("MergeLabel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLabel_Values(t *testing.T) {
	if got := (Label{Value: "a|b"}).Values(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Values() = %v", got)
	}
	if (Label{}).Values() != nil {
		t.Error("empty label should have no values")
	}
}
