package dsl

import "testing"

func TestProgram_Eval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		vars Vars
		want bool
	}{
		{
			name: "tag membership",
			expr: `"leisure" in tags`,
			vars: Vars{Tags: []string{"summer", "leisure"}},
			want: true,
		},
		{
			name: "evening leisure outside window",
			expr: `hour >= 18 && hour < 23 && "leisure" in tags`,
			vars: Vars{Tags: []string{"leisure"}, Hour: 9},
			want: false,
		},
		{
			name: "weekend",
			expr: `weekday == 0 || weekday == 6`,
			vars: Vars{Weekday: 6},
			want: true,
		},
		{
			name: "item fields",
			expr: `category == "coat" && price > 100.0 && season == "winter"`,
			vars: Vars{Category: "coat", Price: 150, Season: "winter"},
			want: true,
		},
		{
			name: "empty tags",
			expr: `"new" in tags`,
			vars: Vars{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := p.Eval(tt.vars)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval(%s) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{
		`hour >=`,
		`unknown_var == 1`,
	} {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) expected error", expr)
		}
	}
}

func TestProgram_NonBoolean(t *testing.T) {
	p, err := Compile(`hour + 1`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := p.Eval(Vars{Hour: 3}); err == nil {
		t.Error("expected error for non-boolean result")
	}
}
