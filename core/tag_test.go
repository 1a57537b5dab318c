package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestTagVocabulary_NormalizeKeepsUnregistered(t *testing.T) {
	v := NewTagVocabulary("leisure")
	tags, unknown := v.Normalize(NewSet("All Season", "Denim", "silk-blend", "  "))

	if want := []string{"all_season", "denim", "silk_blend"}; !reflect.DeepEqual(tags.Sorted(), want) {
		t.Errorf("tags = %v, want %v", tags.Sorted(), want)
	}
	if want := []string{"denim", "silk_blend"}; !reflect.DeepEqual(unknown, want) {
		t.Errorf("unknown = %v, want %v", unknown, want)
	}
}

func TestTagVocabulary_Validate(t *testing.T) {
	v := NewTagVocabulary("leisure")
	if err := v.Validate(NewSet("Summer", "leisure")); err != nil {
		t.Errorf("Validate(registered) error = %v", err)
	}
	err := v.Validate(NewSet("summer", "glitter"))
	if !errors.Is(err, ErrUnknownTag) || !IsInvalidInput(err) {
		t.Fatalf("Validate(glitter) error = %v, want ErrUnknownTag", err)
	}
	v.Register("Glitter")
	if err := v.Validate(NewSet("glitter")); err != nil {
		t.Errorf("Validate after Register error = %v", err)
	}
}
