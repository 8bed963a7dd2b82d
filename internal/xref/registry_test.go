package xref

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, a := range []Anchor{
		{ID: "annexB", Label: "B", XRef: "Annex B", Level: 1, Type: TypeAnnex},
		{ID: "app2", Label: "Appendix 2", XRef: "Appendix 2", Level: 2, Type: TypeAppendix, Container: "annexB"},
		{ID: "orphan", Label: "Appendix 1", XRef: "Appendix 1", Level: 2, Type: TypeAppendix, Container: "missing"},
	} {
		if err := reg.Add(a); err != nil {
			t.Fatalf("Add(%s): %v", a.ID, err)
		}
	}
	return reg
}

func TestRegistry_DanglingLookup(t *testing.T) {
	reg := sampleRegistry(t)

	a, err := reg.Lookup("nowhere")
	if !errors.Is(err, ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
	if a != (Anchor{}) {
		t.Errorf("expected zero anchor on miss, got %+v", a)
	}
	if reg.Has("nowhere") {
		t.Error("Has should be false for a missing id")
	}
}

func TestRegistry_AddDuplicate(t *testing.T) {
	reg := sampleRegistry(t)

	err := reg.Add(Anchor{ID: "annexB", XRef: "Annex Z"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if got := mustLookup(t, reg, "annexB"); got.XRef != "Annex B" {
		t.Errorf("existing entry was overwritten: %+v", got)
	}
	if err := reg.Add(Anchor{XRef: "no id"}); err == nil {
		t.Error("expected error for anchor without id")
	}
}

func TestRegistry_ReferenceText(t *testing.T) {
	reg := sampleRegistry(t)

	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"annexB", "Annex B", false},
		{"app2", "Annex B, Appendix 2", false},
		{"orphan", "", true},
		{"nowhere", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := reg.ReferenceText(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry_OrderAndCounts(t *testing.T) {
	reg := sampleRegistry(t)

	ids := reg.IDs()
	if len(ids) != 3 || ids[0] != "annexB" || ids[2] != "orphan" {
		t.Errorf("unexpected order: %v", ids)
	}
	ids[0] = "mutated"
	if reg.IDs()[0] != "annexB" {
		t.Error("IDs must return a copy")
	}

	counts := reg.CountByType()
	if counts[TypeAppendix] != 2 || counts[TypeAnnex] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestRegistry_Encoding(t *testing.T) {
	reg := sampleRegistry(t)

	data, err := json.Marshal(reg)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var restored Registry
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if restored.Len() != reg.Len() {
		t.Fatalf("expected %d entries, got %d", reg.Len(), restored.Len())
	}
	if got := mustLookup(t, &restored, "app2"); got.Container != "annexB" {
		t.Errorf("container lost: %+v", got)
	}

	out, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var entries []Anchor
	if err := yaml.Unmarshal(out, &entries); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if len(entries) != 3 || entries[1].XRef != "Appendix 2" {
		t.Errorf("unexpected yaml entries: %+v", entries)
	}
}
