package neo4j

import (
	"reflect"
	"testing"

	"netgraphx/internal/graph"
)

func TestObsoleteIDs(t *testing.T) {
	g := graph.New()
	g.AddEdge("R1", "SW1")
	g.AddNode("PC1")

	existing := map[string]bool{"R1": true, "SW2": true, "PC1": true, "Old": true}
	got := ObsoleteIDs(existing, g)
	want := []string{"Old", "SW2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ObsoleteIDs() = %v, want %v", got, want)
	}

	if got := ObsoleteIDs(map[string]bool{"R1": true}, g); len(got) != 0 {
		t.Errorf("expected nothing obsolete, got %v", got)
	}
}

func TestNewClientRejectsBadURI(t *testing.T) {
	if _, err := NewClient("not-a-uri://", "neo4j", "pw"); err == nil {
		t.Error("expected an error for an unsupported URI scheme")
	}
}
