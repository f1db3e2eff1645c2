package agentexec

import (
	"reflect"
	"testing"

	"github.com/lattice-agents/agentexec/src/params"
)

func TestCatalogLookupIsCaseInsensitive(t *testing.T) {
	tool := &echoTool{name: "Lookup", inputs: lookupDesc()}
	catalog, err := NewStaticToolCatalog([]Tool{tool})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	for _, name := range []string{"Lookup", "lookup", "LOOKUP"} {
		if _, ok := catalog.Lookup(name); !ok {
			t.Fatalf("Lookup(%q) missed", name)
		}
	}
	if _, ok := catalog.Lookup("other"); ok {
		t.Fatal("Lookup matched an unregistered name")
	}
}

func TestCatalogRejectsDuplicatesAndBadDescriptions(t *testing.T) {
	catalog, err := NewStaticToolCatalog(nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := catalog.Register(&echoTool{name: "lookup", inputs: lookupDesc()}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := catalog.Register(&echoTool{name: "LOOKUP", inputs: lookupDesc()}); err == nil {
		t.Fatal("expected duplicate rejection")
	}

	dup := params.InputDescription{
		{Type: params.TypeString, Name: "x"},
		{Type: params.TypeBool, Name: "x"},
	}
	if err := catalog.Register(&echoTool{name: "bad", inputs: dup}); err == nil {
		t.Fatal("expected invalid input description rejection")
	}
}

func TestCatalogDescriptorsAreStable(t *testing.T) {
	first := &echoTool{name: "alpha", inputs: lookupDesc()}
	second := &echoTool{name: "beta", inputs: params.InputDescription{
		{Type: params.TypeAddress, Name: "to", Description: "recipient"},
	}}
	catalog, err := NewStaticToolCatalog([]Tool{first, second})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	// Descriptors must be idempotent across calls so a negotiating peer
	// sees a consistent capability surface.
	a := catalog.Descriptors()
	b := catalog.Descriptors()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("Descriptors() is not stable across calls")
	}
	if len(a) != 2 || a[0].Name != "alpha" || a[1].Name != "beta" {
		t.Fatalf("descriptors = %+v", a)
	}
	if a[1].Inputs[0].Type != params.TypeAddress.String() {
		t.Fatalf("descriptor type = %q", a[1].Inputs[0].Type)
	}
}
