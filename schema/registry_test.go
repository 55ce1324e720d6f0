package schema

import (
	"strings"
	"testing"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	order := NewEntitySchema("Order").
		AddField("id", "uuid").
		AddCollection("Items", "OrderItem")

	if err := r.Register(order); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := r.Get("Order")
	if !ok {
		t.Fatal("expected Order to be registered")
	}
	if got.Name != "Order" {
		t.Errorf("expected name Order, got %s", got.Name)
	}
	if !got.HasEdge("Items") {
		t.Error("expected Items edge")
	}
	if !got.HasField("id") {
		t.Error("expected id field")
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(NewEntitySchema("Order")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	err := r.Register(NewEntitySchema("Order"))
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistryRejectsUnnamedEntity(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewEntitySchema("")); err == nil {
		t.Fatal("expected registration without a name to fail")
	}
}

func TestRegistryFieldEdgeClash(t *testing.T) {
	r := NewRegistry()

	entity := NewEntitySchema("Order").
		AddField("Items", "string").
		AddCollection("Items", "OrderItem")

	if err := r.Register(entity); err == nil {
		t.Fatal("expected field/edge name clash to fail")
	}
	if _, ok := r.Get("Order"); ok {
		t.Error("expected rollback after failed registration")
	}
}

func TestRegistryValidateAll(t *testing.T) {
	r := NewRegistry()

	order := NewEntitySchema("Order").AddCollection("Items", "OrderItem")
	if err := r.Register(order); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Forward reference not yet satisfied
	if err := r.ValidateAll(); err == nil {
		t.Fatal("expected ValidateAll to fail with unresolved edge target")
	}

	if err := r.Register(NewEntitySchema("OrderItem")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.ValidateAll(); err != nil {
		t.Fatalf("ValidateAll failed: %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewEntitySchema("Order"))
	r.MustRegister(NewEntitySchema("Customer"))

	names := r.List()
	if len(names) != 2 || names[0] != "Customer" || names[1] != "Order" {
		t.Errorf("expected sorted [Customer Order], got %v", names)
	}
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewEntitySchema("Order"))

	all := r.All()
	delete(all, "Order")

	if _, ok := r.Get("Order"); !ok {
		t.Error("mutating All() result must not affect the registry")
	}
}
