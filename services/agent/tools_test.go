package agent

import (
	"context"
	"fmt"
	"testing"

	"erpchat/db"
	"erpchat/models"
	"erpchat/services/kpi"
)

func productFixture(id int) models.Product {
	return models.Product{
		ID:        id,
		Nombre:    fmt.Sprintf("Producto %02d", id),
		Precio:    float64(10 * id),
		Stock:     5,
		Categoria: "General",
	}
}

func TestToolSchemaShape(t *testing.T) {
	schema := toolSchema[GetProductsInput]()

	if schema["type"] != "object" {
		t.Errorf("expected object schema, got %v", schema["type"])
	}
	if _, ok := schema["$schema"]; ok {
		t.Error("schema should not carry the $schema marker")
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", schema)
	}
	for _, field := range []string{"nombre", "precio_min", "precio_max", "categoria", "ids", "orden", "limite"} {
		if _, ok := props[field]; !ok {
			t.Errorf("schema missing property %q", field)
		}
	}
}

func TestCountRecordsToolRequiresModelo(t *testing.T) {
	schema := toolSchema[CountRecordsInput]()

	required, ok := schema["required"].([]any)
	if !ok {
		t.Fatalf("schema has no required list: %v", schema)
	}
	found := false
	for _, field := range required {
		if field == "modelo" {
			found = true
		}
	}
	if !found {
		t.Errorf("modelo should be required, got %v", required)
	}
}

func TestGetProductsToolAppliesDefaults(t *testing.T) {
	store := db.NewMemoryRecordStore()
	for i := 1; i <= 15; i++ {
		store.Products = append(store.Products, db.MemoryProduct{
			Product: productFixture(i),
			SaleOk:  true,
		})
	}
	tool := NewGetProductsTool(kpi.NewProductService(store, kpi.Guardrail{Threshold: 50}))

	result, err := tool.Call(context.Background(), "{}")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	// Default limit is 10 even though 15 products match.
	if result["total"] != 10 {
		t.Errorf("expected default limit of 10, got %v", result["total"])
	}
}

func TestGetInvoicesToolAppliesDefaults(t *testing.T) {
	store := db.NewMemoryRecordStore()
	tool := NewGetInvoicesTool(kpi.NewInvoiceService(store, kpi.Guardrail{Threshold: 50}))

	result, err := tool.Call(context.Background(), "{}")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if result["tipo"] != "cliente" {
		t.Errorf("expected default tipo cliente, got %v", result["tipo"])
	}
	if result["estado"] != "pendiente" {
		t.Errorf("expected default estado pendiente, got %v", result["estado"])
	}
}

func TestToolCallRejectsMalformedJSON(t *testing.T) {
	store := db.NewMemoryRecordStore()
	tool := NewGetProductsTool(kpi.NewProductService(store, kpi.Guardrail{Threshold: 50}))

	if _, err := tool.Call(context.Background(), `{"nombre": `); err == nil {
		t.Error("expected an error for malformed argument JSON")
	}
}
