package kpi

import (
	"fmt"

	"erpchat/db"
	"erpchat/models"

	"github.com/samber/lo"
)

type ProductService struct {
	repo      db.ProductRepository
	guardrail Guardrail
}

func NewProductService(repo db.ProductRepository, guardrail Guardrail) *ProductService {
	return &ProductService{repo: repo, guardrail: guardrail}
}

func (s *ProductService) GetProducts(orden string, limite int, filters models.ProductFilters) (models.ToolResult, error) {
	count, err := s.repo.CountProducts(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if s.guardrail.Exceeds(count) {
		return models.WarningResult(count, productFiltersMap(filters), fmt.Sprintf(
			"Hay %d productos que coinciden con la busqueda. "+
				"Pedile al usuario que acote la busqueda por nombre, categoria o rango de precio.", count)), nil
	}

	products, err := s.repo.SearchProducts(filters, orden, limite)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	ids := lo.Map(products, func(p models.Product, _ int) int { return p.ID })

	return models.ToolResult{
		"ids":     ids,
		"data":    products,
		"total":   len(products),
		"message": fmt.Sprintf("Se encontraron %d productos.", len(products)),
	}, nil
}

func productFiltersMap(filters models.ProductFilters) map[string]any {
	applied := map[string]any{}
	if filters.Nombre != "" {
		applied["nombre"] = filters.Nombre
	}
	if filters.PrecioMin != nil {
		applied["precio_min"] = *filters.PrecioMin
	}
	if filters.PrecioMax != nil {
		applied["precio_max"] = *filters.PrecioMax
	}
	if filters.Categoria != "" {
		applied["categoria"] = filters.Categoria
	}
	if len(filters.IDs) > 0 {
		applied["ids"] = filters.IDs
	}
	return applied
}
