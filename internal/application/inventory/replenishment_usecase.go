package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

// ReplenishmentUseCase lista los materiales en o bajo su stock mínimo.
type ReplenishmentUseCase struct {
	materialRepo repository.MaterialRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(materialRepo repository.MaterialRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{materialRepo: materialRepo}
}

// LowStock materiales activos con stock <= stock_minimo, mayor faltante primero.
func (uc *ReplenishmentUseCase) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	materials, err := uc.materialRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockDTO, 0, len(materials))
	for _, m := range materials {
		deficit := m.MinStock.Sub(m.Stock)
		if deficit.LessThan(decimal.Zero) {
			deficit = decimal.Zero
		}
		out = append(out, dto.LowStockDTO{
			MaterialID: m.ID,
			Code:       m.Code,
			Name:       m.Name,
			Unit:       m.Unit,
			Stock:      m.Stock,
			MinStock:   m.MinStock,
			Deficit:    deficit,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Deficit.Equal(out[j].Deficit) {
			return out[i].Deficit.GreaterThan(out[j].Deficit)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
