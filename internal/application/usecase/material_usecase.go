package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/inventory"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/pkg/textnorm"
)

// MaterialUseCase CRUD del catálogo de materiales. El stock solo se toca aquí con SetStock;
// el resto de cambios llegan por el ciclo de vida de movimientos.
type MaterialUseCase struct {
	repo repository.MaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create crea un material. El código es único.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.CheckStock(in.Stock); err != nil {
		return nil, err
	}
	if err := inventory.CheckStock(in.MinStock); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now().UTC()
	m := &entity.Material{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Unit:        strings.TrimSpace(in.Unit),
		Stock:       in.Stock,
		MinStock:    in.MinStock,
		InReturn:    decimal.Zero,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.SearchKey = searchKey(m)
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// GetByID devuelve ErrNotFound si no existe.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// List busca por código, nombre, descripción o unidad sin distinguir mayúsculas ni tildes.
func (uc *MaterialUseCase) List(ctx context.Context, search string, onlyActive bool) ([]dto.MaterialResponse, error) {
	list, err := uc.repo.List(ctx, textnorm.Fold(search), onlyActive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, *toMaterialResponse(m))
	}
	return out, nil
}

// Update edita los datos descriptivos y el mínimo. No toca stock ni en_devolucion.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.CheckStock(in.MinStock); err != nil {
		return nil, err
	}
	if code != m.Code {
		other, err := uc.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != m.ID {
			return nil, domain.ErrDuplicate
		}
	}
	m.Code = code
	m.Name = strings.TrimSpace(in.Name)
	m.Description = strings.TrimSpace(in.Description)
	m.Unit = strings.TrimSpace(in.Unit)
	m.MinStock = in.MinStock
	m.SearchKey = searchKey(m)
	m.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// SetStock fija el stock a mano (conteo físico del almacenista).
func (uc *MaterialUseCase) SetStock(ctx context.Context, id string, in dto.SetStockRequest) (*dto.MaterialResponse, error) {
	if err := inventory.CheckStock(in.Stock); err != nil {
		return nil, err
	}
	m, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.SetStock(ctx, m.ID, in.Stock); err != nil {
		return nil, err
	}
	m.Stock = in.Stock
	return toMaterialResponse(m), nil
}

// Delete borrado lógico: el material deja de listarse para ingenieros pero su historial se conserva.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	m, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	return uc.repo.SoftDelete(ctx, m.ID)
}

func (uc *MaterialUseCase) find(ctx context.Context, id string) (*entity.Material, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func searchKey(m *entity.Material) string {
	return textnorm.SearchKey(m.Code, m.Name, m.Description, m.Unit)
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Unit:        m.Unit,
		Stock:       m.Stock,
		MinStock:    m.MinStock,
		InReturn:    m.InReturn,
		Active:      m.Active,
		LowStock:    m.LowStock(),
		UpdatedAt:   m.UpdatedAt,
	}
}
