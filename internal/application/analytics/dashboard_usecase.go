// Package analytics contiene el panel de alertas del almacenista.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/pkg/timefmt"
)

// LowStockLister materiales en o bajo el mínimo (lo implementa ReplenishmentUseCase).
type LowStockLister interface {
	LowStock(ctx context.Context) ([]dto.LowStockDTO, error)
}

// DashboardUseCase arma los contadores del panel del almacenista.
//
// Fuente de datos: MovementRepository y MaterialRepository (consultas read-only).
type DashboardUseCase struct {
	movementRepo repository.MovementRepository
	materialRepo repository.MaterialRepository
	lowStock     LowStockLister
	loc          *time.Location
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	movementRepo repository.MovementRepository,
	materialRepo repository.MaterialRepository,
	lowStock LowStockLister,
	loc *time.Location,
) *DashboardUseCase {
	return &DashboardUseCase{movementRepo: movementRepo, materialRepo: materialRepo, lowStock: lowStock, loc: loc}
}

// KeeperAlerts construye el KeeperAlertsDTO.
//
// Las consultas son independientes y corren en paralelo:
//  1. conteos de movimientos por etapa (4)
//  2. CountBelowMin        → LowStock (stock < mínimo)
//  3. LastDate             → LastMovement
//  4. LowStock lister      → LowStockItems (stock <= mínimo)
func (uc *DashboardUseCase) KeeperAlerts(ctx context.Context) (*dto.KeeperAlertsDTO, error) {
	active := true
	counts := []struct {
		name   string
		filter repository.MovementFilter
	}{
		{"pendientes de retiro", repository.MovementFilter{
			Types: []string{entity.MovementTypeSolicitud}, Statuses: []string{entity.StatusPendiente},
		}},
		{"devoluciones pendientes", repository.MovementFilter{
			Types: []string{entity.MovementTypeDevolucion}, Statuses: []string{entity.StatusPendiente},
		}},
		{"devoluciones sin revisión", repository.MovementFilter{
			Types: []string{entity.MovementTypeDevolucion}, Statuses: []string{entity.StatusAutorizado},
			SubStates: []entity.SubState{entity.SubStateNone}, Active: &active,
		}},
		{"devoluciones en ferretería", repository.MovementFilter{
			Types: []string{entity.MovementTypeDevolucion}, Statuses: []string{entity.StatusAutorizado},
			SubStates: []entity.SubState{entity.SubStateInReview},
		}},
	}

	type countResult struct {
		n   int
		err error
	}
	countCh := make([]chan countResult, len(counts))
	for i, c := range counts {
		ch := make(chan countResult, 1)
		countCh[i] = ch
		go func(f repository.MovementFilter) {
			n, err := uc.movementRepo.Count(ctx, f)
			ch <- countResult{n, err}
		}(c.filter)
	}

	lowCountCh := make(chan countResult, 1)
	go func() {
		n, err := uc.materialRepo.CountBelowMin(ctx)
		lowCountCh <- countResult{n, err}
	}()

	type lastResult struct {
		t   *time.Time
		err error
	}
	lastCh := make(chan lastResult, 1)
	go func() {
		t, err := uc.movementRepo.LastDate(ctx)
		lastCh <- lastResult{t, err}
	}()

	type itemsResult struct {
		items []dto.LowStockDTO
		err   error
	}
	itemsCh := make(chan itemsResult, 1)
	go func() {
		items, err := uc.lowStock.LowStock(ctx)
		itemsCh <- itemsResult{items, err}
	}()

	values := make([]int, len(counts))
	var firstErr error
	for i, ch := range countCh {
		r := <-ch
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("panel: %s: %w", counts[i].name, r.err)
		}
		values[i] = r.n
	}
	lowCount := <-lowCountCh
	last := <-lastCh
	items := <-itemsCh

	if firstErr != nil {
		return nil, firstErr
	}
	if lowCount.err != nil {
		return nil, fmt.Errorf("panel: stock bajo: %w", lowCount.err)
	}
	if last.err != nil {
		return nil, fmt.Errorf("panel: última fecha: %w", last.err)
	}
	if items.err != nil {
		return nil, fmt.Errorf("panel: materiales bajo stock: %w", items.err)
	}

	out := &dto.KeeperAlertsDTO{
		PendingWithdrawals: values[0],
		PendingReturns:     values[1],
		AcceptedUnreviewed: values[2],
		InShopReview:       values[3],
		LowStock:           lowCount.n,
		LastMovement:       timefmt.Format(time.Time{}, uc.loc),
		LowStockItems:      items.items,
	}
	if last.t != nil {
		out.LastMovement = timefmt.Format(*last.t, uc.loc)
	}
	out.ShowAlerts = out.PendingWithdrawals+out.PendingReturns+out.AcceptedUnreviewed+out.InShopReview+out.LowStock > 0
	return out, nil
}
