package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/application/usecase"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/infrastructure/memory"
	"github.com/civistock/civistock-api/pkg/logger"
	"github.com/civistock/civistock-api/pkg/timefmt"
)

// ────────────────────────────────────────────────────────────────────────────
// Escenario compartido: un ingeniero, un almacenista, un material con stock 10.
// ────────────────────────────────────────────────────────────────────────────

type scene struct {
	store     *memory.Store
	lifecycle *inventory.LifecycleUseCase
	query     *usecase.MovementQueryUseCase
	engineer  entity.Actor
	keeper    entity.Actor
	material  string
}

func newScene(t *testing.T) *scene {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	eng := &entity.User{ID: uuid.NewString(), Username: "ing1", Name: "Ana", Role: entity.RoleIngeniero}
	keep := &entity.User{ID: uuid.NewString(), Username: "alm1", Name: "Luis", Role: entity.RoleAlmacenista}
	require.NoError(t, store.Users().Create(ctx, eng))
	require.NoError(t, store.Users().Create(ctx, keep))
	mat := &entity.Material{
		ID: uuid.NewString(), Code: "CEM", Name: "Cemento", Unit: "bulto",
		Stock: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(2), Active: true,
	}
	require.NoError(t, store.Materials().Create(ctx, mat))

	loc := timefmt.Location("America/Bogota")
	return &scene{
		store:     store,
		lifecycle: inventory.NewLifecycleUseCase(store, store.Materials(), store.Movements(), store.Users(), nil, logger.Nop(), inventory.WithLocation(loc)),
		query:     usecase.NewMovementQueryUseCase(store.Movements(), store.Materials(), store.Events(), logger.Nop(), loc),
		engineer:  entity.Actor{UserID: eng.ID, Role: entity.RoleIngeniero},
		keeper:    entity.Actor{UserID: keep.ID, Role: entity.RoleAlmacenista},
		material:  mat.ID,
	}
}

func (s *scene) request(t *testing.T, qty int64) string {
	t.Helper()
	r, err := s.lifecycle.CreateWithdrawal(context.Background(), s.engineer, dto.CreateWithdrawalRequest{MaterialID: s.material, Quantity: decimal.NewFromInt(qty)})
	require.NoError(t, err)
	return r.ID
}

func (s *scene) giveBack(t *testing.T, qty int64) string {
	t.Helper()
	r, err := s.lifecycle.CreateReturn(context.Background(), s.engineer, dto.CreateReturnRequest{MaterialID: s.material, Quantity: decimal.NewFromInt(qty)})
	require.NoError(t, err)
	return r.Movement.ID
}

// ────────────────────────────────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────────────────────────────────

func TestMovementQuery_KeeperPendingLists(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	a := s.request(t, 1)
	b := s.request(t, 2)
	s.giveBack(t, 1)

	_, err := s.lifecycle.AuthorizeWithdrawal(ctx, s.keeper, a, dto.ReviewRequest{})
	require.NoError(t, err)

	pending, err := s.query.PendingWithdrawals(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b, pending[0].ID)
	assert.Equal(t, "Ana", pending[0].RequesterName)
	assert.Equal(t, "Cemento", pending[0].MaterialName)

	returns, err := s.query.PendingReturns(ctx)
	require.NoError(t, err)
	assert.Len(t, returns, 1)
}

func TestMovementQuery_StockBuckets(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	accept := func(id string) {
		_, err := s.lifecycle.AcceptReturn(ctx, s.keeper, id, dto.ReviewRequest{})
		require.NoError(t, err)
	}

	waiting := s.giveBack(t, 1)
	accept(waiting)
	review := s.giveBack(t, 1)
	accept(review)
	_, err := s.lifecycle.Dispose(ctx, s.keeper, review, entity.ActionSendToShop)
	require.NoError(t, err)
	discarded := s.giveBack(t, 1)
	accept(discarded)
	_, err = s.lifecycle.Dispose(ctx, s.keeper, discarded, entity.ActionDiscard)
	require.NoError(t, err)
	approved := s.giveBack(t, 1)
	accept(approved)
	_, err = s.lifecycle.Dispose(ctx, s.keeper, approved, entity.ActionSendToShop)
	require.NoError(t, err)
	_, err = s.lifecycle.Dispose(ctx, s.keeper, approved, entity.ActionApproveByShop)
	require.NoError(t, err)
	s.giveBack(t, 1) // pendiente: no aparece

	b, err := s.query.StockBuckets(ctx)
	require.NoError(t, err)
	require.Len(t, b.Materials, 1)
	require.Len(t, b.AwaitingDecision, 1)
	assert.Equal(t, waiting, b.AwaitingDecision[0].ID)
	require.Len(t, b.InShopReview, 1)
	assert.Equal(t, review, b.InShopReview[0].ID)
	require.Len(t, b.RejectedDiscarded, 1)
	assert.Equal(t, discarded, b.RejectedDiscarded[0].ID)
	require.Len(t, b.ApprovedByShop, 1)
	assert.Equal(t, approved, b.ApprovedByShop[0].ID)
	assert.True(t, b.Materials[0].InReturn.Equal(decimal.NewFromInt(2)), "en espera + en ferretería")
}

func TestMovementQuery_EngineerReportAndPanel(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	ok := s.request(t, 1)
	bad := s.request(t, 1)
	_, err := s.lifecycle.AuthorizeWithdrawal(ctx, s.keeper, ok, dto.ReviewRequest{})
	require.NoError(t, err)
	_, err = s.lifecycle.RejectWithdrawal(ctx, s.keeper, bad, dto.ReviewRequest{})
	require.NoError(t, err)
	s.giveBack(t, 1)
	for i := 0; i < 4; i++ {
		s.request(t, 1)
	}

	rep, err := s.query.EngineerReport(ctx, s.engineer)
	require.NoError(t, err)
	assert.Len(t, rep.Approved, 1)
	assert.Len(t, rep.Rejected, 1)
	assert.Len(t, rep.Returns, 1)

	panel, err := s.query.Panel(ctx, s.engineer)
	require.NoError(t, err)
	assert.Len(t, panel.Recent, usecase.PanelSize)

	history, err := s.query.History(ctx, s.engineer)
	require.NoError(t, err)
	assert.Len(t, history, 7)

	returns, err := s.query.Returns(ctx, s.engineer)
	require.NoError(t, err)
	assert.Len(t, returns, 1)
}

func TestMovementQuery_HistoryHidesInactiveMaterials(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	s.request(t, 1)
	require.NoError(t, s.store.Materials().SoftDelete(ctx, s.material))

	history, err := s.query.History(ctx, s.engineer)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMovementQuery_MonthlyReport(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	id := s.request(t, 2)
	_, err := s.lifecycle.AuthorizeWithdrawal(ctx, s.keeper, id, dto.ReviewRequest{})
	require.NoError(t, err)

	rep, err := s.query.MonthlyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Now().In(timefmt.Location("America/Bogota")).Format("2006-01"), rep.Month)
	assert.Len(t, rep.Approved, 1)
	assert.Empty(t, rep.Rejected)
	assert.Empty(t, rep.Returns)
}

func TestMovementQuery_ClearHistoryKeepsLedger(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	done := s.request(t, 2)
	_, err := s.lifecycle.AuthorizeWithdrawal(ctx, s.keeper, done, dto.ReviewRequest{})
	require.NoError(t, err)
	denied := s.request(t, 1)
	_, err = s.lifecycle.RejectWithdrawal(ctx, s.keeper, denied, dto.ReviewRequest{Note: "sin stock en obra"})
	require.NoError(t, err)
	s.request(t, 1)
	ret := s.giveBack(t, 1)
	_, err = s.lifecycle.AcceptReturn(ctx, s.keeper, ret, dto.ReviewRequest{})
	require.NoError(t, err)

	_, err = s.query.ClearHistory(ctx, s.keeper)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	res, err := s.query.ClearHistory(ctx, s.engineer)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Deleted)

	history, err := s.query.History(ctx, s.engineer)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	allowance, err := s.lifecycle.ReturnAllowance(ctx, s.engineer)
	require.NoError(t, err)
	require.Len(t, allowance, 1)
	assert.True(t, allowance[0].Withdrawn.Equal(decimal.NewFromInt(2)))
	assert.True(t, allowance[0].Returned.Equal(decimal.NewFromInt(1)))

	events, err := s.query.Events(ctx, s.keeper, done)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestMovementQuery_Events(t *testing.T) {
	s := newScene(t)
	ctx := context.Background()
	id := s.request(t, 3)
	_, err := s.lifecycle.AuthorizeWithdrawal(ctx, s.keeper, id, dto.ReviewRequest{Note: "ok"})
	require.NoError(t, err)

	events, err := s.query.Events(ctx, s.keeper, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entity.ActionCreateWithdrawal, events[0].Action)
	assert.Equal(t, entity.ActionAuthorizeWithdrawal, events[1].Action)
	assert.True(t, events[1].StockDelta.Equal(decimal.NewFromInt(-3)))

	_, err = s.query.Events(ctx, s.engineer, id)
	require.NoError(t, err)
	_, err = s.query.Events(ctx, entity.Actor{UserID: uuid.NewString(), Role: entity.RoleIngeniero}, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = s.query.Events(ctx, s.keeper, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
