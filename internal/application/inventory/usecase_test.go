package inventory_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/infrastructure/memory"
	"github.com/civistock/civistock-api/pkg/logger"
)

// ────────────────────────────────────────────────────────────────────────────
// Dobles
// ────────────────────────────────────────────────────────────────────────────

type sent struct {
	target  inventory.Target
	message string
	level   string
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (n *stubNotifier) Notify(_ context.Context, target inventory.Target, message, level string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{target: target, message: message, level: level})
	return n.err
}

type stubRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *stubRecorder) Transition(action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[action+"/"+outcome]++
}

type fixture struct {
	store    *memory.Store
	uc       *inventory.LifecycleUseCase
	notifier *stubNotifier
	recorder *stubRecorder
	engineer entity.Actor
	keeper   entity.Actor
	material *entity.Material
}

func newFixture(t *testing.T, stock int64) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	eng := &entity.User{ID: uuid.NewString(), Username: "ing1", Name: "Ana Ingeniera", Role: entity.RoleIngeniero}
	keep := &entity.User{ID: uuid.NewString(), Username: "alm1", Name: "Luis Almacén", Role: entity.RoleAlmacenista}
	require.NoError(t, store.Users().Create(ctx, eng))
	require.NoError(t, store.Users().Create(ctx, keep))

	mat := &entity.Material{
		ID: uuid.NewString(), Code: "CEM-01", Name: "Cemento gris", Unit: "bulto",
		Stock: decimal.NewFromInt(stock), MinStock: decimal.NewFromInt(2), InReturn: decimal.Zero, Active: true,
	}
	require.NoError(t, store.Materials().Create(ctx, mat))

	notifier := &stubNotifier{}
	recorder := &stubRecorder{outcomes: map[string]int{}}
	uc := inventory.NewLifecycleUseCase(store, store.Materials(), store.Movements(), store.Users(), notifier, logger.Nop(),
		inventory.WithRecorder(recorder),
		inventory.WithClock(func() time.Time { now = now.Add(time.Minute); return now }),
	)
	return &fixture{
		store:    store,
		uc:       uc,
		notifier: notifier,
		recorder: recorder,
		engineer: entity.Actor{UserID: eng.ID, Role: entity.RoleIngeniero},
		keeper:   entity.Actor{UserID: keep.ID, Role: entity.RoleAlmacenista},
		material: mat,
	}
}

func (f *fixture) stock(t *testing.T) (decimal.Decimal, decimal.Decimal) {
	t.Helper()
	m, err := f.store.Materials().GetByID(context.Background(), f.material.ID)
	require.NoError(t, err)
	return m.Stock, m.InReturn
}

func (f *fixture) movement(t *testing.T, id string) *entity.Movement {
	t.Helper()
	m, err := f.store.Movements().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func (f *fixture) withdraw(t *testing.T, qty int64) string {
	t.Helper()
	res, err := f.uc.CreateWithdrawal(context.Background(), f.engineer, dto.CreateWithdrawalRequest{
		MaterialID: f.material.ID, Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	_, err = f.uc.AuthorizeWithdrawal(context.Background(), f.keeper, res.ID, dto.ReviewRequest{})
	require.NoError(t, err)
	return res.ID
}

func (f *fixture) acceptedReturn(t *testing.T, qty int64) string {
	t.Helper()
	ctx := context.Background()
	res, err := f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: decimal.NewFromInt(qty)})
	require.NoError(t, err)
	_, err = f.uc.ReviewReturn(ctx, f.keeper, res.Movement.ID, dto.ReturnDecisionRequest{Decision: inventory.DecisionAccept})
	require.NoError(t, err)
	return res.Movement.ID
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ────────────────────────────────────────────────────────────────────────────
// Retiros
// ────────────────────────────────────────────────────────────────────────────

func TestCreateWithdrawal_NotifiesKeepers(t *testing.T) {
	f := newFixture(t, 10)

	res, err := f.uc.CreateWithdrawal(context.Background(), f.engineer, dto.CreateWithdrawalRequest{
		MaterialID: f.material.ID, Quantity: dec(4), Note: "losa piso 2",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeSolicitud, res.Type)
	assert.Equal(t, entity.StatusPendiente, res.Status)
	assert.Equal(t, "Ana Ingeniera", res.RequesterName)

	stock, _ := f.stock(t)
	assert.True(t, stock.Equal(dec(10)), "crear la solicitud no toca el stock")

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, entity.RoleAlmacenista, f.notifier.sent[0].target.Role)
	assert.Contains(t, f.notifier.sent[0].message, "Cemento gris")
	assert.Contains(t, f.notifier.sent[0].message, "Ana Ingeniera")
}

func TestCreateWithdrawal_Refusals(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	_, err := f.uc.CreateWithdrawal(ctx, f.keeper, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(1)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: decimal.RequireFromString("0.0001")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: decimal.RequireFromString("1.2345")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: uuid.NewString(), Quantity: dec(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.store.Materials().SoftDelete(ctx, f.material.ID))
	_, err = f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(1)})
	assert.ErrorIs(t, err, domain.ErrMaterialInactive)
}

func TestAuthorizeWithdrawal_DecrementsStockOnce(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	id := f.withdraw(t, 4)
	stock, _ := f.stock(t)
	assert.True(t, stock.Equal(dec(6)))

	m := f.movement(t, id)
	assert.Equal(t, entity.MovementTypeSalida, m.Type)
	assert.Equal(t, entity.StatusAutorizado, m.Status)
	require.NotNil(t, m.ProcessedBy)
	assert.Equal(t, f.keeper.UserID, *m.ProcessedBy)

	_, err := f.uc.AuthorizeWithdrawal(ctx, f.keeper, id, dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	stock, _ = f.stock(t)
	assert.True(t, stock.Equal(dec(6)), "sin doble descuento")
	assert.Equal(t, 1, f.recorder.outcomes[entity.ActionAuthorizeWithdrawal+"/rechazada"])

	// último aviso va al solicitante
	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, f.engineer.UserID, last.target.UserID)
	assert.Equal(t, entity.NotificationInfo, last.level)
}

func TestAuthorizeWithdrawal_InsufficientStock(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	res, err := f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(4)})
	require.NoError(t, err)

	_, err = f.uc.AuthorizeWithdrawal(ctx, f.keeper, res.ID, dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stock, _ := f.stock(t)
	assert.True(t, stock.Equal(dec(3)))
	m := f.movement(t, res.ID)
	assert.Equal(t, entity.MovementTypeSolicitud, m.Type)
	assert.Equal(t, entity.StatusPendiente, m.Status)

	events, err := f.store.Events().ListByMovement(ctx, res.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1, "la transición fallida no deja evento")
}

func TestRejectWithdrawal(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	res, err := f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(2)})
	require.NoError(t, err)

	out, err := f.uc.RejectWithdrawal(ctx, f.keeper, res.ID, dto.ReviewRequest{Note: "no hay cupo"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeSalida, out.Type)
	assert.Equal(t, entity.StatusRechazado, out.Status)
	assert.False(t, out.Active)

	stock, _ := f.stock(t)
	assert.True(t, stock.Equal(dec(10)))

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, entity.NotificationWarning, last.level)
	assert.Contains(t, last.message, "no hay cupo")

	_, err = f.uc.AuthorizeWithdrawal(ctx, f.keeper, res.ID, dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestTransition_RequiresKeeper(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	res, err := f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(2)})
	require.NoError(t, err)

	_, err = f.uc.AuthorizeWithdrawal(ctx, f.engineer, res.ID, dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.AuthorizeWithdrawal(ctx, entity.Actor{UserID: "x", Role: entity.RoleAdmin}, res.ID, dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.AuthorizeWithdrawal(ctx, f.keeper, "no-es-uuid", dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.AuthorizeWithdrawal(ctx, f.keeper, uuid.NewString(), dto.ReviewRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ────────────────────────────────────────────────────────────────────────────

func TestCreateReturn_Warnings(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.withdraw(t, 4)

	ok, err := f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: dec(3)})
	require.NoError(t, err)
	assert.Nil(t, ok.Warning)

	over, err := f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: dec(5)})
	require.NoError(t, err)
	require.NotNil(t, over.Warning)
	assert.Equal(t, "EXCESO_SIN_JUSTIFICACION", over.Warning.Code)
	assert.True(t, over.Warning.Available.Equal(dec(4)))
	assert.NotEmpty(t, over.Warning.Message)

	// la advertencia no cambia lo que se guarda
	a, b := f.movement(t, ok.Movement.ID), f.movement(t, over.Movement.ID)
	assert.Equal(t, a.Type, b.Type)
	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.SubState, b.SubState)
	assert.Equal(t, entity.MovementTypeDevolucion, b.Type)
	assert.Equal(t, entity.StatusPendiente, b.Status)

	stock, inReturn := f.stock(t)
	assert.True(t, stock.Equal(dec(6)))
	assert.True(t, inReturn.IsZero())
}

func TestCreateReturn_NoWithdrawal(t *testing.T) {
	f := newFixture(t, 10)

	res, err := f.uc.CreateReturn(context.Background(), f.engineer, dto.CreateReturnRequest{
		MaterialID: f.material.ID, Quantity: dec(1), Note: "sobrante", Evidence: "uploads/foto.jpg",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, "SIN_RETIRO", res.Warning.Code)
	assert.Equal(t, "uploads/foto.jpg", res.Movement.Evidence)
}

func TestReturnLifecycle_SendThenApprove(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.withdraw(t, 4)

	id := f.acceptedReturn(t, 3)
	stock, inReturn := f.stock(t)
	assert.True(t, stock.Equal(dec(6)))
	assert.True(t, inReturn.Equal(dec(3)))
	m := f.movement(t, id)
	assert.Equal(t, entity.StatusAutorizado, m.Status)
	assert.True(t, m.VisibleInStock)
	assert.NotContains(t, m.ReviewerNote, "estado:")

	sentOut, err := f.uc.Dispose(ctx, f.keeper, id, entity.ActionSendToShop)
	require.NoError(t, err)
	assert.False(t, sentOut.VisibleInStock)
	assert.Equal(t, string(entity.SubStateInReview), sentOut.SubState)
	assert.Contains(t, sentOut.ReviewerNote, "| estado: En revisión en ferretería")

	approved, err := f.uc.Dispose(ctx, f.keeper, id, entity.ActionApproveByShop)
	require.NoError(t, err)
	assert.False(t, approved.Active)
	assert.Equal(t, 1, strings.Count(approved.ReviewerNote, "| estado:"))
	assert.True(t, strings.HasSuffix(approved.ReviewerNote, "| estado: Aprobado por ferretería"))

	stock, inReturn = f.stock(t)
	assert.True(t, stock.Equal(dec(9)))
	assert.True(t, inReturn.IsZero())

	events, err := f.store.Events().ListByMovement(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, entity.ActionCreateReturn, events[0].Action)
	assert.Equal(t, entity.ActionAcceptReturn, events[1].Action)
	assert.Equal(t, entity.ActionSendToShop, events[2].Action)
	assert.Equal(t, entity.ActionApproveByShop, events[3].Action)
	assert.True(t, events[3].StockDelta.Equal(dec(3)))

	_, err = f.uc.Dispose(ctx, f.keeper, id, entity.ActionApproveByShop)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRejectReturn_RequiresNote(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	res, err := f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: dec(2)})
	require.NoError(t, err)

	_, err = f.uc.ReviewReturn(ctx, f.keeper, res.Movement.ID, dto.ReturnDecisionRequest{Decision: inventory.DecisionReject, Note: "   "})
	assert.ErrorIs(t, err, domain.ErrNoteRequired)
	assert.Equal(t, entity.StatusPendiente, f.movement(t, res.Movement.ID).Status)

	out, err := f.uc.ReviewReturn(ctx, f.keeper, res.Movement.ID, dto.ReturnDecisionRequest{Decision: inventory.DecisionReject, Note: "material dañado"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRechazado, out.Status)
	assert.False(t, out.Active)

	_, inReturn := f.stock(t)
	assert.True(t, inReturn.IsZero())
}

func TestReview_KeepsKeeperEvidence(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	res, err := f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(1)})
	require.NoError(t, err)
	out, err := f.uc.AuthorizeWithdrawal(ctx, f.keeper, res.ID, dto.ReviewRequest{Evidence: " vale-0042.pdf "})
	require.NoError(t, err)
	assert.Equal(t, "vale-0042.pdf", out.ReviewerEvidence)
	assert.Equal(t, "vale-0042.pdf", f.movement(t, res.ID).ReviewerEvidence)

	ret, err := f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: dec(1), Evidence: "foto-ing.jpg"})
	require.NoError(t, err)
	out, err = f.uc.ReviewReturn(ctx, f.keeper, ret.Movement.ID, dto.ReturnDecisionRequest{
		Decision: inventory.DecisionReject, Note: "llegó mojado", Evidence: "foto-alm.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "foto-ing.jpg", out.Evidence)
	assert.Equal(t, "foto-alm.jpg", out.ReviewerEvidence)

	plain, err := f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(1)})
	require.NoError(t, err)
	out, err = f.uc.RejectWithdrawal(ctx, f.keeper, plain.ID, dto.ReviewRequest{Note: "no"})
	require.NoError(t, err)
	assert.Empty(t, out.ReviewerEvidence)
}

func TestReviewReturn_UnknownDecision(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.uc.ReviewReturn(context.Background(), f.keeper, uuid.NewString(), dto.ReturnDecisionRequest{Decision: "archivar"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDispose_ReturnToStockAndDiscard(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	a := f.acceptedReturn(t, 2)
	b := f.acceptedReturn(t, 1)

	_, err := f.uc.Dispose(ctx, f.keeper, a, entity.ActionReturnToStock)
	require.NoError(t, err)
	_, err = f.uc.Dispose(ctx, f.keeper, b, entity.ActionDiscard)
	require.NoError(t, err)

	stock, inReturn := f.stock(t)
	assert.True(t, stock.Equal(dec(12)))
	assert.True(t, inReturn.IsZero())
	assert.Equal(t, entity.SubStateDiscarded, f.movement(t, b).SubState)

	_, err = f.uc.Dispose(ctx, f.keeper, a, "BORRAR")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDispose_OnWithdrawalIsInvalid(t *testing.T) {
	f := newFixture(t, 10)
	id := f.withdraw(t, 1)

	_, err := f.uc.Dispose(context.Background(), f.keeper, id, entity.ActionReturnToStock)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReturnAllowance(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	f.withdraw(t, 5)
	f.acceptedReturn(t, 2)
	_, err := f.uc.CreateReturn(ctx, f.engineer, dto.CreateReturnRequest{MaterialID: f.material.ID, Quantity: dec(1)})
	require.NoError(t, err)

	list, err := f.uc.ReturnAllowance(ctx, f.engineer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Withdrawn.Equal(dec(5)))
	assert.True(t, list[0].Returned.Equal(dec(2)))
	assert.True(t, list[0].Pending.Equal(dec(1)))
	assert.True(t, list[0].MaxReturnQty.Equal(dec(2)))

	_, err = f.uc.ReturnAllowance(ctx, f.keeper)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestNotifierFailure_DoesNotRollBack(t *testing.T) {
	f := newFixture(t, 10)
	f.notifier.err = errors.New("redis caído")

	id := f.withdraw(t, 4)
	assert.Equal(t, entity.StatusAutorizado, f.movement(t, id).Status)
	stock, _ := f.stock(t)
	assert.True(t, stock.Equal(dec(6)))
	assert.Equal(t, 1, f.recorder.outcomes[entity.ActionAuthorizeWithdrawal+"/ok"])
}

func TestConcurrentAuthorize_SingleDecrement(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	res, err := f.uc.CreateWithdrawal(ctx, f.engineer, dto.CreateWithdrawalRequest{MaterialID: f.material.ID, Quantity: dec(4)})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.AuthorizeWithdrawal(ctx, f.keeper, res.ID, dto.ReviewRequest{}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	stock, _ := f.stock(t)
	assert.True(t, stock.Equal(dec(6)))
}
