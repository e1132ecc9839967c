package inventory_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testEngineerID  = "00000000-0000-0000-0000-00000000000e"
	testKeeperID    = "00000000-0000-0000-0000-00000000000a"
	testMaterialID  = "00000000-0000-0000-0000-0000000000aa"
	testMovementID  = "00000000-0000-0000-0000-0000000000bb"
	labelApproved   = "Aprobado por ferretería"
	labelInReview   = "En revisión en ferretería"
	labelToStock    = "Retornado a stock"
	labelDiscarded  = "Movido a materiales sin uso"
	labelShopReject = "Rechazado por ferretería"
)

var testNow = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newMaterial(stock int64) *entity.Material {
	return &entity.Material{
		ID:       testMaterialID,
		Code:     "CEM-01",
		Name:     "Cemento gris",
		Unit:     "bulto",
		Stock:    dec(stock),
		MinStock: dec(2),
		InReturn: decimal.Zero,
		Active:   true,
	}
}

func newWithdrawal(t *testing.T, qty int64) *entity.Movement {
	t.Helper()
	m, err := inventory.NewWithdrawal(testMovementID, testMaterialID, testEngineerID, dec(qty), "para losa", testNow)
	require.NoError(t, err)
	return m
}

// acceptedReturn devolución ya aceptada por el almacenista.
func acceptedReturn(t *testing.T, mat *entity.Material, qty int64, reviewerNote string) *entity.Movement {
	t.Helper()
	m, err := inventory.NewReturn(testMovementID, testMaterialID, testEngineerID, dec(qty), "", "", testNow)
	require.NoError(t, err)
	require.NoError(t, inventory.AcceptReturn(m, mat, testKeeperID, reviewerNote, testNow))
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Etiqueta de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestRewriteStateTag(t *testing.T) {
	cases := []struct {
		name, note, label, want string
	}{
		{"nota vacía", "", labelInReview, "| estado: En revisión en ferretería"},
		{"solo espacios", "   ", labelToStock, "| estado: Retornado a stock"},
		{"prefijo sin etiqueta", "revisado", labelInReview, "revisado | estado: En revisión en ferretería"},
		{"reemplaza etiqueta", "revisado | estado: En revisión en ferretería", labelApproved, "revisado | estado: Aprobado por ferretería"},
		{"solo etiqueta", "| estado: En revisión en ferretería", labelShopReject, "| estado: Rechazado por ferretería"},
		{"recorta prefijo", "  ok   | estado: X", labelDiscarded, "ok | estado: Movido a materiales sin uso"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.RewriteStateTag(tc.note, tc.label))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Retiros
// ──────────────────────────────────────────────────────────────────────────────

func TestNewWithdrawal_CantidadInvalida(t *testing.T) {
	for _, q := range []int64{0, -3} {
		m, err := inventory.NewWithdrawal(testMovementID, testMaterialID, testEngineerID, dec(q), "", testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.Nil(t, m)
	}
}

func TestAuthorizeWithdrawal_DescuentaStock(t *testing.T) {
	mat := newMaterial(10)
	m := newWithdrawal(t, 4)
	assert.Equal(t, entity.MovementTypeSolicitud, m.Type)
	assert.Equal(t, entity.StatusPendiente, m.Status)

	delta, err := inventory.AuthorizeWithdrawal(m, mat, testKeeperID, " entregado ", testNow)
	require.NoError(t, err)

	assert.True(t, delta.Equal(dec(-4)))
	assert.True(t, mat.Stock.Equal(dec(6)), "stock esperado 6, got %s", mat.Stock)
	assert.Equal(t, entity.MovementTypeSalida, m.Type)
	assert.Equal(t, entity.StatusAutorizado, m.Status)
	assert.Equal(t, "entregado", m.ReviewerNote)
	require.NotNil(t, m.ProcessedBy)
	assert.Equal(t, testKeeperID, *m.ProcessedBy)
	assert.True(t, m.Active)
}

func TestAuthorizeWithdrawal_StockInsuficienteNoMuta(t *testing.T) {
	mat := newMaterial(3)
	m := newWithdrawal(t, 4)

	_, err := inventory.AuthorizeWithdrawal(m, mat, testKeeperID, "", testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, mat.Stock.Equal(dec(3)))
	assert.Equal(t, entity.MovementTypeSolicitud, m.Type)
	assert.Equal(t, entity.StatusPendiente, m.Status)
	assert.Nil(t, m.ProcessedBy)
}

func TestAuthorizeWithdrawal_DobleEnvioNoDescuentaDosVeces(t *testing.T) {
	mat := newMaterial(10)
	m := newWithdrawal(t, 4)

	_, err := inventory.AuthorizeWithdrawal(m, mat, testKeeperID, "", testNow)
	require.NoError(t, err)

	_, err = inventory.AuthorizeWithdrawal(m, mat, testKeeperID, "", testNow)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.True(t, mat.Stock.Equal(dec(6)), "no debe descontar dos veces")
	assert.Equal(t, entity.MovementTypeSalida, m.Type, "SALIDA nunca vuelve a SOLICITUD")
}

func TestRejectWithdrawal(t *testing.T) {
	m := newWithdrawal(t, 4)

	require.NoError(t, inventory.RejectWithdrawal(m, testKeeperID, "sin existencias", testNow))
	assert.Equal(t, entity.MovementTypeSalida, m.Type)
	assert.Equal(t, entity.StatusRechazado, m.Status)
	assert.False(t, m.Active)

	err := inventory.RejectWithdrawal(m, testKeeperID, "", testNow)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	mat := newMaterial(10)
	_, err = inventory.AuthorizeWithdrawal(m, mat, testKeeperID, "", testNow)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.True(t, mat.Stock.Equal(dec(10)))
}

func TestWithdrawalGuards_SobreDevolucion(t *testing.T) {
	ret, err := inventory.NewReturn(testMovementID, testMaterialID, testEngineerID, dec(1), "", "", testNow)
	require.NoError(t, err)

	_, err = inventory.AuthorizeWithdrawal(ret, newMaterial(10), testKeeperID, "", testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, inventory.RejectWithdrawal(ret, testKeeperID, "", testNow), domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Devoluciones
// ──────────────────────────────────────────────────────────────────────────────

func TestAcceptReturn(t *testing.T) {
	mat := newMaterial(6)
	m := acceptedReturn(t, mat, 3, "  ")

	assert.Equal(t, entity.MovementTypeDevolucion, m.Type)
	assert.Equal(t, entity.StatusAutorizado, m.Status)
	assert.Equal(t, entity.SubStateNone, m.SubState)
	assert.True(t, m.VisibleInStock)
	assert.Empty(t, m.ReviewerNote, "la aceptación no escribe etiqueta")
	assert.True(t, mat.InReturn.Equal(dec(3)))
	assert.True(t, mat.Stock.Equal(dec(6)), "aceptar no mueve el stock")

	err := inventory.AcceptReturn(m, mat, testKeeperID, "", testNow)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.True(t, mat.InReturn.Equal(dec(3)))
}

func TestRejectReturn_ExigeObservacion(t *testing.T) {
	m, err := inventory.NewReturn(testMovementID, testMaterialID, testEngineerID, dec(2), "", "", testNow)
	require.NoError(t, err)

	for _, note := range []string{"", "   "} {
		err = inventory.RejectReturn(m, testKeeperID, note, testNow)
		assert.ErrorIs(t, err, domain.ErrNoteRequired)
		assert.Equal(t, entity.StatusPendiente, m.Status)
		assert.True(t, m.Active)
		assert.Nil(t, m.ProcessedBy)
	}

	require.NoError(t, inventory.RejectReturn(m, testKeeperID, " material dañado ", testNow))
	assert.Equal(t, entity.StatusRechazado, m.Status)
	assert.Equal(t, "material dañado", m.ReviewerNote)
	assert.False(t, m.Active)

	assert.ErrorIs(t, inventory.RejectReturn(m, testKeeperID, "otra", testNow), domain.ErrAlreadyProcessed)
}

func TestRejectReturn_SobreRetiro(t *testing.T) {
	m := newWithdrawal(t, 1)
	assert.ErrorIs(t, inventory.RejectReturn(m, testKeeperID, "x", testNow), domain.ErrInvalidTransition)
	assert.ErrorIs(t, inventory.AcceptReturn(m, newMaterial(1), testKeeperID, "", testNow), domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Disposiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestDispose_EnviarYAprobarFerreteria(t *testing.T) {
	mat := newMaterial(6)
	m := acceptedReturn(t, mat, 3, "revisado")

	delta, err := inventory.Dispose(m, mat, entity.ActionSendToShop, testKeeperID, testNow)
	require.NoError(t, err)
	assert.True(t, delta.IsZero())
	assert.Equal(t, entity.SubStateInReview, m.SubState)
	assert.Equal(t, "revisado | estado: En revisión en ferretería", m.ReviewerNote)
	assert.False(t, m.VisibleInStock)
	assert.True(t, m.Active, "enviar a ferretería no cierra el flujo")
	assert.True(t, mat.Stock.Equal(dec(6)))
	assert.True(t, mat.InReturn.Equal(dec(3)))

	delta, err = inventory.Dispose(m, mat, entity.ActionApproveByShop, testKeeperID, testNow)
	require.NoError(t, err)
	assert.True(t, delta.Equal(dec(3)))
	assert.Equal(t, entity.SubStateApprovedByShop, m.SubState)
	assert.Equal(t, "revisado | estado: Aprobado por ferretería", m.ReviewerNote)
	assert.Equal(t, 1, strings.Count(m.ReviewerNote, inventory.StateTagMarker), "una sola etiqueta viva")
	assert.True(t, mat.Stock.Equal(dec(9)))
	assert.True(t, mat.InReturn.IsZero())
	assert.False(t, m.Active)
	assert.False(t, m.VisibleInStock)

	_, err = inventory.Dispose(m, mat, entity.ActionApproveByShop, testKeeperID, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, mat.Stock.Equal(dec(9)), "aprobar dos veces no suma dos veces")
}

func TestDispose_DesdeNinguno(t *testing.T) {
	cases := []struct {
		action     string
		wantSub    entity.SubState
		wantLabel  string
		wantStock  int64
		wantActive bool
	}{
		{entity.ActionReturnToStock, entity.SubStateReturnedStock, labelToStock, 13, false},
		{entity.ActionDiscard, entity.SubStateDiscarded, labelDiscarded, 10, false},
		{entity.ActionSendToShop, entity.SubStateInReview, labelInReview, 10, true},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			mat := newMaterial(10)
			m := acceptedReturn(t, mat, 3, "")

			_, err := inventory.Dispose(m, mat, tc.action, testKeeperID, testNow)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSub, m.SubState)
			assert.Equal(t, "| estado: "+tc.wantLabel, m.ReviewerNote)
			assert.True(t, mat.Stock.Equal(dec(tc.wantStock)), "stock %s", mat.Stock)
			assert.Equal(t, tc.wantActive, m.Active)
			assert.False(t, m.VisibleInStock)
		})
	}
}

func TestDispose_RechazoFerreteria(t *testing.T) {
	mat := newMaterial(10)
	m := acceptedReturn(t, mat, 3, "")

	_, err := inventory.Dispose(m, mat, entity.ActionRejectByShop, testKeeperID, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "solo desde revisión en ferretería")

	_, err = inventory.Dispose(m, mat, entity.ActionSendToShop, testKeeperID, testNow)
	require.NoError(t, err)
	_, err = inventory.Dispose(m, mat, entity.ActionReturnToStock, testKeeperID, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "en revisión no se retorna directo a stock")

	_, err = inventory.Dispose(m, mat, entity.ActionRejectByShop, testKeeperID, testNow)
	require.NoError(t, err)
	assert.Equal(t, entity.SubStateRejectedByShop, m.SubState)
	assert.True(t, mat.Stock.Equal(dec(10)))
	assert.True(t, mat.InReturn.IsZero())
	assert.False(t, m.Active)
}

func TestDispose_GuardasDeOrigen(t *testing.T) {
	mat := newMaterial(10)

	pending, err := inventory.NewReturn(testMovementID, testMaterialID, testEngineerID, dec(2), "", "", testNow)
	require.NoError(t, err)
	_, err = inventory.Dispose(pending, mat, entity.ActionReturnToStock, testKeeperID, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una devolución pendiente no admite disposición")

	w := newWithdrawal(t, 2)
	_, err = inventory.AuthorizeWithdrawal(w, mat, testKeeperID, "", testNow)
	require.NoError(t, err)
	_, err = inventory.Dispose(w, mat, entity.ActionDiscard, testKeeperID, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = inventory.Dispose(w, mat, "VOLAR", testKeeperID, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, inventory.IsDisposition("VOLAR"))
	assert.True(t, inventory.IsDisposition(entity.ActionDiscard))
}

func TestDispose_EnDevolucionNoNegativo(t *testing.T) {
	mat := newMaterial(10)
	m := acceptedReturn(t, mat, 3, "")
	mat.InReturn = dec(1)

	_, err := inventory.Dispose(m, mat, entity.ActionDiscard, testKeeperID, testNow)
	require.NoError(t, err)
	assert.True(t, mat.InReturn.IsZero())
}
