package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `mv.id, mv.material_id, mv.tipo, mv.cantidad, mv.estado, mv.subestado,
	mv.visible_en_existencias, mv.activo, mv.observacion, mv.observacion_almacenista,
	mv.evidencia, mv.evidencia_almacenista, mv.solicitado_por_id, mv.usuario_id, mv.fecha, mv.updated_at`

const movementDetailFrom = `
	FROM movimientos mv
	JOIN materiales ma ON ma.id = mv.material_id
	JOIN usuarios sol ON sol.id = mv.solicitado_por_id
	LEFT JOIN usuarios pro ON pro.id = mv.usuario_id`

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de movimientos. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos (id, material_id, tipo, cantidad, estado, subestado, visible_en_existencias, activo,
			observacion, observacion_almacenista, evidencia, evidencia_almacenista, solicitado_por_id, usuario_id, fecha, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MaterialID, m.Type, m.Quantity, m.Status, string(m.SubState), m.VisibleInStock, m.Active,
		nullIfEmpty(m.Note), nullIfEmpty(m.ReviewerNote), nullIfEmpty(m.Evidence), nullIfEmpty(m.ReviewerEvidence),
		m.RequestedBy, m.ProcessedBy, m.Date, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM movimientos mv WHERE mv.id = $1`, id)
}

// GetForUpdate obtiene el movimiento y bloquea la fila (SELECT FOR UPDATE).
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM movimientos mv WHERE mv.id = $1 FOR UPDATE`, id)
}

func (r *MovementRepo) getOne(ctx context.Context, query string, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movimiento: %w", err)
	}
	return m, nil
}

// Update persiste el estado completo del movimiento tras una transición.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movimientos
		SET tipo = $2, estado = $3, subestado = $4, visible_en_existencias = $5, activo = $6,
			observacion_almacenista = $7, evidencia_almacenista = $8, usuario_id = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.Status, string(m.SubState), m.VisibleInStock, m.Active,
		nullIfEmpty(m.ReviewerNote), nullIfEmpty(m.ReviewerEvidence), m.ProcessedBy, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update movimiento: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDetail movimiento con material y nombres de usuarios.
func (r *MovementRepo) GetDetail(ctx context.Context, id string) (*entity.MovementDetail, error) {
	query := `SELECT ` + movementColumns + `, ma.codigo, ma.nombre, ma.unidad, sol.nombre, pro.nombre` +
		movementDetailFrom + ` WHERE mv.id = $1`
	d, err := scanMovementDetail(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get detalle movimiento: %w", err)
	}
	return d, nil
}

// ListDetails lista movimientos con datos de material y usuarios, más recientes primero.
func (r *MovementRepo) ListDetails(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementDetail, error) {
	where, args := buildMovementWhere(f)
	query := `SELECT ` + movementColumns + `, ma.codigo, ma.nombre, ma.unidad, sol.nombre, pro.nombre` +
		movementDetailFrom + where + ` ORDER BY mv.fecha DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementDetail
	for rows.Next() {
		d, err := scanMovementDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Count cuenta movimientos que cumplen el filtro (Limit se ignora).
func (r *MovementRepo) Count(ctx context.Context, f repository.MovementFilter) (int, error) {
	where, args := buildMovementWhere(f)
	var n int
	query := `SELECT COUNT(*) FROM movimientos mv JOIN materiales ma ON ma.id = mv.material_id` + where
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movimientos: %w", err)
	}
	return n, nil
}

// SumQuantity suma cantidades de un solicitante para un material, tipo y estado.
func (r *MovementRepo) SumQuantity(ctx context.Context, requestedBy, materialID, movType, status string) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(cantidad), 0) FROM movimientos
		WHERE solicitado_por_id = $1 AND material_id = $2 AND tipo = $3 AND estado = $4`
	if err := r.q.QueryRow(ctx, query, requestedBy, materialID, movType, status).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum cantidad: %w", err)
	}
	return total, nil
}

// SumByMaterial sumas por material para un solicitante, tipo y estado.
func (r *MovementRepo) SumByMaterial(ctx context.Context, requestedBy, movType, status string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT material_id, SUM(cantidad) FROM movimientos
		WHERE solicitado_por_id = $1 AND tipo = $2 AND estado = $3
		GROUP BY material_id`
	rows, err := r.q.Query(ctx, query, requestedBy, movType, status)
	if err != nil {
		return nil, fmt.Errorf("sum por material: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			id  string
			sum decimal.Decimal
		)
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan suma: %w", err)
		}
		out[id] = sum
	}
	return out, rows.Err()
}

// LastDate fecha del movimiento más reciente; nil si no hay movimientos.
func (r *MovementRepo) LastDate(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	if err := r.q.QueryRow(ctx, `SELECT MAX(fecha) FROM movimientos`).Scan(&t); err != nil {
		return nil, fmt.Errorf("última fecha: %w", err)
	}
	return t, nil
}

// DeleteRejectedByRequester borra las solicitudes y devoluciones rechazadas del solicitante.
// Las autorizadas alimentan el tope de devolución y el historial de stock, así que no se tocan.
func (r *MovementRepo) DeleteRejectedByRequester(ctx context.Context, requestedBy string) (int64, error) {
	query := `
		DELETE FROM movimientos
		WHERE solicitado_por_id = $1
		  AND estado = 'RECHAZADO'`
	tag, err := r.q.Exec(ctx, query, requestedBy)
	if err != nil {
		return 0, fmt.Errorf("borrar historial: %w", err)
	}
	return tag.RowsAffected(), nil
}

func buildMovementWhere(f repository.MovementFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.Types) > 0 {
		add("mv.tipo = ANY($%d)", f.Types)
	}
	if len(f.Statuses) > 0 {
		add("mv.estado = ANY($%d)", f.Statuses)
	}
	if len(f.SubStates) > 0 {
		subs := make([]string, len(f.SubStates))
		for i, s := range f.SubStates {
			subs[i] = string(s)
		}
		add("mv.subestado = ANY($%d)", subs)
	}
	if f.RequestedBy != "" {
		add("mv.solicitado_por_id = $%d", f.RequestedBy)
	}
	if f.MaterialID != "" {
		add("mv.material_id = $%d", f.MaterialID)
	}
	if f.Visible != nil {
		add("mv.visible_en_existencias = $%d", *f.Visible)
	}
	if f.Active != nil {
		add("mv.activo = $%d", *f.Active)
	}
	if f.From != nil {
		add("mv.fecha >= $%d", *f.From)
	}
	if f.To != nil {
		add("mv.fecha < $%d", *f.To)
	}
	if f.ActiveMaterialOnly {
		conds = append(conds, "ma.activo = TRUE")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	if err := row.Scan(movementDest(&m)...); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMovementDetail(row pgx.Row) (*entity.MovementDetail, error) {
	var (
		d         entity.MovementDetail
		processor *string
	)
	dest := append(movementDest(&d.Movement), &d.MaterialCode, &d.MaterialName, &d.MaterialUnit, &d.RequesterName, &processor)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.ProcessorName = deref(processor)
	return &d, nil
}

// movementDest destinos de Scan en el orden de movementColumns.
func movementDest(m *entity.Movement) []any {
	return []any{
		&m.ID, &m.MaterialID, &m.Type, &m.Quantity, &m.Status, &m.SubState,
		&m.VisibleInStock, &m.Active,
		(*nullString)(&m.Note), (*nullString)(&m.ReviewerNote),
		(*nullString)(&m.Evidence), (*nullString)(&m.ReviewerEvidence),
		&m.RequestedBy, &m.ProcessedBy, &m.Date, &m.UpdatedAt,
	}
}
