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

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, codigo, nombre, descripcion, unidad, stock, stock_minimo, en_devolucion, activo, busqueda, created_at, updated_at`

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de materiales. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create inserta un material. Código repetido -> ErrDuplicate.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materiales (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Code, m.Name, m.Description, m.Unit, m.Stock, m.MinStock, m.InReturn,
		m.Active, m.SearchKey, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// GetByID obtiene un material por ID (activo o no).
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materiales WHERE id = $1`, id)
}

// GetForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE).
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materiales WHERE id = $1 FOR UPDATE`, id)
}

// GetByCode obtiene un material por código.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	return r.getOne(ctx, `SELECT `+materialColumns+` FROM materiales WHERE codigo = $1`, code)
}

func (r *MaterialRepo) getOne(ctx context.Context, query string, arg any) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// List lista materiales por nombre; search debe venir ya normalizado (textnorm.Fold).
func (r *MaterialRepo) List(ctx context.Context, search string, onlyActive bool) ([]*entity.Material, error) {
	var (
		where []string
		args  []any
	)
	if onlyActive {
		where = append(where, "activo = TRUE")
	}
	if search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		where = append(where, fmt.Sprintf("busqueda LIKE $%d", len(args)))
	}
	query := `SELECT ` + materialColumns + ` FROM materiales`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY nombre"
	return r.list(ctx, query, args...)
}

// ListLowStock materiales activos con stock <= stock_minimo.
func (r *MaterialRepo) ListLowStock(ctx context.Context) ([]*entity.Material, error) {
	return r.list(ctx, `
		SELECT `+materialColumns+` FROM materiales
		WHERE activo = TRUE AND stock <= stock_minimo
		ORDER BY nombre`)
}

// CountBelowMin cuenta materiales activos con stock estrictamente menor al mínimo.
func (r *MaterialRepo) CountBelowMin(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM materiales WHERE activo = TRUE AND stock < stock_minimo`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock bajo: %w", err)
	}
	return n, nil
}

func (r *MaterialRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Material, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materiales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Update actualiza los datos descriptivos y el mínimo. No toca saldos.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `
		UPDATE materiales
		SET codigo = $2, nombre = $3, descripcion = $4, unidad = $5, stock_minimo = $6, busqueda = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.Code, m.Name, m.Description, m.Unit, m.MinStock, m.SearchKey, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateBalances persiste stock y en_devolucion. Se llama con la fila bloqueada.
func (r *MaterialRepo) UpdateBalances(ctx context.Context, m *entity.Material) error {
	_, err := r.q.Exec(ctx,
		`UPDATE materiales SET stock = $2, en_devolucion = $3, updated_at = $4 WHERE id = $1`,
		m.ID, m.Stock, m.InReturn, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update saldos material: %w", err)
	}
	return nil
}

// SetStock sobrescribe el stock (ajuste manual del almacenista).
func (r *MaterialRepo) SetStock(ctx context.Context, id string, stock decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE materiales SET stock = $2, updated_at = $3 WHERE id = $1`,
		id, stock, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca activo = false.
func (r *MaterialRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE materiales SET activo = FALSE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("soft delete material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	err := row.Scan(
		&m.ID, &m.Code, &m.Name, &m.Description, &m.Unit, &m.Stock, &m.MinStock, &m.InReturn,
		&m.Active, &m.SearchKey, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
