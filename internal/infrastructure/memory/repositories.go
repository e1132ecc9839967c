package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

var (
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.MaterialRepository      = (*MaterialRepo)(nil)
	_ repository.MovementRepository      = (*MovementRepo)(nil)
	_ repository.MovementEventRepository = (*EventRepo)(nil)
	_ repository.NotificationRepository  = (*NotificationRepo)(nil)
)

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameExists
		}
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]*entity.User, error) {
	return r.ListByRole(ctx, "")
}

func (r *UserRepo) ListByRole(_ context.Context, role string) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.User
	for _, u := range r.s.st.users {
		if role == "" || u.Role == role {
			cp := u
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, existing := range r.s.st.users {
		if id != u.ID && existing.Username == u.Username {
			return domain.ErrUsernameExists
		}
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for _, m := range r.s.st.movements {
		if m.RequestedBy == id || (m.ProcessedBy != nil && *m.ProcessedBy == id) {
			return domain.ErrConflict
		}
	}
	delete(r.s.st.users, id)
	return nil
}

// ── Materiales ───────────────────────────────────────────────────────────────

// MaterialRepo materiales en memoria.
type MaterialRepo struct {
	s  *Store
	tx *journal
}

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.materials {
		if existing.Code == m.Code {
			return domain.ErrDuplicate
		}
	}
	r.tx.material(&r.s.st, m.ID)
	r.s.st.materials[m.ID] = *m
	return nil
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.st.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// GetForUpdate dentro de Run el bloqueo lo da el mutex de transacciones.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.st.materials {
		if m.Code == code {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MaterialRepo) List(_ context.Context, search string, onlyActive bool) ([]*entity.Material, error) {
	return r.filter(func(m entity.Material) bool {
		if onlyActive && !m.Active {
			return false
		}
		return search == "" || strings.Contains(m.SearchKey, search)
	}), nil
}

func (r *MaterialRepo) ListLowStock(_ context.Context) ([]*entity.Material, error) {
	return r.filter(func(m entity.Material) bool {
		return m.Active && m.Stock.LessThanOrEqual(m.MinStock)
	}), nil
}

func (r *MaterialRepo) CountBelowMin(_ context.Context) (int, error) {
	return len(r.filter(func(m entity.Material) bool {
		return m.Active && m.Stock.LessThan(m.MinStock)
	})), nil
}

func (r *MaterialRepo) filter(keep func(entity.Material) bool) []*entity.Material {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Material
	for _, m := range r.s.st.materials {
		if keep(m) {
			cp := m
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *MaterialRepo) Update(_ context.Context, m *entity.Material) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.materials[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, existing := range r.s.st.materials {
		if id != m.ID && existing.Code == m.Code {
			return domain.ErrDuplicate
		}
	}
	cur.Code, cur.Name, cur.Description, cur.Unit = m.Code, m.Name, m.Description, m.Unit
	cur.MinStock, cur.SearchKey, cur.UpdatedAt = m.MinStock, m.SearchKey, m.UpdatedAt
	r.tx.material(&r.s.st, m.ID)
	r.s.st.materials[m.ID] = cur
	return nil
}

func (r *MaterialRepo) UpdateBalances(_ context.Context, m *entity.Material) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.materials[m.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Stock, cur.InReturn, cur.UpdatedAt = m.Stock, m.InReturn, m.UpdatedAt
	r.tx.material(&r.s.st, m.ID)
	r.s.st.materials[m.ID] = cur
	return nil
}

func (r *MaterialRepo) SetStock(_ context.Context, id string, stock decimal.Decimal) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Stock, cur.UpdatedAt = stock, time.Now().UTC()
	r.tx.material(&r.s.st, id)
	r.s.st.materials[id] = cur
	return nil
}

func (r *MaterialRepo) SoftDelete(_ context.Context, id string) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Active, cur.UpdatedAt = false, time.Now().UTC()
	r.tx.material(&r.s.st, id)
	r.s.st.materials[id] = cur
	return nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// MovementRepo movimientos en memoria.
type MovementRepo struct {
	s  *Store
	tx *journal
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.tx.movement(&r.s.st, m.ID)
	r.s.st.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.st.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) Update(_ context.Context, m *entity.Movement) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.tx.movement(&r.s.st, m.ID)
	r.s.st.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) GetDetail(_ context.Context, id string) (*entity.MovementDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.st.movements[id]
	if !ok {
		return nil, nil
	}
	return r.detail(m), nil
}

// detail requiere mu tomado.
func (r *MovementRepo) detail(m entity.Movement) *entity.MovementDetail {
	d := &entity.MovementDetail{Movement: m}
	if mat, ok := r.s.st.materials[m.MaterialID]; ok {
		d.MaterialCode, d.MaterialName, d.MaterialUnit = mat.Code, mat.Name, mat.Unit
	}
	if u, ok := r.s.st.users[m.RequestedBy]; ok {
		d.RequesterName = u.Name
	}
	if m.ProcessedBy != nil {
		if u, ok := r.s.st.users[*m.ProcessedBy]; ok {
			d.ProcessorName = u.Name
		}
	}
	return d
}

func (r *MovementRepo) ListDetails(_ context.Context, f repository.MovementFilter) ([]*entity.MovementDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.MovementDetail
	for _, m := range r.s.st.movements {
		if r.matches(m, f) {
			list = append(list, r.detail(m))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

func (r *MovementRepo) Count(_ context.Context, f repository.MovementFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.st.movements {
		if r.matches(m, f) {
			n++
		}
	}
	return n, nil
}

// matches requiere mu tomado.
func (r *MovementRepo) matches(m entity.Movement, f repository.MovementFilter) bool {
	if len(f.Types) > 0 && !contains(f.Types, m.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, m.Status) {
		return false
	}
	if len(f.SubStates) > 0 {
		found := false
		for _, s := range f.SubStates {
			if s == m.SubState {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.RequestedBy != "" && m.RequestedBy != f.RequestedBy {
		return false
	}
	if f.MaterialID != "" && m.MaterialID != f.MaterialID {
		return false
	}
	if f.Visible != nil && m.VisibleInStock != *f.Visible {
		return false
	}
	if f.Active != nil && m.Active != *f.Active {
		return false
	}
	if f.From != nil && m.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.Date.Before(*f.To) {
		return false
	}
	if f.ActiveMaterialOnly {
		if mat, ok := r.s.st.materials[m.MaterialID]; !ok || !mat.Active {
			return false
		}
	}
	return true
}

func (r *MovementRepo) SumQuantity(_ context.Context, requestedBy, materialID, movType, status string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, m := range r.s.st.movements {
		if m.RequestedBy == requestedBy && m.MaterialID == materialID && m.Type == movType && m.Status == status {
			total = total.Add(m.Quantity)
		}
	}
	return total, nil
}

func (r *MovementRepo) SumByMaterial(_ context.Context, requestedBy, movType, status string) (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]decimal.Decimal)
	for _, m := range r.s.st.movements {
		if m.RequestedBy == requestedBy && m.Type == movType && m.Status == status {
			out[m.MaterialID] = out[m.MaterialID].Add(m.Quantity)
		}
	}
	return out, nil
}

func (r *MovementRepo) LastDate(_ context.Context) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last *time.Time
	for _, m := range r.s.st.movements {
		if last == nil || m.Date.After(*last) {
			d := m.Date
			last = &d
		}
	}
	return last, nil
}

func (r *MovementRepo) DeleteRejectedByRequester(_ context.Context, requestedBy string) (int64, error) {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.st.movements {
		if m.RequestedBy != requestedBy || m.Status != entity.StatusRechazado {
			continue
		}
		r.tx.movement(&r.s.st, id)
		delete(r.s.st.movements, id)
		n++
	}
	kept := r.s.st.events[:0]
	for _, e := range r.s.st.events {
		if _, ok := r.s.st.movements[e.MovementID]; ok {
			kept = append(kept, e)
		}
	}
	r.s.st.events = kept
	return n, nil
}

// ── Eventos ──────────────────────────────────────────────────────────────────

// EventRepo historial en memoria.
type EventRepo struct {
	s  *Store
	tx *journal
}

func (r *EventRepo) Create(_ context.Context, e *entity.MovementEvent) error {
	defer r.s.exclusive(r.tx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.events = append(r.s.st.events, *e)
	return nil
}

func (r *EventRepo) ListByMovement(_ context.Context, movementID string) ([]*entity.MovementEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.MovementEvent
	for _, e := range r.s.st.events {
		if e.MovementID == movementID {
			cp := e
			list = append(list, &cp)
		}
	}
	return list, nil
}

// ── Notificaciones ───────────────────────────────────────────────────────────

// NotificationRepo notificaciones en memoria.
type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.notifications = append(r.s.st.notifications, *n)
	return nil
}

func (r *NotificationRepo) ListRecentUnread(_ context.Context, userID string, limit int) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Notification
	for i := len(r.s.st.notifications) - 1; i >= 0; i-- {
		n := r.s.st.notifications[i]
		if n.UserID != userID || n.Read {
			continue
		}
		cp := n
		list = append(list, &cp)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st.notifications {
		if r.s.st.notifications[i].UserID == userID {
			r.s.st.notifications[i].Read = true
		}
	}
	return nil
}

func (r *NotificationRepo) DeleteAll(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.st.notifications[:0]
	for _, n := range r.s.st.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.s.st.notifications = kept
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
