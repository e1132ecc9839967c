// Package memory implementa los puertos de persistencia en memoria. Sirve para correr la API
// sin PostgreSQL (STORAGE=memory) y como doble de pruebas de los casos de uso y handlers.
package memory

import (
	"context"
	"sync"

	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	users         map[string]entity.User
	materials     map[string]entity.Material
	movements     map[string]entity.Movement
	events        []entity.MovementEvent
	notifications []entity.Notification
}

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	txMu sync.Mutex   // serializa Run y las escrituras de materiales, movimientos y eventos
	mu   sync.RWMutex // protege st
	st   state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: state{
		users:     map[string]entity.User{},
		materials: map[string]entity.Material{},
		movements: map[string]entity.Movement{},
	}}
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Materials repositorio de materiales.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{s: s} }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Events historial de movimientos.
func (s *Store) Events() *EventRepo { return &EventRepo{s: s} }

// Notifications repositorio de notificaciones.
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

// Run ejecuta fn de forma exclusiva frente a otras escrituras de materiales, movimientos y
// eventos. Si fn falla se deshacen solo sus propias escrituras.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	materialRepo repository.MaterialRepository,
	eventRepo repository.MovementEventRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	j := &journal{
		materials: map[string]*entity.Material{},
		movements: map[string]*entity.Movement{},
		events:    len(s.st.events),
	}
	s.mu.RUnlock()

	err := fn(&MovementRepo{s: s, tx: j}, &MaterialRepo{s: s, tx: j}, &EventRepo{s: s, tx: j})
	if err != nil {
		s.mu.Lock()
		j.rollback(&s.st)
		s.mu.Unlock()
		return err
	}
	return nil
}

// exclusive toma txMu para una escritura fuera de Run; dentro de Run ya está tomado.
func (s *Store) exclusive(tx *journal) func() {
	if tx != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// journal valores previos de las filas que toca una transacción. nil indica que la fila no existía.
type journal struct {
	materials map[string]*entity.Material
	movements map[string]*entity.Movement
	events    int
}

// material requiere mu tomado.
func (j *journal) material(st *state, id string) {
	if j == nil {
		return
	}
	if _, seen := j.materials[id]; seen {
		return
	}
	if cur, ok := st.materials[id]; ok {
		j.materials[id] = &cur
		return
	}
	j.materials[id] = nil
}

// movement requiere mu tomado.
func (j *journal) movement(st *state, id string) {
	if j == nil {
		return
	}
	if _, seen := j.movements[id]; seen {
		return
	}
	if cur, ok := st.movements[id]; ok {
		j.movements[id] = &cur
		return
	}
	j.movements[id] = nil
}

func (j *journal) rollback(st *state) {
	for id, prev := range j.materials {
		if prev == nil {
			delete(st.materials, id)
			continue
		}
		st.materials[id] = *prev
	}
	for id, prev := range j.movements {
		if prev == nil {
			delete(st.movements, id)
			continue
		}
		st.movements[id] = *prev
	}
	if len(st.events) > j.events {
		st.events = st.events[:j.events]
	}
}
