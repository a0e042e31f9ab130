package coordinator

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"project-delivery-api/internal/domain"
)

var (
	// ErrNotLoaded is returned for entities the store has never fetched
	ErrNotLoaded = errors.New("entity not loaded")
	// ErrStoreClosed is returned after Close; late results are discarded too
	ErrStoreClosed = errors.New("store closed")
)

// Store holds the locally cached phase tree. All reads hand out copies and
// all writes go through the coordinator, so callers never share mutable
// state with in-flight speculative patches.
type Store struct {
	mu       sync.RWMutex
	phases   map[uuid.UUID]*domain.Phase
	byParent map[uuid.UUID]uuid.UUID // sub-phase id -> owning phase id
	closed   bool
}

// NewStore creates an empty phase tree store
func NewStore() *Store {
	return &Store{
		phases:   make(map[uuid.UUID]*domain.Phase),
		byParent: make(map[uuid.UUID]uuid.UUID),
	}
}

// PutPhase replaces the stored phase and reindexes its sub-phases
func (s *Store) PutPhase(phase domain.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.putPhaseLocked(phase)
	return nil
}

func (s *Store) putPhaseLocked(phase domain.Phase) {
	if prev, ok := s.phases[phase.ID]; ok {
		for i := range prev.SubPhases {
			delete(s.byParent, prev.SubPhases[i].ID)
		}
	}
	stored := clonePhase(&phase)
	s.phases[phase.ID] = stored
	for i := range stored.SubPhases {
		s.byParent[stored.SubPhases[i].ID] = stored.ID
	}
}

// PutSubPhase replaces one sub-phase inside its already stored owning phase
func (s *Store) PutSubPhase(sp domain.SubPhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	phase, ok := s.phases[sp.PhaseID]
	if !ok {
		return ErrNotLoaded
	}
	for i := range phase.SubPhases {
		if phase.SubPhases[i].ID == sp.ID {
			phase.SubPhases[i] = *cloneSubPhase(&sp)
			s.byParent[sp.ID] = phase.ID
			return nil
		}
	}
	phase.SubPhases = append(phase.SubPhases, *cloneSubPhase(&sp))
	s.byParent[sp.ID] = phase.ID
	return nil
}

// Phase returns a copy of the stored phase
func (s *Store) Phase(id uuid.UUID) (*domain.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	phase, ok := s.phases[id]
	if !ok {
		return nil, ErrNotLoaded
	}
	return clonePhase(phase), nil
}

// SubPhase returns copies of the stored sub-phase and its owning phase
func (s *Store) SubPhase(id uuid.UUID) (*domain.SubPhase, *domain.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, nil, ErrStoreClosed
	}
	phaseID, ok := s.byParent[id]
	if !ok {
		return nil, nil, ErrNotLoaded
	}
	phase := s.phases[phaseID]
	for i := range phase.SubPhases {
		if phase.SubPhases[i].ID == id {
			return cloneSubPhase(&phase.SubPhases[i]), clonePhase(phase), nil
		}
	}
	return nil, nil, ErrNotLoaded
}

// Phases returns copies of every stored phase ordered by display order
func (s *Store) Phases() []*domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Phase, 0, len(s.phases))
	for _, phase := range s.phases {
		out = append(out, clonePhase(phase))
	}
	sortPhases(out)
	return out
}

// RemovePhase drops a phase and its sub-phase index entries
func (s *Store) RemovePhase(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.phases[id]
	if !ok {
		return
	}
	for i := range prev.SubPhases {
		delete(s.byParent, prev.SubPhases[i].ID)
	}
	delete(s.phases, id)
}

// Close marks the store closed. Subsequent reads and writes fail with
// ErrStoreClosed, which is how results arriving after view teardown get
// discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.phases = make(map[uuid.UUID]*domain.Phase)
	s.byParent = make(map[uuid.UUID]uuid.UUID)
}

func sortPhases(phases []*domain.Phase) {
	sort.Slice(phases, func(i, j int) bool {
		return phases[i].DisplayOrder < phases[j].DisplayOrder
	})
}

func clonePhase(p *domain.Phase) *domain.Phase {
	out := *p
	out.AssigneeIDs = append([]byte(nil), p.AssigneeIDs...)
	out.SubPhases = make([]domain.SubPhase, len(p.SubPhases))
	for i := range p.SubPhases {
		out.SubPhases[i] = *cloneSubPhase(&p.SubPhases[i])
	}
	out.StatusLogs = append([]domain.StatusLogEntry(nil), p.StatusLogs...)
	return &out
}

func cloneSubPhase(sp *domain.SubPhase) *domain.SubPhase {
	out := *sp
	if sp.CanSkip != nil {
		v := *sp.CanSkip
		out.CanSkip = &v
	}
	out.FormData = append([]byte(nil), sp.FormData...)
	out.ChecklistItems = append([]domain.ChecklistItem(nil), sp.ChecklistItems...)
	out.Comments = append([]domain.Comment(nil), sp.Comments...)
	out.Approvals = append([]domain.Approval(nil), sp.Approvals...)
	out.Attachments = append([]domain.Attachment(nil), sp.Attachments...)
	out.StatusLogs = append([]domain.StatusLogEntry(nil), sp.StatusLogs...)
	return &out
}
