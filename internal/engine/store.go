package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mathbeast/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store owns the in-memory problem cache, solution cache, and hint log.
// All access goes through the mutex; problems are never deleted.
type Store struct {
	mu        sync.RWMutex
	problems  map[string]*models.Problem
	order     []string
	solutions map[string]*models.Solution
	hints     map[string][]models.Hint
}

func NewStore() *Store {
	return &Store{
		problems:  make(map[string]*models.Problem),
		solutions: make(map[string]*models.Solution),
		hints:     make(map[string][]models.Hint),
	}
}

// PutProblem stores a problem unless one with the same id already
// exists, in which case the existing record wins. Returns the canonical
// record and whether this call inserted it.
func (s *Store) PutProblem(p *models.Problem) (*models.Problem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.problems[p.ID]; ok {
		return existing, false
	}
	s.problems[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, true
}

func (s *Store) GetProblem(id string) (*models.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.problems[id]
	if !ok {
		return nil, fmt.Errorf("problem %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// AllProblems returns problems in insertion order.
func (s *Store) AllProblems() []models.Problem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Problem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.problems[id])
	}
	return out
}

func (s *Store) ProblemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.problems)
}

// SolutionKey builds the solution cache key. Reasoning level and the
// alternatives flag vary the generated result, so both are part of the
// identity.
func SolutionKey(problemID string, level models.ReasoningLevel, includeAlternatives bool) string {
	return fmt.Sprintf("%s:%s:%t", problemID, level, includeAlternatives)
}

func (s *Store) GetSolution(key string) (*models.Solution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sol, ok := s.solutions[key]
	return sol, ok
}

func (s *Store) PutSolution(key string, sol *models.Solution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solutions[key] = sol
}

// AppendHint adds to the problem's ordered hint log. Hints are never
// removed or rewritten.
func (s *Store) AppendHint(h models.Hint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hints[h.ProblemID] = append(s.hints[h.ProblemID], h)
}

func (s *Store) HintsForProblem(problemID string) []models.Hint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hints := s.hints[problemID]
	out := make([]models.Hint, len(hints))
	copy(out, hints)
	return out
}
