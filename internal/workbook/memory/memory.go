// Package memory is an in-memory workbook source used for development and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

type Source struct {
	mu     sync.Mutex
	order  []string
	sheets map[string][][]string
}

func New() *Source {
	return &Source{sheets: make(map[string][][]string)}
}

// AddSheet registers a month sheet. Re-adding a label replaces its grid.
func (s *Source) AddSheet(label string, grid [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[label]; !ok {
		s.order = append(s.order, label)
	}
	s.sheets[label] = grid
}

func (s *Source) Months(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

func (s *Source) ReadSheet(_ context.Context, label string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.sheets[label]
	if !ok {
		return nil, fmt.Errorf("no sheet %q", label)
	}
	return grid, nil
}

// Seed returns a small two-month workbook so the server has something to
// show when no real backend is configured.
func Seed() *Source {
	s := New()
	s.AddSheet("Jul-25", [][]string{
		{"Home"},
		{"Groceries", "500", "620"},
		{"Rent", "1200", "1200"},
		{"Transport", "150", "90"},
	})
	s.AddSheet("Aug-25", [][]string{
		{"Home"},
		{"Groceries", "500", "480"},
		{"Rent", "1200", "1200"},
		{"Transport", "150", "210"},
	})
	return s
}
