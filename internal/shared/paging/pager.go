// Package paging models remote listings as lazy, finite, non-restartable
// sequences of pages. The shape matches azcore's runtime.Pager so SDK pagers
// can be adapted with Map.
package paging

import (
	"context"
	"errors"
)

// ErrNoMorePages is returned by NextPage once a pager is exhausted
var ErrNoMorePages = errors.New("no more pages")

// Pager yields pages until More reports false. A pager cannot be rewound.
type Pager[T any] interface {
	More() bool
	NextPage(ctx context.Context) (T, error)
}

// Drain consumes p to completion, calling fn for every page in order.
// It stops at the first fetch or callback error.
func Drain[T any](ctx context.Context, p Pager[T], fn func(T) error) error {
	for p.More() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
	}
	return nil
}

// Map adapts a pager of S into a pager of T
func Map[S, T any](src Pager[S], convert func(S) (T, error)) Pager[T] {
	return &mappedPager[S, T]{src: src, convert: convert}
}

type mappedPager[S, T any] struct {
	src     Pager[S]
	convert func(S) (T, error)
}

func (m *mappedPager[S, T]) More() bool { return m.src.More() }

func (m *mappedPager[S, T]) NextPage(ctx context.Context) (T, error) {
	var zero T
	page, err := m.src.NextPage(ctx)
	if err != nil {
		return zero, err
	}
	return m.convert(page)
}

// Static returns a pager over pages already in memory
func Static[T any](pages ...T) Pager[T] {
	return &staticPager[T]{pages: pages}
}

type staticPager[T any] struct {
	pages []T
	next  int
}

func (s *staticPager[T]) More() bool { return s.next < len(s.pages) }

func (s *staticPager[T]) NextPage(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if !s.More() {
		return zero, ErrNoMorePages
	}
	page := s.pages[s.next]
	s.next++
	return page, nil
}

// Single fetches exactly one page lazily, on the first NextPage call
func Single[T any](fetch func(ctx context.Context) (T, error)) Pager[T] {
	return &singlePager[T]{fetch: fetch}
}

type singlePager[T any] struct {
	fetch func(ctx context.Context) (T, error)
	done  bool
}

func (s *singlePager[T]) More() bool { return !s.done }

func (s *singlePager[T]) NextPage(ctx context.Context) (T, error) {
	var zero T
	if s.done {
		return zero, ErrNoMorePages
	}
	s.done = true
	return s.fetch(ctx)
}

// Failed returns a pager whose first page fails with err. Used when a
// listing cannot even be started, so the failure surfaces at the same point
// a page fetch error would.
func Failed[T any](err error) Pager[T] {
	return Single(func(context.Context) (T, error) {
		var zero T
		return zero, err
	})
}
