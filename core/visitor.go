package core

import (
	"context"
	"fmt"
	"reflect"

	"github.com/huangsam/gitwalk/schema"
)

// A visitor passed to Walker.Walk may implement any subset of the interfaces
// below. Missing capabilities fall back to: include every commit, no setup,
// and a zero-value result per visited commit.

// CommitTester selects which commits are visited.
type CommitTester interface {
	Test(commit schema.Commit) bool
}

// WalkInitializer runs once with the full history, before any checkout.
type WalkInitializer interface {
	Init(ctx context.Context, repo *Repository, commits []schema.Commit) error
}

// CommitVisitor is called with each selected commit materialized in the working copy.
type CommitVisitor[R any] interface {
	VisitCommit(ctx context.Context, repo *Repository, commit schema.Commit) (R, error)
}

// capabilities is the resolved view of a visitor.
type capabilities[R any] struct {
	test  func(schema.Commit) bool
	init  func(context.Context, *Repository, []schema.Commit) error
	visit func(context.Context, *Repository, schema.Commit) (R, error)
}

// resolveCapabilities looks up each optional capability once. A VisitCommit
// method whose result type does not match R is reported instead of being
// silently replaced by the default.
func resolveCapabilities[R any](visitor any) (capabilities[R], error) {
	caps := capabilities[R]{
		test: func(schema.Commit) bool { return true },
		init: func(context.Context, *Repository, []schema.Commit) error { return nil },
		visit: func(context.Context, *Repository, schema.Commit) (R, error) {
			var zero R
			return zero, nil
		},
	}
	if visitor == nil {
		return caps, nil
	}

	if t, ok := visitor.(CommitTester); ok {
		caps.test = t.Test
	}
	if i, ok := visitor.(WalkInitializer); ok {
		caps.init = i.Init
	}
	if v, ok := visitor.(CommitVisitor[R]); ok {
		caps.visit = v.VisitCommit
	} else if m, found := reflect.TypeOf(visitor).MethodByName("VisitCommit"); found {
		return caps, fmt.Errorf("visitor %T has VisitCommit with signature %s, which does not return %s", visitor, m.Type, reflect.TypeFor[R]())
	}
	return caps, nil
}
