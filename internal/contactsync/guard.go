package contactsync

import (
	"context"
	"maps"
)

type guardKey struct{}

type inFlight map[string]struct{}

// enter marks op on id as running in the returned context. It reports false
// when the same operation is already running for id further up the call
// chain.
func enter(ctx context.Context, op, id string) (context.Context, bool) {
	key := op + ":" + id
	current, _ := ctx.Value(guardKey{}).(inFlight)
	if _, busy := current[key]; busy {
		return ctx, false
	}

	next := make(inFlight, len(current)+1)
	maps.Copy(next, current)
	next[key] = struct{}{}
	return context.WithValue(ctx, guardKey{}, next), true
}
