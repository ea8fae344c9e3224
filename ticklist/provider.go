package ticklist

import "context"

// DataProvider supplies the two tick queries the swap engine needs. The
// in-memory List implements it; implementations are expected to be
// read-only for the lifetime of a pool snapshot.
type DataProvider interface {
	// Tick returns the initialized tick at the given index, or ErrTickNotFound.
	Tick(index int) (TickInfo, error)

	// NextInitializedTickWithinOneWord returns the next initialized tick at or
	// below (lte) or strictly above (!lte) the starting tick, clamped to the
	// 256-wide compressed word containing it, plus whether the returned tick
	// is initialized.
	NextInitializedTickWithinOneWord(tick int, lte bool, tickSpacing int) (int, bool, error)
}

// ContextDataProvider is the I/O-backed variant of DataProvider: a remote
// implementation (RPC, disk) takes a context so callers can impose deadlines
// and cancellation. The engine itself is synchronous; use Bind to drive a
// ContextDataProvider through a swap.
type ContextDataProvider interface {
	Tick(ctx context.Context, index int) (TickInfo, error)
	NextInitializedTickWithinOneWord(ctx context.Context, tick int, lte bool, tickSpacing int) (int, bool, error)
}

// Bind adapts a ContextDataProvider to the synchronous DataProvider interface
// by pinning a context to every query. The swap loop issues its lookups
// sequentially, so no concurrent fan-out happens behind the adapter.
func Bind(ctx context.Context, p ContextDataProvider) DataProvider {
	return &boundProvider{ctx: ctx, p: p}
}

type boundProvider struct {
	ctx context.Context
	p   ContextDataProvider
}

func (b *boundProvider) Tick(index int) (TickInfo, error) {
	return b.p.Tick(b.ctx, index)
}

func (b *boundProvider) NextInitializedTickWithinOneWord(tick int, lte bool, tickSpacing int) (int, bool, error) {
	return b.p.NextInitializedTickWithinOneWord(b.ctx, tick, lte, tickSpacing)
}
