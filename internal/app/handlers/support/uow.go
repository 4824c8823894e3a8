package support

import (
	"context"

	"staybook/internal/app/uow"
)

// Unit is a unit of work that is either joined from the context (the Transaction
// middleware owns it) or started here and owned by the handler.
type Unit struct {
	uow.UnitOfWork
	owned    bool
	finished bool
}

// BeginUnit joins the unit of work in ctx or starts a new one. Callers must
// defer Release and call Complete on success.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (*Unit, context.Context, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &Unit{UnitOfWork: unit}, ctx, nil
	}
	if factory == nil {
		return nil, ctx, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	return &Unit{UnitOfWork: unit, owned: true}, uow.Bind(ctx, unit), nil
}

// BeginReadOnlyUnit is BeginUnit for queries.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (*Unit, context.Context, error) {
	return BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
}

// Complete commits an owned unit. Joined units are committed by their owner.
func (u *Unit) Complete(ctx context.Context) error {
	if !u.owned || u.finished {
		return nil
	}
	u.finished = true
	return u.UnitOfWork.Commit(ctx)
}

// Release rolls back an owned unit that was not completed.
func (u *Unit) Release(ctx context.Context) {
	if !u.owned || u.finished {
		return
	}
	u.finished = true
	_ = u.UnitOfWork.Rollback(ctx)
}
