package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bookstore-service/internal/domain"
	"github.com/spec-kit/bookstore-service/internal/repository"
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

func newCartFixture() *CartService {
	return NewCartService(repository.NewMemoryCartRepository())
}

func cartLine(t *testing.T, svc *CartService, cartID, itemID string) (domain.CartLine, bool) {
	t.Helper()
	items, err := svc.Items(context.Background(), cartID)
	require.NoError(t, err)
	for _, line := range items {
		if line.ItemID == itemID {
			return line, true
		}
	}
	return domain.CartLine{}, false
}

func TestIncrement_CreatesThenBumps(t *testing.T) {
	ctx := context.Background()
	svc := newCartFixture()

	quantity, err := svc.Increment(ctx, "alice", "book-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, quantity)

	quantity, err = svc.Increment(ctx, "alice", "book-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, quantity)
}

func TestSetQuantity_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newCartFixture()

	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-1", 5))
	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-1", 5))

	line, ok := cartLine(t, svc, "alice", "book-1")
	require.True(t, ok)
	require.EqualValues(t, 5, line.Quantity)
}

func TestSetQuantity_NegativeRejectedWithoutChange(t *testing.T) {
	ctx := context.Background()
	svc := newCartFixture()
	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-1", 3))

	err := svc.SetQuantity(ctx, "alice", "book-1", -1)
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeInvalidQuantity, domainErr.Code)

	line, ok := cartLine(t, svc, "alice", "book-1")
	require.True(t, ok)
	require.EqualValues(t, 3, line.Quantity)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	svc := newCartFixture()
	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-1", 2))

	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-1", 0))
	_, ok := cartLine(t, svc, "alice", "book-1")
	require.False(t, ok)
}

func TestRemoveAndClear_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newCartFixture()
	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-1", 1))
	require.NoError(t, svc.SetQuantity(ctx, "alice", "book-2", 2))

	require.NoError(t, svc.RemoveItem(ctx, "alice", "book-1"))
	// removing an absent line is a no-op success
	require.NoError(t, svc.RemoveItem(ctx, "alice", "book-1"))

	require.NoError(t, svc.Clear(ctx, "alice"))
	require.NoError(t, svc.Clear(ctx, "alice"))

	items, err := svc.Items(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCarts_AreIndependent(t *testing.T) {
	ctx := context.Background()
	svc := newCartFixture()

	_, err := svc.AddItem(ctx, "alice", "book-1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "bob", "book-2")
	require.NoError(t, err)

	aliceItems, err := svc.Items(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceItems, 1)
	require.Equal(t, "book-1", aliceItems[0].ItemID)
}
