package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	"github.com/SscSPs/rewards_ledger/internal/core/services"
	"github.com/SscSPs/rewards_ledger/internal/repositories/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindReferrer(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushReadResult(graph.Result{Records: []graph.Record{{"accountID": "child", "referrerID": "parent"}}})
	client.PushReadResult(graph.Result{Records: []graph.Record{{"accountID": "root", "referrerID": nil}}})
	client.PushReadResult(graph.Result{})
	repo := graph.NewReferralLinkRepository(client)
	ctx := context.Background()

	referrer, err := repo.FindReferrer(ctx, "child")
	require.NoError(t, err)
	assert.Equal(t, "parent", referrer)

	referrer, err = repo.FindReferrer(ctx, "root")
	require.NoError(t, err)
	assert.Empty(t, referrer)

	_, err = repo.FindReferrer(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	reads := client.ReadCalls()
	require.Len(t, reads, 3)
	assert.Equal(t, "child", reads[0].Params["accountID"])
}

func TestFindReferrer_ClientError(t *testing.T) {
	down := errors.New("connection refused")
	repo := graph.NewReferralLinkRepository(graph.NewMemoryClient().WithError(down))

	_, err := repo.FindReferrer(context.Background(), "child")
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLinkAccount(t *testing.T) {
	client := graph.NewMemoryClient()
	client.PushWriteResult(graph.Result{Records: []graph.Record{{"accountID": "root"}}})
	client.PushWriteResult(graph.Result{Records: []graph.Record{{"accountID": "child"}}})
	repo := graph.NewReferralLinkRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.LinkAccount(ctx, "root", ""))
	require.NoError(t, repo.LinkAccount(ctx, "child", "root"))

	writes := client.WriteCalls()
	require.Len(t, writes, 2)
	assert.NotContains(t, writes[0].Params, "referrerID")
	assert.NotContains(t, writes[0].Query, "REFERRED_BY")
	assert.Equal(t, "root", writes[1].Params["referrerID"])
	assert.Contains(t, writes[1].Query, "REFERRED_BY")
}

func TestLinkAccount_ReferrerNotProjected(t *testing.T) {
	client := graph.NewMemoryClient()
	repo := graph.NewReferralLinkRepository(client)

	err := repo.LinkAccount(context.Background(), "child", "unprojected")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.Len(t, client.WriteCalls(), 1)
}

func TestAncestorsOverGraph(t *testing.T) {
	client := graph.NewMemoryClient()
	for _, hop := range [][2]string{{"c", "b"}, {"b", "a"}, {"a", ""}} {
		rec := graph.Record{"accountID": hop[0], "referrerID": nil}
		if hop[1] != "" {
			rec["referrerID"] = hop[1]
		}
		client.PushReadResult(graph.Result{Records: []graph.Record{rec}})
	}
	walker := services.NewReferralGraphService(graph.NewReferralLinkRepository(client))

	ancestors, err := walker.AncestorsOf(context.Background(), "c", domain.MaxReferralDepth)

	require.NoError(t, err)
	assert.Equal(t, []domain.Ancestor{{Depth: 1, AccountID: "b"}, {Depth: 2, AccountID: "a"}}, ancestors)
}
