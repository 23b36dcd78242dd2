package service

import (
	"context"
	"testing"

	"clientdesk-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPipelineService() PipelineService {
	return NewPipelineService(
		repository.NewMemoryPipelinesRepository(),
		repository.NewMemoryDealsRepository(),
		zap.NewNop(),
	)
}

func createTestBoard(t *testing.T, svc PipelineService, stages ...string) *PipelineDTO {
	pipeline, err := svc.CreatePipeline(context.Background(), CreatePipelineRequest{
		TenantID:     testTenant,
		PipelineName: "Sales",
		Stages:       stages,
	})
	require.NoError(t, err)
	return pipeline
}

func TestCreatePipeline_StagesOrderedByPosition(t *testing.T) {
	svc := newTestPipelineService()
	pipeline := createTestBoard(t, svc, "Lead", "Qualified", "Won")

	require.Len(t, pipeline.Stages, 3)
	assert.Equal(t, "Lead", pipeline.Stages[0].StageName)
	assert.Equal(t, 0, pipeline.Stages[0].Position)
	assert.Equal(t, "Won", pipeline.Stages[2].StageName)
	assert.Equal(t, 2, pipeline.Stages[2].Position)
}

func TestCreatePipeline_RequiresStages(t *testing.T) {
	svc := newTestPipelineService()

	_, err := svc.CreatePipeline(context.Background(), CreatePipelineRequest{
		TenantID:     testTenant,
		PipelineName: "Empty",
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "stages", verr.Field)
}

func TestCreateDeal_StageMustBelongToPipeline(t *testing.T) {
	svc := newTestPipelineService()
	ctx := context.Background()
	board := createTestBoard(t, svc, "Lead", "Won")
	other := createTestBoard(t, svc, "New")

	deal, err := svc.CreateDeal(ctx, CreateDealRequest{
		TenantID:   testTenant,
		PipelineID: board.PipelineID,
		StageID:    board.Stages[0].StageID,
		Title:      "Big deal",
		Amount:     5000,
	})
	require.NoError(t, err)
	assert.Equal(t, board.Stages[0].StageID, deal.StageID)
	assert.Equal(t, "open", deal.Status)

	_, err = svc.CreateDeal(ctx, CreateDealRequest{
		TenantID:   testTenant,
		PipelineID: board.PipelineID,
		StageID:    other.Stages[0].StageID,
		Title:      "Wrong board",
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "stage_id", verr.Field)
}

func TestPatchDeal_StageMove(t *testing.T) {
	svc := newTestPipelineService()
	ctx := context.Background()
	board := createTestBoard(t, svc, "Lead", "Won")
	other := createTestBoard(t, svc, "New")

	deal, err := svc.CreateDeal(ctx, CreateDealRequest{
		TenantID:   testTenant,
		PipelineID: board.PipelineID,
		StageID:    board.Stages[0].StageID,
		Title:      "Moving deal",
	})
	require.NoError(t, err)

	moved, err := svc.PatchDeal(ctx, testTenant, deal.DealID, DealPatch{
		StageID: strOpt(board.Stages[1].StageID),
	})
	require.NoError(t, err)
	assert.Equal(t, board.Stages[1].StageID, moved.StageID)

	// Moving to a stage of another board is rejected, deal untouched.
	_, err = svc.PatchDeal(ctx, testTenant, deal.DealID, DealPatch{
		StageID: strOpt(other.Stages[0].StageID),
	})
	require.Error(t, err)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "stage_id", verr.Field)

	list, err := svc.ListDeals(ctx, ListDealsRequest{TenantID: testTenant, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, board.Stages[1].StageID, list.Items[0].StageID)
}

func TestDeleteDeal_ExcludedFromLists(t *testing.T) {
	svc := newTestPipelineService()
	ctx := context.Background()
	board := createTestBoard(t, svc, "Lead")

	deal, err := svc.CreateDeal(ctx, CreateDealRequest{
		TenantID:   testTenant,
		PipelineID: board.PipelineID,
		StageID:    board.Stages[0].StageID,
		Title:      "Short lived",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDeal(ctx, testTenant, deal.DealID))

	list, err := svc.ListDeals(ctx, ListDealsRequest{TenantID: testTenant, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}
