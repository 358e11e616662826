package businessflow

import (
	"testing"

	"github.com/jphish/campaign-service/app/services"
	"github.com/jphish/campaign-service/models"
	"github.com/jphish/campaign-service/repository"
	testingutil "github.com/jphish/campaign-service/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		fixtures := testingutil.NewTestFixtures(testDB)
		campaignRepo := repository.NewCampaignRepository(testDB.DB)
		targetRepo := repository.NewCampaignTargetRepository(testDB.DB)
		flow := NewCampaignFlow(campaignRepo, targetRepo)

		t.Run("ListAllRequiresAdmin", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			_, err := fixtures.CreateTestCampaign(5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestCampaign(9)
			require.NoError(t, err)

			campaigns, err := flow.ListAll(ctx, services.AdminIdentity())
			require.NoError(t, err)
			assert.Len(t, campaigns, 2)

			_, err = flow.ListAll(ctx, services.ClientIdentity(5))
			require.Error(t, err)
			assert.True(t, IsForbidden(err))
		})

		t.Run("ListByClient", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			_, err := fixtures.CreateTestCampaign(5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestCampaign(9)
			require.NoError(t, err)

			// Owner sees only their own campaigns
			campaigns, err := flow.ListByClient(ctx, services.ClientIdentity(5), 5)
			require.NoError(t, err)
			require.Len(t, campaigns, 1)
			assert.Equal(t, uint(5), campaigns[0].ClientID)

			// Admin may list anyone's
			campaigns, err = flow.ListByClient(ctx, services.AdminIdentity(), 9)
			require.NoError(t, err)
			assert.Len(t, campaigns, 1)

			// A client may not list another client's campaigns
			_, err = flow.ListByClient(ctx, services.ClientIdentity(5), 9)
			require.Error(t, err)
			assert.True(t, IsForbidden(err))
		})

		t.Run("Targets", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			campaign, err := fixtures.CreateTestCampaign(5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTarget(campaign.ID, 11, "alice@example.com")
			require.NoError(t, err)
			_, err = fixtures.CreateTestTarget(campaign.ID, 12, "bob@example.com")
			require.NoError(t, err)

			targets, err := flow.Targets(ctx, services.ClientIdentity(5), campaign.ID)
			require.NoError(t, err)
			require.Len(t, targets, 2)
			assert.Equal(t, "alice@example.com", targets[0].UserEmail)
			assert.Equal(t, models.EmailStatusPending.String(), targets[0].EmailStatus)

			_, err = flow.Targets(ctx, services.ClientIdentity(9), campaign.ID)
			require.Error(t, err)
			assert.True(t, IsForbidden(err))

			_, err = flow.Targets(ctx, services.ClientIdentity(5), 99999)
			require.Error(t, err)
			assert.True(t, IsCampaignNotFound(err))
		})

		t.Run("DeleteRemovesTargets", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			campaign, err := fixtures.CreateTestCampaign(5)
			require.NoError(t, err)
			_, err = fixtures.CreateTestTarget(campaign.ID, 11, "alice@example.com")
			require.NoError(t, err)

			require.NoError(t, flow.Delete(ctx, services.ClientIdentity(5), campaign.ID))

			gone, err := campaignRepo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Nil(t, gone)

			targets, err := targetRepo.ByCampaignID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Empty(t, targets)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			campaign, err := fixtures.CreateTestCampaign(5)
			require.NoError(t, err)

			updated, err := flow.UpdateStatus(ctx, services.ClientIdentity(5), campaign.ID, models.CampaignStatusCompleted)
			require.NoError(t, err)
			assert.Equal(t, models.CampaignStatusCompleted, updated.Status)

			// Free-text labels are accepted as-is
			updated, err = flow.UpdateStatus(ctx, services.ClientIdentity(5), campaign.ID, "ON_HOLD")
			require.NoError(t, err)
			assert.Equal(t, "ON_HOLD", updated.Status)

			_, err = flow.UpdateStatus(ctx, services.ClientIdentity(5), campaign.ID, "   ")
			require.Error(t, err)
		})

		t.Run("TrackOpen", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			campaign, err := fixtures.CreateTestCampaign(5)
			require.NoError(t, err)
			target, err := fixtures.CreateTestTarget(campaign.ID, 11, "alice@example.com")
			require.NoError(t, err)

			require.NoError(t, flow.TrackOpen(ctx, target.ID))
			reloaded, err := targetRepo.ByID(ctx, target.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.True(t, reloaded.EmailOpened)

			// Idempotent on repeat hits
			require.NoError(t, flow.TrackOpen(ctx, target.ID))
			reloaded, err = targetRepo.ByID(ctx, target.ID)
			require.NoError(t, err)
			assert.True(t, reloaded.EmailOpened)

			// Unknown ids are silently ignored
			assert.NoError(t, flow.TrackOpen(ctx, 99999))
		})

		return nil
	})
	require.NoError(t, err)
}
