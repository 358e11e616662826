// Package testing provides test utilities and database setup for testing the campaign service
package testing

import (
	"fmt"
	"math/rand"

	"github.com/jphish/campaign-service/models"
	"github.com/jphish/campaign-service/utils"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAdmin creates an admin directory entry with a random email
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	admin := &models.Admin{
		Email: fmt.Sprintf("admin.%09d@example.com", rand.Intn(900000000)+100000000),
		Name:  "Test Admin",
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateTestCampaign creates a campaign owned by the given client
func (tf *TestFixtures) CreateTestCampaign(clientID uint) (*models.Campaign, error) {
	campaign := &models.Campaign{
		Name:            fmt.Sprintf("Test Campaign %04d", rand.Intn(10000)),
		ClientID:        clientID,
		SenderEmail:     utils.ToPtr("phisher@example.com"),
		LandingPageLink: "https://landing.example.com",
		RecipientEmails: pq.StringArray{"alice@example.com", "bob@example.com"},
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}

// CreateTestTarget creates one pending tracking row for a campaign
func (tf *TestFixtures) CreateTestTarget(campaignID, userID uint, email string) (*models.CampaignTarget, error) {
	target := &models.CampaignTarget{
		CampaignID:  campaignID,
		UserID:      userID,
		UserEmail:   email,
		UniqueLink:  fmt.Sprintf("https://landing.example.com/%d/%d/1", campaignID, userID),
		EmailStatus: models.EmailStatusPending,
	}
	if err := tf.DB.DB.Create(target).Error; err != nil {
		return nil, fmt.Errorf("failed to create test target: %w", err)
	}
	return target, nil
}
