package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/foodbridge/foodbridge/models"
)

func TestSweeperExpiresImmediatelyOnStart(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)

	// Already past its deadline when the sweeper comes up.
	post := createPost(t, svc, donor.ID, "1 hour")
	require.NoError(t, db.Model(&models.FoodPost{}).
		Where("id = ?", post.ID).
		Update("freshness_expires_at", time.Now().Add(-time.Minute)).Error)

	// A long interval means only the immediate startup sweep can fire.
	StartSweeper(svc, time.Hour, zaptest.NewLogger(t).Sugar(), nil)

	require.Eventually(t, func() bool {
		var stored models.FoodPost
		if err := db.First(&stored, post.ID).Error; err != nil {
			return false
		}
		return stored.Status == models.FoodStatusExpired
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSweeperNotifiesAfterExpiring(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)

	post := createPost(t, svc, donor.ID, "1 hour")
	require.NoError(t, db.Model(&models.FoodPost{}).
		Where("id = ?", post.ID).
		Update("freshness_expires_at", time.Now().Add(-time.Minute)).Error)
	fresh := createPost(t, svc, donor.ID, "12 hours")

	counts := make(chan int64, 1)
	StartSweeper(svc, time.Hour, zaptest.NewLogger(t).Sugar(), func(count int64) {
		counts <- count
	})

	select {
	case count := <-counts:
		require.EqualValues(t, 1, count)
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never reported expired posts")
	}

	var stored models.FoodPost
	require.NoError(t, db.First(&stored, fresh.ID).Error)
	require.Equal(t, models.FoodStatusAvailable, stored.Status)
}
