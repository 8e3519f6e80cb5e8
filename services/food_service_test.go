package services

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodbridge/foodbridge/models"
)

var otpPattern = regexp.MustCompile(`^\d{6}$`)

func createPost(t *testing.T, svc *FoodService, donorID uint, freshness string) *models.FoodPost {
	t.Helper()
	post, err := svc.Create(donorID, CreateFoodInput{
		FoodType:          "Cooked rice",
		Quantity:          "5 kg",
		FreshnessDuration: freshness,
		PickupLocation:    "12 Main St",
	})
	require.NoError(t, err)
	return post
}

func TestCreateComputesExpiration(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)

	before := time.Now()
	post := createPost(t, svc, donor.ID, "2 hours")
	after := time.Now()

	assert.Equal(t, models.FoodStatusAvailable, post.Status)
	assert.Nil(t, post.ClaimedByID)
	assert.Nil(t, post.OTP)
	assert.WithinRange(t, post.FreshnessExpiresAt, before.Add(2*time.Hour), after.Add(2*time.Hour))
	// Donor relation is preloaded for denormalized payloads.
	assert.Equal(t, donor.Name, post.Donor.Name)
}

func TestCreateUnparsableDurationFallsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)

	before := time.Now()
	post := createPost(t, svc, donor.ID, "until tonight")

	assert.WithinDuration(t, before.Add(24*time.Hour), post.FreshnessExpiresAt, time.Minute)
}

func TestClaimHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)
	post := createPost(t, svc, donor.ID, "4 hours")

	claimed, err := svc.Claim(post.ID, volunteer.ID)
	require.NoError(t, err)

	assert.Equal(t, models.FoodStatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimedByID)
	assert.Equal(t, volunteer.ID, *claimed.ClaimedByID)
	require.NotNil(t, claimed.OTP)
	assert.Regexp(t, otpPattern, *claimed.OTP)
	assert.Equal(t, donor.Name, claimed.Donor.Name)

	// The OTP is persisted so the volunteer can retrieve it later.
	var stored models.FoodPost
	require.NoError(t, db.First(&stored, post.ID).Error)
	require.NotNil(t, stored.OTP)
	assert.Equal(t, *claimed.OTP, *stored.OTP)
}

func TestClaimNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)

	_, err := svc.Claim(9999, volunteer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimAlreadyClaimedConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	first := createUser(t, db, "First", models.RoleVolunteer)
	second := createUser(t, db, "Second", models.RoleVolunteer)
	post := createPost(t, svc, donor.ID, "4 hours")

	winner, err := svc.Claim(post.ID, first.ID)
	require.NoError(t, err)

	_, err = svc.Claim(post.ID, second.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// The losing claim must not mutate anything.
	var stored models.FoodPost
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, models.FoodStatusClaimed, stored.Status)
	assert.Equal(t, first.ID, *stored.ClaimedByID)
	assert.Equal(t, *winner.OTP, *stored.OTP)
}

func TestClaimConcurrentExactlyOneWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	post := createPost(t, svc, donor.ID, "4 hours")

	const racers = 8
	volunteers := make([]*models.User, racers)
	for i := range volunteers {
		volunteers[i] = createUser(t, db, "Racer"+string(rune('A'+i)), models.RoleVolunteer)
	}

	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Claim(post.ID, volunteers[i].ID)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, conflicts)
}

func TestVerifyCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)
	post := createPost(t, svc, donor.ID, "4 hours")

	claimed, err := svc.Claim(post.ID, volunteer.ID)
	require.NoError(t, err)
	otp := *claimed.OTP

	completed, err := svc.VerifyCompletion(post.ID, donor.ID, otp)
	require.NoError(t, err)
	assert.Equal(t, models.FoodStatusCompleted, completed.Status)
	require.NotNil(t, completed.ClaimedBy)
	assert.Equal(t, volunteer.Name, completed.ClaimedBy.Name)

	// Completed is terminal: replaying the same OTP is a conflict.
	_, err = svc.VerifyCompletion(post.ID, donor.ID, otp)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestVerifyCompletionWrongOTPIsRetryable(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)
	post := createPost(t, svc, donor.ID, "4 hours")

	claimed, err := svc.Claim(post.ID, volunteer.ID)
	require.NoError(t, err)
	otp := *claimed.OTP

	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}
	_, err = svc.VerifyCompletion(post.ID, donor.ID, wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// State untouched, so the correct code still works afterwards.
	var stored models.FoodPost
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, models.FoodStatusClaimed, stored.Status)

	_, err = svc.VerifyCompletion(post.ID, donor.ID, otp)
	assert.NoError(t, err)
}

func TestVerifyCompletionForbiddenForNonOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	other := createUser(t, db, "Other", models.RoleDonor)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)
	post := createPost(t, svc, donor.ID, "4 hours")

	claimed, err := svc.Claim(post.ID, volunteer.ID)
	require.NoError(t, err)

	// Even the correct OTP does not help a non-owner.
	_, err = svc.VerifyCompletion(post.ID, other.ID, *claimed.OTP)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVerifyCompletionRequiresClaimedStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	post := createPost(t, svc, donor.ID, "4 hours")

	_, err := svc.VerifyCompletion(post.ID, donor.ID, "123456")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.VerifyCompletion(9999, donor.ID, "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweepExpiresOnlyStaleAvailablePosts(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)

	stale := createPost(t, svc, donor.ID, "2 hours")
	fresh := createPost(t, svc, donor.ID, "12 hours")
	claimedPost := createPost(t, svc, donor.ID, "2 hours")
	completedPost := createPost(t, svc, donor.ID, "2 hours")

	_, err := svc.Claim(claimedPost.ID, volunteer.ID)
	require.NoError(t, err)
	_, err = svc.Claim(completedPost.ID, volunteer.ID)
	require.NoError(t, err)
	var cp models.FoodPost
	require.NoError(t, db.First(&cp, completedPost.ID).Error)
	_, err = svc.VerifyCompletion(completedPost.ID, donor.ID, *cp.OTP)
	require.NoError(t, err)

	// Tick at T0+3h: every 2-hour post is past its deadline, but only
	// the still-available one may expire.
	tick := stale.FreshnessExpiresAt.Add(time.Hour)
	count, err := svc.SweepExpired(tick)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	assertStatus := func(id uint, want string) {
		var p models.FoodPost
		require.NoError(t, db.First(&p, id).Error)
		assert.Equal(t, want, p.Status)
	}
	assertStatus(stale.ID, models.FoodStatusExpired)
	assertStatus(fresh.ID, models.FoodStatusAvailable)
	assertStatus(claimedPost.ID, models.FoodStatusClaimed)
	assertStatus(completedPost.ID, models.FoodStatusCompleted)
}

func TestSweepBeforeDeadlineIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	post := createPost(t, svc, donor.ID, "2 hours")

	count, err := svc.SweepExpired(post.FreshnessExpiresAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, count)

	var stored models.FoodPost
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, models.FoodStatusAvailable, stored.Status)
}

func TestListingProjections(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	volunteer := createUser(t, db, "Volunteer", models.RoleVolunteer)

	available := createPost(t, svc, donor.ID, "4 hours")
	claimedPost := createPost(t, svc, donor.ID, "4 hours")
	_, err := svc.Claim(claimedPost.ID, volunteer.ID)
	require.NoError(t, err)

	expiredPost := createPost(t, svc, donor.ID, "1 hour")
	_, err = svc.SweepExpired(expiredPost.FreshnessExpiresAt.Add(time.Minute))
	require.NoError(t, err)

	avail, err := svc.Available()
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, available.ID, avail[0].ID)
	assert.Equal(t, donor.Name, avail[0].Donor.Name)

	// Donor view excludes expired posts.
	mine, err := svc.ByDonor(donor.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, p := range mine {
		assert.NotEqual(t, models.FoodStatusExpired, p.Status)
	}

	claims, err := svc.ByClaimer(volunteer.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, claimedPost.ID, claims[0].ID)

	got, err := svc.Get(claimedPost.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClaimedBy)
	assert.Equal(t, volunteer.Name, got.ClaimedBy.Name)

	_, err = svc.Get(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewFoodService(db, 24*time.Hour)
	donor := createUser(t, db, "Donor", models.RoleDonor)
	post := createPost(t, svc, donor.ID, "4 hours")

	require.NoError(t, svc.Delete(post.ID))
	assert.ErrorIs(t, svc.Delete(post.ID), ErrNotFound)

	var stored models.FoodPost
	err := db.First(&stored, post.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
