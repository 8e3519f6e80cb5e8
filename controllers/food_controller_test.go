package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donationForm() map[string]string {
	return map[string]string{
		"foodType":          "Cooked rice",
		"quantity":          "5 kg",
		"freshnessDuration": "4 hours",
		"pickupLocation":    "12 Main St",
		"latitude":          "12.9716",
		"longitude":         "77.5946",
	}
}

func createDonation(t *testing.T, r *gin.Engine, donorToken string) uint {
	t.Helper()
	w := doForm(r, "/api/food/create", donorToken, donationForm())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	post, ok := decode(t, w).Data["post"].(map[string]interface{})
	require.True(t, ok)
	id, ok := post["id"].(float64)
	require.True(t, ok)
	return uint(id)
}

func TestFoodCreate(t *testing.T) {
	r, _ := newAPI(t)
	donorToken := registerAndLogin(t, r, "Asha", "asha@example.com", "donor")

	w := doForm(r, "/api/food/create", donorToken, donationForm())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	post, ok := decode(t, w).Data["post"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "available", post["status"])
	assert.NotEmpty(t, post["freshness_expires_at"])
	donor, ok := post["donor"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Asha", donor["name"])
	// The pickup code does not exist yet and must never serialize.
	assert.NotContains(t, w.Body.String(), "otp")
}

func TestFoodCreateValidation(t *testing.T) {
	r, _ := newAPI(t)
	donorToken := registerAndLogin(t, r, "Asha", "asha@example.com", "donor")

	form := donationForm()
	delete(form, "foodType")
	w := doForm(r, "/api/food/create", donorToken, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFoodRoleGates(t *testing.T) {
	r, _ := newAPI(t)
	donorToken := registerAndLogin(t, r, "Asha", "asha@example.com", "donor")
	volunteerToken := registerAndLogin(t, r, "Ravi", "ravi@example.com", "volunteer")
	postID := createDonation(t, r, donorToken)

	// Volunteers cannot post donations.
	w := doForm(r, "/api/food/create", volunteerToken, donationForm())
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Donors cannot browse or claim.
	w = doJSON(r, http.MethodGet, "/api/food/available", donorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/claim/%d", postID), donorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Volunteers cannot verify delivery.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/verify-otp/%d", postID), volunteerToken, gin.H{"otp": "123456"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Anonymous requests never reach the handlers.
	w = doJSON(r, http.MethodGet, "/api/food/available", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFoodDonationLifecycle(t *testing.T) {
	r, _ := newAPI(t)
	donorToken := registerAndLogin(t, r, "Asha", "asha@example.com", "donor")
	volunteerToken := registerAndLogin(t, r, "Ravi", "ravi@example.com", "volunteer")
	postID := createDonation(t, r, donorToken)

	// Volunteer browses and finds the post.
	w := doJSON(r, http.MethodGet, "/api/food/available", volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, ok := decode(t, w).Data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	// Claim discloses the pickup code and the donor's contact.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/claim/%d", postID), volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	claim := decode(t, w).Data
	otp, ok := claim["otp"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^\d{6}$`, otp)
	donor, ok := claim["donor"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "asha@example.com", donor["email"])

	// A second claim loses.
	otherToken := registerAndLogin(t, r, "Meera", "meera@example.com", "volunteer")
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/claim/%d", postID), otherToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Claimed posts disappear from the feed.
	w = doJSON(r, http.MethodGet, "/api/food/available", volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, _ = decode(t, w).Data["items"].([]interface{})
	assert.Empty(t, items)

	// Wrong code is rejected but retryable.
	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/verify-otp/%d", postID), donorToken, gin.H{"otp": wrong})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The right code completes the delivery.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/verify-otp/%d", postID), donorToken, gin.H{"otp": otp})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	food, ok := decode(t, w).Data["food"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "completed", food["status"])
	volunteer, ok := food["volunteer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ravi", volunteer["name"])

	// Replay is a conflict.
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/verify-otp/%d", postID), donorToken, gin.H{"otp": otp})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Both views reflect the terminal state.
	w = doJSON(r, http.MethodGet, "/api/food/my-claims", volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	claims, _ := decode(t, w).Data["items"].([]interface{})
	require.Len(t, claims, 1)

	w = doJSON(r, http.MethodGet, "/api/food/my-posts", donorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine, _ := decode(t, w).Data["items"].([]interface{})
	require.Len(t, mine, 1)
}

func TestMyClaimsCarriesStoredPickupCode(t *testing.T) {
	r, db := newAPI(t)
	donorToken := registerAndLogin(t, r, "Asha", "asha@example.com", "donor")
	volunteerToken := registerAndLogin(t, r, "Ravi", "ravi@example.com", "volunteer")
	adminToken := seedAdmin(t, r, db, "admin@example.com")
	postID := createDonation(t, r, donorToken)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/claim/%d", postID), volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	otp := decode(t, w).Data["otp"].(string)

	// The volunteer can reread the stored code after losing the claim
	// response.
	w = doJSON(r, http.MethodGet, "/api/food/my-claims", volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, ok := decode(t, w).Data["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	claim := items[0].(map[string]interface{})
	assert.Equal(t, otp, claim["otp"])
	assert.Equal(t, "claimed", claim["status"])

	// Donor and admin views never surface the code.
	w = doJSON(r, http.MethodGet, "/api/food/my-posts", donorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"otp"`)

	w = doJSON(r, http.MethodGet, "/api/admin/food-posts", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"otp"`)
}

func TestVerifyOtpOwnerOnly(t *testing.T) {
	r, _ := newAPI(t)
	donorToken := registerAndLogin(t, r, "Asha", "asha@example.com", "donor")
	otherDonor := registerAndLogin(t, r, "Vik", "vik@example.com", "donor")
	volunteerToken := registerAndLogin(t, r, "Ravi", "ravi@example.com", "volunteer")
	postID := createDonation(t, r, donorToken)

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/claim/%d", postID), volunteerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	otp := decode(t, w).Data["otp"].(string)

	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/food/verify-otp/%d", postID), otherDonor, gin.H{"otp": otp})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClaimMissingPost(t *testing.T) {
	r, _ := newAPI(t)
	volunteerToken := registerAndLogin(t, r, "Ravi", "ravi@example.com", "volunteer")

	w := doJSON(r, http.MethodPost, "/api/food/claim/9999", volunteerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/api/food/claim/abc", volunteerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
