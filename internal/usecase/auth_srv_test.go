package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialgram/internal/data/entity"
	"socialgram/internal/data/repository"
	"socialgram/internal/dto/request"
	"socialgram/pkg/apperr"
	"socialgram/pkg/utils"
)

type authFixture struct {
	svc      AuthService
	users    *fakeUserRepo
	codes    *fakeVerificationRepo
	issuer   *stubIssuer
	notifier *recordingNotifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	codes := newFakeVerificationRepo()
	likes := newFakeLikeRepo()
	repo := &repository.Repository{
		User:         users,
		Verification: codes,
		Post:         newFakePostRepo(likes),
		Comment:      newFakeCommentRepo(likes),
		Like:         likes,
	}

	config := &utils.Config{
		Verification: utils.VerificationConfig{
			CodeLength:         4,
			EmailExpiryMinutes: 5,
			PhoneExpiryMinutes: 2,
		},
	}

	issuer := newStubIssuer()
	rec := &recordingNotifier{}

	return &authFixture{
		svc:      NewAuthService(repo, config, issuer, rec, zap.NewNop()),
		users:    users,
		codes:    codes,
		issuer:   issuer,
		notifier: rec,
	}
}

func (f *authFixture) signUp(t *testing.T, identifier string) *entity.User {
	t.Helper()

	resp, err := f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: identifier})
	require.NoError(t, err)

	id, err := utils.ParseUUID(resp.UserID)
	require.NoError(t, err)

	user, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func (f *authFixture) verify(t *testing.T, user *entity.User) {
	t.Helper()

	code := f.codes.latestCodeFor(user.ID)
	require.NotEmpty(t, code)

	_, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	require.NoError(t, err)
}

func (f *authFixture) completeProfile(t *testing.T, userID string) {
	t.Helper()

	id, err := utils.ParseUUID(userID)
	require.NoError(t, err)

	_, err = f.svc.CompleteProfile(context.Background(), id, &request.CompleteProfileRequest{
		FirstName:       "Alice",
		LastName:        "Morgan",
		Username:        "alice_morgan",
		Password:        "sturdy-pass-1",
		ConfirmPassword: "sturdy-pass-1",
	})
	require.NoError(t, err)
}

func TestSignUpEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: "User@Example.com"})
	require.NoError(t, err)

	assert.Equal(t, entity.AuthChannelEmail, resp.AuthChannel)
	assert.Equal(t, entity.AuthStatusNew, resp.AuthStatus)
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)

	// Email stored lower-cased
	user, err := f.users.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user@example.com", *user.Email)
	assert.Equal(t, entity.RoleOrdinaryUser, user.Role)

	// Exactly one code issued, exactly one dispatch
	assert.NotEmpty(t, f.codes.latestCodeFor(user.ID))
	assert.Eventually(t, func() bool { return f.notifier.count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestSignUpPhone(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: "+14155552671"})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthChannelPhone, resp.AuthChannel)

	user, err := f.users.FindByPhone(context.Background(), "+14155552671")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Nil(t, user.Email)
}

func TestSignUpRejectsUsername(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: "just_a_username"})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSignUpDuplicateIdentifier(t *testing.T) {
	f := newAuthFixture(t)
	f.signUp(t, "user@example.com")

	// Case-insensitive duplicate
	_, err := f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: "USER@example.com"})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestSignUpDuplicatePhoneSpelling(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: "+14155552671"})
	require.NoError(t, err)

	// The same dialable number in another spelling is still a duplicate
	_, err = f.svc.SignUp(context.Background(), &request.SignUpRequest{EmailPhoneNumber: "+1 415 555 2671"})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestVerifyCodeAdvancesStatus(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	code := f.codes.latestCodeFor(user.ID)
	resp, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	require.NoError(t, err)

	assert.Equal(t, entity.AuthStatusVerifiedCode, resp.AuthStatus)
	assert.NotEmpty(t, resp.Access)
}

func TestVerifyCodeConsumedOnce(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	code := f.codes.latestCodeFor(user.ID)

	_, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	require.NoError(t, err)

	// Second submission of the same code fails; status stays put
	_, err = f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	require.Error(t, err)

	updated, _ := f.users.FindByID(context.Background(), user.ID)
	assert.Equal(t, entity.AuthStatusVerifiedCode, updated.AuthStatus)
}

func TestVerifyCodeRetriesAfterFailedAdvance(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	code := f.codes.latestCodeFor(user.ID)

	// A failed status write must not burn the code
	f.users.failUpdates(errors.New("connection reset"))
	_, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	require.Error(t, err)

	stored, _ := f.users.FindByID(context.Background(), user.ID)
	assert.Equal(t, entity.AuthStatusNew, stored.AuthStatus)

	// The same code still verifies once the store recovers
	f.users.failUpdates(nil)
	resp, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthStatusVerifiedCode, resp.AuthStatus)
}

func TestVerifyCodeWrongValue(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	code := f.codes.latestCodeFor(user.ID)
	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}

	_, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: wrong})
	require.Error(t, err)

	updated, _ := f.users.FindByID(context.Background(), user.ID)
	assert.Equal(t, entity.AuthStatusNew, updated.AuthStatus)
}

func TestVerifyCodeExpiryBoundary(t *testing.T) {
	f := newAuthFixture(t)

	// Just inside the window
	user := f.signUp(t, "first@example.com")
	code := f.codes.latestCodeFor(user.ID)
	f.codes.shiftExpiry(user.ID, time.Second)

	_, err := f.svc.VerifyCode(context.Background(), user.ID, &request.VerifyCodeRequest{Code: code})
	assert.NoError(t, err)

	// Just past the window
	user2 := f.signUp(t, "second@example.com")
	code2 := f.codes.latestCodeFor(user2.ID)
	f.codes.shiftExpiry(user2.ID, -time.Second)

	_, err = f.svc.VerifyCode(context.Background(), user2.ID, &request.VerifyCodeRequest{Code: code2})
	assert.Error(t, err)
}

func TestResendBlockedWhileOutstanding(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	err := f.svc.ResendCode(context.Background(), user.ID)
	require.ErrorIs(t, err, repository.ErrCodeOutstanding)
}

func TestResendAfterExpiry(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	f.codes.expireAll(user.ID)

	err := f.svc.ResendCode(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, f.codes.latestCodeFor(user.ID))
}

func TestResendAfterConsumption(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)

	err := f.svc.ResendCode(context.Background(), user.ID)
	require.NoError(t, err)
}

func TestCompleteProfileRequiresVerification(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	_, err := f.svc.CompleteProfile(context.Background(), user.ID, &request.CompleteProfileRequest{
		FirstName:       "Alice",
		LastName:        "Morgan",
		Username:        "alice_morgan",
		Password:        "sturdy-pass-1",
		ConfirmPassword: "sturdy-pass-1",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestCompleteProfileFieldPolicy(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)

	cases := []struct {
		name string
		req  request.CompleteProfileRequest
	}{
		{"short first name", request.CompleteProfileRequest{
			FirstName: "Al", LastName: "Morgan", Username: "alice_morgan",
			Password: "sturdy-pass-1", ConfirmPassword: "sturdy-pass-1",
		}},
		{"numeric username", request.CompleteProfileRequest{
			FirstName: "Alice", LastName: "Morgan", Username: "1234567",
			Password: "sturdy-pass-1", ConfirmPassword: "sturdy-pass-1",
		}},
		{"password mismatch", request.CompleteProfileRequest{
			FirstName: "Alice", LastName: "Morgan", Username: "alice_morgan",
			Password: "sturdy-pass-1", ConfirmPassword: "other-pass-2",
		}},
		{"numeric password", request.CompleteProfileRequest{
			FirstName: "Alice", LastName: "Morgan", Username: "alice_morgan",
			Password: "123456789", ConfirmPassword: "123456789",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CompleteProfile(context.Background(), user.ID, &tc.req)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestCompleteProfileAdvancesToDone(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)

	resp, err := f.svc.CompleteProfile(context.Background(), user.ID, &request.CompleteProfileRequest{
		FirstName:       "Alice",
		LastName:        "Morgan",
		Username:        "alice_morgan",
		Password:        "sturdy-pass-1",
		ConfirmPassword: "sturdy-pass-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthStatusDone, resp.AuthStatus)
	assert.Equal(t, "alice_morgan", resp.Username)
}

func TestLoginGatedOnStatus(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	// NEW account with correct placeholder password still cannot log in;
	// the error is forbidden, not wrong-credentials
	_, err := f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "user@example.com",
		Password:  "whatever",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	f.verify(t, user)

	_, err = f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "user@example.com",
		Password:  "whatever",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)
	f.completeProfile(t, user.ID.String())

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "alice_morgan",
		Password:  "not-the-password",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "ghost@example.com",
		Password:  "whatever",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestEndToEndFlow(t *testing.T) {
	f := newAuthFixture(t)

	// Signup -> NEW
	user := f.signUp(t, "flow@example.com")
	assert.Equal(t, entity.AuthStatusNew, user.AuthStatus)

	// Verify -> VERIFIED_CODE
	f.verify(t, user)
	updated, _ := f.users.FindByID(context.Background(), user.ID)
	assert.Equal(t, entity.AuthStatusVerifiedCode, updated.AuthStatus)

	// Complete profile -> DONE
	f.completeProfile(t, user.ID.String())
	updated, _ = f.users.FindByID(context.Background(), user.ID)
	assert.Equal(t, entity.AuthStatusDone, updated.AuthStatus)

	// Login by username works now
	loginResp, err := f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "alice_morgan",
		Password:  "sturdy-pass-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthStatusDone, loginResp.AuthStatus)
	assert.Equal(t, "Alice Morgan", loginResp.FullName)

	// Photo -> PHOTO_DONE, the terminal state
	photoResp, err := f.svc.UploadPhoto(context.Background(), user.ID, &request.UploadPhotoRequest{
		Image: "avatars/alice.jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthStatusPhotoDone, photoResp.AuthStatus)

	// Last login recorded
	updated, _ = f.users.FindByID(context.Background(), user.ID)
	assert.NotNil(t, updated.LastLoginAt)
}

func TestUploadPhotoRejectsExtension(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)
	f.completeProfile(t, user.ID.String())

	_, err := f.svc.UploadPhoto(context.Background(), user.ID, &request.UploadPhotoRequest{
		Image: "avatars/script.exe",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUploadPhotoRequiresCompletedProfile(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)

	_, err := f.svc.UploadPhoto(context.Background(), user.ID, &request.UploadPhotoRequest{
		Image: "avatars/alice.png",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestForgotPasswordAndReset(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")
	f.verify(t, user)
	f.completeProfile(t, user.ID.String())

	// The signup code is consumed, so a fresh one can be issued
	resp, err := f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{
		EmailOrPhone: "user@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Access)

	err = f.svc.ResetPassword(context.Background(), user.ID, &request.ResetPasswordRequest{
		Password:        "brand-new-pass-9",
		ConfirmPassword: "brand-new-pass-9",
	})
	require.NoError(t, err)

	// Old password is gone, new one works; status untouched
	_, err = f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "alice_morgan",
		Password:  "sturdy-pass-1",
	})
	require.Error(t, err)

	loginResp, err := f.svc.Login(context.Background(), &request.LoginRequest{
		UserInput: "alice_morgan",
		Password:  "brand-new-pass-9",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AuthStatusDone, loginResp.AuthStatus)
}

func TestForgotPasswordUnknownIdentifier(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{
		EmailOrPhone: "ghost@example.com",
	})
	require.Error(t, err)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestLogoutRevokesOnce(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	refresh := "refresh-" + user.ID.String()

	err := f.svc.Logout(context.Background(), &request.LogoutRequest{Refresh: refresh})
	require.NoError(t, err)

	// Second revoke of the same token fails
	err = f.svc.Logout(context.Background(), &request.LogoutRequest{Refresh: refresh})
	require.Error(t, err)
}

func TestRefreshRotates(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signUp(t, "user@example.com")

	refresh := "refresh-" + user.ID.String()

	resp, err := f.svc.Refresh(context.Background(), &request.RefreshRequest{Refresh: refresh})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Access)

	// The consumed token cannot be replayed through the issuer
	_, _, err = f.issuer.Refresh(context.Background(), refresh)
	require.Error(t, err)
}
