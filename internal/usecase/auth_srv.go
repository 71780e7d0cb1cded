package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialgram/internal/data/entity"
	"socialgram/internal/data/repository"
	"socialgram/internal/dto/request"
	"socialgram/internal/dto/response"
	"socialgram/pkg/apperr"
	"socialgram/pkg/notifier"
	"socialgram/pkg/utils"
)

var allowedPhotoExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"heic": true,
	"heif": true,
}

type AuthService interface {
	SignUp(ctx context.Context, req *request.SignUpRequest) (*response.SignUpResponse, error)
	VerifyCode(ctx context.Context, userID uuid.UUID, req *request.VerifyCodeRequest) (*response.VerifyResponse, error)
	ResendCode(ctx context.Context, userID uuid.UUID) error
	CompleteProfile(ctx context.Context, userID uuid.UUID, req *request.CompleteProfileRequest) (*response.UserResponse, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, req *request.UploadPhotoRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error)
	Logout(ctx context.Context, req *request.LogoutRequest) error
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) (*response.TokenResponse, error)
	ResetPassword(ctx context.Context, userID uuid.UUID, req *request.ResetPasswordRequest) error
}

type authService struct {
	repo       *repository.Repository
	config     *utils.Config
	issuer     TokenIssuer
	dispatcher notifier.Notifier
	log        *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	issuer TokenIssuer,
	dispatcher notifier.Notifier,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:       repo,
		config:     config,
		issuer:     issuer,
		dispatcher: dispatcher,
		log:        log,
	}
}

func (s *authService) SignUp(ctx context.Context, req *request.SignUpRequest) (*response.SignUpResponse, error) {
	// 1. Validate input
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	// 2. Classify the identifier; usernames cannot open an account
	identifierType, err := utils.ClassifyIdentifier(req.EmailPhoneNumber)
	if err != nil {
		return nil, err
	}
	if identifierType == utils.IdentifierUsername {
		return nil, apperr.Validation("Signup requires an email address or a phone number")
	}

	identifier := utils.NormalizeIdentifier(req.EmailPhoneNumber)

	// 3. Reject identifiers that already belong to an account
	existing, err := s.findByIdentifier(ctx, identifierType, identifier)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("This email or phone number is already registered")
	}

	// 4. Hash the placeholder password assigned until profile completion
	hashedPassword, err := utils.HashPassword(utils.GeneratePassword())
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	// 5. Create the account in NEW
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     utils.GenerateUsername(),
		PasswordHash: hashedPassword,
		Role:         entity.RoleOrdinaryUser,
		AuthStatus:   entity.AuthStatusNew,
		Gender:       entity.GenderOptional,
	}

	if identifierType == utils.IdentifierEmail {
		user.AuthChannel = entity.AuthChannelEmail
		user.Email = &identifier
	} else {
		user.AuthChannel = entity.AuthChannelPhone
		user.PhoneNumber = &identifier
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	// 6. Issue the first verification code
	if err := s.requestCode(ctx, user); err != nil {
		return nil, err
	}

	// 7. Tokens are handed out before verification; endpoints gate on
	// auth_status, not on token possession
	pair, err := s.issuer.IssuePair(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue tokens after signup",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("auth_channel", string(user.AuthChannel)))

	return &response.SignUpResponse{
		UserID:      user.ID.String(),
		AuthChannel: user.AuthChannel,
		AuthStatus:  user.AuthStatus,
		Access:      pair.AccessToken,
		Refresh:     pair.RefreshToken,
		ExpiresIn:   pair.ExpiresIn,
	}, nil
}

func (s *authService) VerifyCode(ctx context.Context, userID uuid.UUID, req *request.VerifyCodeRequest) (*response.VerifyResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Verify validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 2. Consume the code; a consumed or expired code is indistinguishable
	// from a wrong one
	code, err := s.repo.Verification.FindValid(ctx, user.ID, req.Code)
	if err != nil {
		s.log.Error("Failed to look up verification code",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}
	if code == nil {
		return nil, apperr.Validation("Verification code is invalid or has expired")
	}

	// 3. First successful consumption moves NEW forward; later ones leave the
	// progression alone. The status advance lands before the code is burned,
	// so a failed advance leaves the code usable for a retry instead of
	// forcing a resend.
	if user.AuthStatus == entity.AuthStatusNew {
		user.AuthStatus = entity.AuthStatusVerifiedCode
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to advance auth status",
				zap.Error(err), zap.String("user_id", user.ID.String()))
			return nil, apperr.Internal(err)
		}
	}

	if err := s.repo.Verification.MarkConfirmed(ctx, code.ID); err != nil {
		s.log.Error("Failed to mark code as confirmed",
			zap.Error(err), zap.String("code_id", code.ID.String()))
		return nil, apperr.Internal(err)
	}

	pair, err := s.issuer.IssuePair(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue tokens after verification",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}

	s.log.Info("Code verified",
		zap.String("user_id", user.ID.String()),
		zap.String("auth_status", string(user.AuthStatus)))

	return &response.VerifyResponse{
		UserID:     user.ID.String(),
		AuthStatus: user.AuthStatus,
		Access:     pair.AccessToken,
		Refresh:    pair.RefreshToken,
		ExpiresIn:  pair.ExpiresIn,
	}, nil
}

func (s *authService) ResendCode(ctx context.Context, userID uuid.UUID) error {
	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return err
	}

	// Resend never changes auth_status; it only refreshes the ledger.
	return s.requestCode(ctx, user)
}

func (s *authService) CompleteProfile(ctx context.Context, userID uuid.UUID, req *request.CompleteProfileRequest) (*response.UserResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Complete profile validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AuthStatus == entity.AuthStatusNew {
		return nil, apperr.Forbidden("Verify your account before completing the profile")
	}

	// 2. Field policy: 5-30 characters, not purely numeric
	for field, value := range map[string]string{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"username":   req.Username,
	} {
		if err := validateProfileField(field, value); err != nil {
			return nil, err
		}
	}

	// 3. Password policy
	if req.Password != req.ConfirmPassword {
		return nil, apperr.Validation("Passwords do not match")
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	// 4. Username uniqueness, ignoring the caller's own current name
	taken, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return nil, apperr.Internal(err)
	}
	if taken != nil && taken.ID != user.ID {
		return nil, apperr.Conflict("Username is already taken")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Username = req.Username
	user.PasswordHash = hashedPassword
	if user.AuthStatus.CanAdvanceTo(entity.AuthStatusDone) {
		user.AuthStatus = entity.AuthStatusDone
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to complete profile",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}

	s.log.Info("Profile completed",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) UploadPhoto(ctx context.Context, userID uuid.UUID, req *request.UploadPhotoRequest) (*response.UserResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Upload photo validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.AuthStatus.CanLogin() {
		return nil, apperr.Forbidden("Complete your profile before uploading a photo")
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(req.Image), "."))
	if !allowedPhotoExtensions[ext] {
		return nil, apperr.Validation("Photo must be one of: jpg, jpeg, png, heic, heif")
	}

	user.Image = &req.Image
	if user.AuthStatus.CanAdvanceTo(entity.AuthStatusPhotoDone) {
		user.AuthStatus = entity.AuthStatusPhotoDone
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to store photo",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}

	s.log.Info("Photo uploaded", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	// 2. Resolve the account by whatever the user typed
	identifierType, err := utils.ClassifyIdentifier(req.UserInput)
	if err != nil {
		return nil, err
	}

	user, err := s.findByIdentifier(ctx, identifierType, utils.NormalizeIdentifier(req.UserInput))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		s.log.Warn("Login for unknown account", zap.String("identifier_type", string(identifierType)))
		return nil, apperr.NotFound("Account not found")
	}

	// 3. Unfinished accounts are refused before the password is even checked;
	// the error is distinct from wrong credentials
	if !user.AuthStatus.CanLogin() {
		return nil, apperr.Forbidden("Account is not verified yet. Finish the verification steps first")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, apperr.Unauthenticated("Invalid credentials")
	}

	if err := s.repo.User.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.log.Warn("Failed to update last login",
			zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	pair, err := s.issuer.IssuePair(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue tokens",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.LoginToResponse(user, pair)
	return &resp, nil
}

func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.TokenResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	userID, pair, err := s.issuer.Refresh(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User.UpdateLastLogin(ctx, userID, time.Now()); err != nil {
		s.log.Warn("Failed to update last login on refresh",
			zap.Error(err), zap.String("user_id", userID.String()))
	}

	resp := response.TokenToResponse(pair)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, req *request.LogoutRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation(utils.FormatValidationErrors(errs))
	}

	if err := s.issuer.Revoke(ctx, req.Refresh); err != nil {
		return err
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) (*response.TokenResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation(utils.FormatValidationErrors(errs))
	}

	identifierType, err := utils.ClassifyIdentifier(req.EmailOrPhone)
	if err != nil {
		return nil, err
	}
	if identifierType == utils.IdentifierUsername {
		return nil, apperr.Validation("Password recovery requires an email address or a phone number")
	}

	user, err := s.findByIdentifier(ctx, identifierType, utils.NormalizeIdentifier(req.EmailOrPhone))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("Account not found")
	}

	// 2. Fresh code on the account's own channel
	if err := s.requestCode(ctx, user); err != nil {
		return nil, err
	}

	// 3. The pair lets the client call reset-password after verifying
	pair, err := s.issuer.IssuePair(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to issue tokens for password recovery",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperr.Internal(err)
	}

	s.log.Info("Password recovery started", zap.String("user_id", user.ID.String()))

	resp := response.TokenToResponse(pair)
	return &resp, nil
}

func (s *authService) ResetPassword(ctx context.Context, userID uuid.UUID, req *request.ResetPasswordRequest) error {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperr.Validation(utils.FormatValidationErrors(errs))
	}

	if req.Password != req.ConfirmPassword {
		return apperr.Validation("Passwords do not match")
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return err
	}

	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return apperr.Internal(err)
	}

	// Resetting the password never touches auth_status.
	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to reset password",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return apperr.Internal(err)
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

// requestCode issues one code on the account's channel and dispatches it
// without blocking the caller. The ledger insert is exclusive: an unconsumed,
// unexpired code already on file fails the request.
func (s *authService) requestCode(ctx context.Context, user *entity.User) error {
	channel := notifier.Channel(user.AuthChannel)

	ttl := time.Duration(s.config.Verification.EmailExpiryMinutes) * time.Minute
	if user.AuthChannel == entity.AuthChannelPhone {
		ttl = time.Duration(s.config.Verification.PhoneExpiryMinutes) * time.Minute
	}

	now := time.Now()
	code := &entity.VerificationCode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Code:      utils.GenerateCode(s.config.Verification.CodeLength),
		Channel:   user.AuthChannel,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repo.Verification.CreateExclusive(ctx, code); err != nil {
		if err == repository.ErrCodeOutstanding {
			return err
		}
		s.log.Error("Failed to issue verification code",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return apperr.Internal(err)
	}

	go s.dispatchCode(user.Identifier(), channel, code.Code)

	return nil
}

// dispatchCode runs on its own goroutine; delivery failure is logged, never
// surfaced. The code is already committed to the ledger.
func (s *authService) dispatchCode(destination string, channel notifier.Channel, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.dispatcher.Send(ctx, destination, channel, code); err != nil {
		s.log.Error("Failed to dispatch verification code",
			zap.Error(err),
			zap.String("channel", string(channel)),
		)
	}
}

func (s *authService) mustFindUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("Account not found")
	}
	return user, nil
}

func (s *authService) findByIdentifier(ctx context.Context, identifierType utils.IdentifierType, identifier string) (*entity.User, error) {
	switch identifierType {
	case utils.IdentifierEmail:
		return s.repo.User.FindByEmail(ctx, identifier)
	case utils.IdentifierPhone:
		return s.repo.User.FindByPhone(ctx, identifier)
	default:
		return s.repo.User.FindByUsername(ctx, identifier)
	}
}

// validateProfileField enforces the profile policy: 5 to 30 characters and
// not purely numeric.
func validateProfileField(field, value string) error {
	if len(value) < 5 || len(value) > 30 {
		return apperr.Validation(fmt.Sprintf("%s must be between 5 and 30 characters", field))
	}

	numeric := true
	for _, r := range value {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return apperr.Validation(fmt.Sprintf("%s cannot be entirely numeric", field))
	}

	return nil
}
