package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-queue-manager/internal/converter"
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
	"clinic-queue-manager/internal/domain/repository"
	"clinic-queue-manager/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileInactive    = errors.New("profile is deactivated")
	ErrStaffAlreadySet    = errors.New("profile already has a staff record")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.ProfileResponse, error)
	GrantStaff(ctx context.Context, req *dto.GrantStaffRequest) (*dto.ProfileResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentProfile(ctx context.Context, profileID uuid.UUID) (*dto.ProfileResponse, error)
}

type authUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	profileRepo repository.ProfileRepository
	clinicRepo  repository.ClinicRepository
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	clinicRepo repository.ClinicRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
) AuthUsecase {
	return &authUsecase{
		db:          db,
		log:         log,
		profileRepo: profileRepo,
		clinicRepo:  clinicRepo,
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

// RegisterPatient creates a profile with a patient record in one
// transaction. Staff and admin records are granted separately by an
// administrator.
func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.ProfileResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	profile := &entity.Profile{
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		Phone:    req.Phone,
	}

	if err := u.profileRepo.Create(tx, profile); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create profile: %+v", err)
		return nil, err
	}

	record := &entity.PatientRecord{
		ProfileID: profile.ID,
	}
	if err := u.profileRepo.CreatePatientRecord(tx, record); err != nil {
		u.log.Warnf("Failed to create patient record: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient registered: id=%s, email=%s", profile.ID, profile.Email)
	return converter.ProfileToResponse(profile, entity.RoleSet{Patient: true}), nil
}

// GrantStaff attaches a staff record to an existing profile, making it
// a staff member of the given clinic.
func (u *authUsecase) GrantStaff(ctx context.Context, req *dto.GrantStaffRequest) (*dto.ProfileResponse, error) {
	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), req.ProfileID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", req.ProfileID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), req.ClinicID)
	if err != nil {
		u.log.Warnf("Failed to find clinic %d: %+v", req.ClinicID, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	record := &entity.StaffRecord{
		ProfileID: req.ProfileID,
		ClinicID:  req.ClinicID,
	}
	if err := u.profileRepo.CreateStaffRecord(u.db.WithContext(ctx), record); err != nil {
		if isDuplicateKeyError(err, "staff_records") {
			return nil, ErrStaffAlreadySet
		}
		u.log.Warnf("Failed to create staff record: %+v", err)
		return nil, err
	}

	roles, err := u.profileRepo.Roles(u.db.WithContext(ctx), req.ProfileID)
	if err != nil {
		u.log.Warnf("Failed to load roles for profile %s: %+v", req.ProfileID, err)
		return nil, err
	}

	u.log.Infof("Staff granted: profile=%s, clinic=%d", req.ProfileID, req.ClinicID)
	return converter.ProfileToResponse(profile, roles), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	profile, err := u.profileRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to find profile by email: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if profile.IsActive != nil && !*profile.IsActive {
		return nil, ErrProfileInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Roles are snapshotted into the token at login
	roles, err := u.profileRepo.Roles(u.db.WithContext(ctx), profile.ID)
	if err != nil {
		u.log.Warnf("Failed to load roles for profile %s: %+v", profile.ID, err)
		return nil, err
	}

	return u.issueTokens(ctx, profile.ID, profile.Email, roles.Names())
}

func (u *authUsecase) issueTokens(ctx context.Context, profileID uuid.UUID, email string, roles []string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(profileID, email, roles)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(profileID, email, roles)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	accessKey := fmt.Sprintf("access_token:%s:%s", profileID.String(), accessTokenID)
	refreshKey := fmt.Sprintf("refresh_token:%s:%s", profileID.String(), refreshTokenID)

	if err := u.redisClient.Set(ctx, accessKey, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshKey, "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, accessTokenID, refreshTokenID string) error {
	accessPattern := fmt.Sprintf("access_token:*:%s", accessTokenID)
	refreshPattern := fmt.Sprintf("refresh_token:*:%s", refreshTokenID)

	for _, pattern := range []string{accessPattern, refreshPattern} {
		keys, err := u.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			u.log.Warnf("Failed to look up token keys: %+v", err)
			return err
		}
		if len(keys) > 0 {
			if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
				u.log.Warnf("Failed to delete token keys: %+v", err)
				return err
			}
		}
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	refreshKey := fmt.Sprintf("refresh_token:%s:%s", claims.ProfileID.String(), claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrTokenRevoked
	}

	// Rotate: old refresh token is spent
	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	// Re-read roles so a revoked role does not survive the rotation
	roles, err := u.profileRepo.Roles(u.db.WithContext(ctx), claims.ProfileID)
	if err != nil {
		u.log.Warnf("Failed to load roles for profile %s: %+v", claims.ProfileID, err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.ProfileID, claims.Email, roles.Names())
}

func (u *authUsecase) GetCurrentProfile(ctx context.Context, profileID uuid.UUID) (*dto.ProfileResponse, error) {
	profile, err := u.profileRepo.FindByID(u.db.WithContext(ctx), profileID)
	if err != nil {
		u.log.Warnf("Failed to find profile by ID: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	roles, err := u.profileRepo.Roles(u.db.WithContext(ctx), profileID)
	if err != nil {
		u.log.Warnf("Failed to load roles for profile %s: %+v", profileID, err)
		return nil, err
	}

	return converter.ProfileToResponse(profile, roles), nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique
// constraint violation containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
