package service

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"go-blog-rbac-service/internal/config"
	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/repository"
	"go-blog-rbac-service/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrAccountInactive    = errors.New("account inactive")
	ErrEmailTaken         = errors.New("email already registered")
	// ErrNoDefaultRole means the role table was never seeded; it is an
	// operator error, not a user error.
	ErrNoDefaultRole = errors.New("default role not configured")
)

// ValidationError carries per-field messages back to the form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	letterRe  = regexp.MustCompile(`[a-zA-Z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
	phoneRe   = regexp.MustCompile(`^[+]?[(]?[0-9]{1,4}[)]?[-\s./0-9]*$`)
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type AuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	codec    *security.SessionCodec
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, roleRepo repository.RoleRepository, codec *security.SessionCodec) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, roleRepo: roleRepo, codec: codec}
}

// Signup registers a new account on the default role and returns the user
// together with a freshly issued session token.
func (s *AuthService) Signup(in SignupInput) (*domain.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateSignup(in); err != nil {
		return nil, "", err
	}

	if _, err := s.userRepo.FindByEmail(in.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", err
	}

	defaultRole, err := s.roleRepo.FindDefault()
	if err != nil {
		if errors.Is(err, repository.ErrNoDefaultRole) {
			return nil, "", ErrNoDefaultRole
		}
		return nil, "", err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		RoleID:       defaultRole.ID,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	if err := s.assignBootstrapAdminIfNeeded(user); err != nil {
		return nil, "", err
	}

	fresh, err := s.userRepo.FindByID(user.ID)
	if err != nil {
		return nil, "", err
	}
	token, err := s.codec.Issue(fresh.ID, fresh.Role.Name)
	if err != nil {
		return nil, "", err
	}
	return fresh, token, nil
}

// Login authenticates by email and password. Account status is checked
// before the password compare so a suspended holder of a wrong password
// still learns the account is suspended, matching the account-recovery
// flow. Unknown email and wrong password collapse into one error.
func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	switch user.Status {
	case domain.UserStatusSuspended:
		return nil, "", ErrAccountSuspended
	case domain.UserStatusInactive:
		return nil, "", ErrAccountInactive
	}

	ok, err := security.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, user.Role.Name)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CurrentUser re-reads the account behind verified claims. A deleted or
// non-ACTIVE account yields no user even when the token is still valid.
func (s *AuthService) CurrentUser(claims *security.SessionClaims) (*domain.User, error) {
	if claims == nil {
		return nil, nil
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) assignBootstrapAdminIfNeeded(user *domain.User) error {
	target := strings.TrimSpace(strings.ToLower(s.cfg.BootstrapAdminEmail))
	if target == "" || user.Email != target {
		return nil
	}
	admin, err := s.roleRepo.FindByName(adminRoleName)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil
		}
		return err
	}
	return s.userRepo.SetRole(user.ID, admin.ID)
}

func validateSignup(in SignupInput) error {
	fields := map[string]string{}
	if len(in.Name) < 2 {
		fields["name"] = "Name must be at least 2 characters long."
	} else if len(in.Name) > 100 {
		fields["name"] = "Name must be less than 100 characters."
	}
	if err := validateEmail(in.Email); err != nil {
		fields["email"] = "Please enter a valid email address."
	}
	if msg := passwordPolicyViolation(in.Password); msg != "" {
		fields["password"] = msg
	}
	if in.Phone != "" && !phoneRe.MatchString(in.Phone) {
		fields["phone"] = "Please enter a valid phone number."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func passwordPolicyViolation(password string) string {
	switch {
	case len(password) < 8:
		return "Password must be at least 8 characters long."
	case !letterRe.MatchString(password):
		return "Password must contain at least one letter."
	case !digitRe.MatchString(password):
		return "Password must contain at least one number."
	case !specialRe.MatchString(password):
		return "Password must contain at least one special character."
	}
	return ""
}
