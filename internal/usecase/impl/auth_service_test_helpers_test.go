package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketplace/config"
	"marketplace/internal/domain/entity"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/infra/auth"

	"github.com/google/uuid"
)

// --- In-memory repository fakes ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmailExcluding(_ context.Context, email string, excludeID uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email && user.ID != excludeID {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied

	return nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[uuid.UUID]*entity.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	repo := &fakeRoleRepo{roles: make(map[uuid.UUID]*entity.Role)}
	_ = repo.SeedDefaultRoles(context.Background())

	return repo
}

func (r *fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, repository.ErrRoleNotFound
	}
	copied := *role

	return &copied, nil
}

func (r *fakeRoleRepo) FindByName(_ context.Context, name string) (*entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := entity.NormalizeRoleName(name)
	for _, role := range r.roles {
		if role.Name == normalized {
			copied := *role

			return &copied, nil
		}
	}

	return nil, repository.ErrRoleNotFound
}

func (r *fakeRoleRepo) SeedDefaultRoles(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.roles) > 0 {
		return nil
	}
	for _, role := range entity.DefaultRoles() {
		role.ID = uuid.New()
		r.roles[role.ID] = role
	}

	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*entity.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{byUser: make(map[uuid.UUID]*entity.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Upsert(_ context.Context, token *entity.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	copied := *token
	r.byUser[token.UserID] = &copied

	return nil
}

func (r *fakeRefreshTokenRepo) FindLiveByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.byUser {
		if token.TokenHash == tokenHash && token.ExpiresAt.After(time.Now()) {
			copied := *token

			return &copied, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, token := range r.byUser {
		if !token.ExpiresAt.After(time.Now()) {
			delete(r.byUser, userID)
		}
	}

	return nil
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*entity.ResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{byUser: make(map[uuid.UUID]*entity.ResetToken)}
}

func (r *fakeResetTokenRepo) Upsert(_ context.Context, token *entity.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	copied := *token
	r.byUser[token.UserID] = &copied

	return nil
}

func (r *fakeResetTokenRepo) Consume(_ context.Context, tokenHash string) (*entity.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, token := range r.byUser {
		if token.TokenHash == tokenHash && token.ExpiresAt.After(time.Now()) {
			delete(r.byUser, userID)
			copied := *token

			return &copied, nil
		}
	}

	return nil, repository.ErrResetTokenNotFound
}

// --- Transaction fakes ---

type fakeRepoFactory struct {
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	refreshRepo repository.RefreshTokenRepository
	resetRepo   repository.ResetTokenRepository
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.userRepo }

func (f *fakeRepoFactory) RoleRepo() repository.RoleRepository { return f.roleRepo }

func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.refreshRepo
}

func (f *fakeRepoFactory) ResetTokenRepo() repository.ResetTokenRepository { return f.resetRepo }

type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// --- Mailer fake ---

type sentMail struct {
	email string
	token string
}

type fakeMailer struct {
	sent chan sentMail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 4)}
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, email, token string) error {
	m.sent <- sentMail{email: email, token: token}

	return nil
}

// --- Fixture ---

type authFixture struct {
	service      *authService
	userRepo     *fakeUserRepo
	roleRepo     *fakeRoleRepo
	refreshRepo  *fakeRefreshTokenRepo
	resetRepo    *fakeResetTokenRepo
	hasher       service.PasswordHasher
	tokenService service.TokenService
	mailer       *fakeMailer
}

func newAuthFixture() *authFixture {
	cfg := &config.Config{}
	cfg.Secret.Key = "test_secret_key_very_long_for_testing"

	tokenSvc, err := auth.NewJWTService(cfg)
	if err != nil {
		panic(err)
	}

	userRepo := newFakeUserRepo()
	roleRepo := newFakeRoleRepo()
	refreshRepo := newFakeRefreshTokenRepo()
	resetRepo := newFakeResetTokenRepo()
	hasher := auth.NewBcryptHasher()
	mailer := newFakeMailer()

	txManager := &fakeTxManager{factory: &fakeRepoFactory{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		refreshRepo: refreshRepo,
		resetRepo:   resetRepo,
	}}

	svc := NewAuthService(AuthServiceParams{
		TxManager:        txManager,
		UserRepo:         userRepo,
		RoleRepo:         roleRepo,
		RefreshTokenRepo: refreshRepo,
		ResetTokenRepo:   resetRepo,
		Hasher:           hasher,
		TokenService:     tokenSvc,
		Mailer:           mailer,
		Logger:           slog.Default(),
	})

	return &authFixture{
		service:      svc.(*authService),
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		refreshRepo:  refreshRepo,
		resetRepo:    resetRepo,
		hasher:       hasher,
		tokenService: tokenSvc,
		mailer:       mailer,
	}
}
