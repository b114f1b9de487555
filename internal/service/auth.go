package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/hash"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/logging"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/models"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/repo"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/tokens"
	"github.com/LypexzDev/Projeto-4-frontend-backend/internal/util"
)

type AuthService struct {
	Repo  repo.GormRepo
	Codec *tokens.Codec
}

// AccountView is the caller-safe projection of an account. Credential
// fields never appear here.
type AccountView struct {
	ID        uint     `json:"id"`
	Nome      string   `json:"nome"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	UsuarioID *uint    `json:"usuario_id,omitempty"`
	Saldo     *float64 `json:"saldo,omitempty"`
}

type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	Account          AccountView
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func PublicAccount(account *models.Account) AccountView {
	view := AccountView{
		ID:    account.ID,
		Nome:  account.Nome,
		Email: account.Email,
		Role:  account.Role,
	}
	if account.Role == models.RoleUser && account.Profile != nil {
		id := account.Profile.ID
		saldo := util.RoundMoney(account.Profile.Saldo)
		view.UsuarioID = &id
		view.Saldo = &saldo
	}
	return view
}

func validateRegister(nome, email, password string, saldoInicial float64) error {
	nome = strings.TrimSpace(nome)
	if len(nome) < 2 || len(nome) > 80 {
		return fmt.Errorf("%w: nome deve ter entre 2 e 80 caracteres", ErrValidation)
	}
	if len(email) < 5 || len(email) > 120 || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email invalido", ErrValidation)
	}
	if len(password) < 6 || len(password) > 100 {
		return fmt.Errorf("%w: senha deve ter entre 6 e 100 caracteres", ErrValidation)
	}
	if saldoInicial < 0 {
		return fmt.Errorf("%w: saldo inicial nao pode ser negativo", ErrValidation)
	}
	return nil
}

// Register creates the Profile+Account pair in one transaction. A profile
// already carrying the email is adopted and refreshed instead of duplicated.
func (s *AuthService) Register(ctx context.Context, nome, email, password string, saldoInicial float64) (*AccountView, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = NormalizeEmail(email)
	if err := validateRegister(nome, email, password, saldoInicial); err != nil {
		return nil, err
	}
	nome = strings.TrimSpace(nome)

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	var view AccountView
	err = s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		existing, err := tx.FindAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: email ja cadastrado", ErrConflict)
		}

		profile, err := tx.FindProfileByEmail(ctx, email)
		if err != nil {
			return err
		}
		if profile == nil {
			profile = &models.Profile{
				Nome:  nome,
				Email: email,
				Saldo: util.RoundMoney(saldoInicial),
			}
			if err := tx.CreateProfile(ctx, profile); err != nil {
				return err
			}
		} else {
			profile.Nome = nome
			profile.Saldo = util.RoundMoney(saldoInicial)
			if err := tx.SaveProfile(ctx, profile); err != nil {
				return err
			}
		}

		account := &models.Account{
			Nome:         nome,
			Email:        email,
			Role:         models.RoleUser,
			ProfileID:    &profile.ID,
			PasswordHash: pwHash,
			PasswordAlgo: models.AlgoBcrypt,
			Profile:      profile,
		}
		if err := tx.CreateAccount(ctx, account); err != nil {
			// A concurrent registration can slip past the email precheck
			// and hit the unique index instead.
			if errors.Is(err, repo.ErrDuplicate) {
				return fmt.Errorf("%w: email ja cadastrado", ErrConflict)
			}
			return err
		}

		view = PublicAccount(account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("register_success", "account_id", view.ID)
	return &view, nil
}

// verifyPassword checks the credential and, for legacy PBKDF2 accounts,
// upgrades the stored hash in place after a successful check.
func (s *AuthService) verifyPassword(ctx context.Context, tx repo.GormRepo, account *models.Account, password string) (bool, error) {
	if account.PasswordAlgo == models.AlgoPBKDF2 {
		if account.PasswordSalt == nil {
			return false, nil
		}
		if !hash.CheckLegacyPassword(password, *account.PasswordSalt, account.PasswordHash) {
			return false, nil
		}

		newHash, err := hash.HashPassword(password)
		if err != nil {
			return false, err
		}
		account.PasswordHash = newHash
		account.PasswordSalt = nil
		account.PasswordAlgo = models.AlgoBcrypt
		if err := tx.SaveAccount(ctx, account); err != nil {
			return false, err
		}
		logging.FromContext(ctx).Info("password_algo_upgraded", "account_id", account.ID)
		return true, nil
	}

	return hash.CheckPassword(account.PasswordHash, password), nil
}

func (s *AuthService) issueTokens(ctx context.Context, tx repo.GormRepo, account *models.Account) (*LoginResult, error) {
	subject := strconv.FormatUint(uint64(account.ID), 10)

	accessToken, err := s.Codec.IssueAccess(subject, account.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, jti, expiresAt, err := s.Codec.IssueRefresh(subject)
	if err != nil {
		return nil, err
	}
	if err := tx.StoreRefresh(ctx, account.ID, jti, expiresAt); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: expiresAt,
		Account:          PublicAccount(account),
	}, nil
}

// Login authenticates against one expected role. Unknown email, wrong role
// and wrong password are indistinguishable to the caller; the log keeps
// the real reason.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "role", role)
	email = NormalizeEmail(email)

	var result *LoginResult
	err := s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		account, err := tx.FindAccountByEmail(ctx, email)
		if err != nil {
			return err
		}
		if account == nil {
			l.Warn("login_failed", "reason", "unknown email")
			return fmt.Errorf("%w: conta nao encontrada", ErrUnauthorized)
		}
		if account.Role != role {
			l.Warn("login_failed", "reason", "role mismatch", "account_id", account.ID)
			return fmt.Errorf("%w: role invalida", ErrUnauthorized)
		}

		ok, err := s.verifyPassword(ctx, tx, account, password)
		if err != nil {
			return err
		}
		if !ok {
			l.Warn("login_failed", "reason", "wrong password", "account_id", account.ID)
			return fmt.Errorf("%w: senha incorreta", ErrUnauthorized)
		}

		result, err = s.issueTokens(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.purgeExpired(ctx, l)
	l.Info("login_success", "account_id", result.Account.ID)
	return result, nil
}

// purgeExpired is opportunistic ledger cleanup. It runs outside the
// login/refresh transaction: a failed purge is logged and never aborts
// the flow it piggybacks on.
func (s *AuthService) purgeExpired(ctx context.Context, l *slog.Logger) {
	if err := s.Repo.PurgeExpiredRefresh(ctx); err != nil {
		l.Warn("refresh_purge_failed", "error", err)
	}
}

// Refresh rotates a refresh token: the consumed row is revoked and a new
// pair is issued in the same transaction, so a replay of the old token
// always observes revoked = true.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.ParseRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "reason", "invalid signature or expired")
		return nil, fmt.Errorf("%w: refresh token invalido", ErrUnauthorized)
	}
	if claims.Subject == "" || claims.ID == "" {
		l.Warn("refresh_failed", "reason", "missing sub or jti")
		return nil, fmt.Errorf("%w: claims incompletas", ErrUnauthorized)
	}
	accountID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || accountID == 0 {
		l.Warn("refresh_failed", "reason", "malformed subject")
		return nil, fmt.Errorf("%w: subject invalido", ErrUnauthorized)
	}

	var result *LoginResult
	err = s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		account, err := tx.GetAccount(ctx, uint(accountID))
		if err != nil {
			return err
		}
		if account == nil {
			l.Warn("refresh_failed", "reason", "unknown account", "account_id", accountID)
			return fmt.Errorf("%w: conta nao encontrada", ErrUnauthorized)
		}

		row, err := tx.FindRefreshByJTI(ctx, claims.ID)
		if err != nil {
			return err
		}
		if row == nil {
			l.Warn("refresh_failed", "reason", "jti not in ledger", "account_id", accountID)
			return fmt.Errorf("%w: refresh token nao reconhecido", ErrUnauthorized)
		}
		if row.Revoked {
			l.Warn("refresh_failed", "reason", "jti revoked", "account_id", accountID)
			return fmt.Errorf("%w: refresh token revogado", ErrUnauthorized)
		}
		if row.ExpiresAt.Before(time.Now().UTC()) {
			l.Warn("refresh_failed", "reason", "ledger row expired", "account_id", accountID)
			return fmt.Errorf("%w: refresh token expirado", ErrUnauthorized)
		}

		consumed, err := tx.ConsumeRefresh(ctx, claims.ID)
		if err != nil {
			return err
		}
		if !consumed {
			l.Warn("refresh_failed", "reason", "lost rotation race", "account_id", accountID)
			return fmt.Errorf("%w: refresh token revogado", ErrUnauthorized)
		}

		result, err = s.issueTokens(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.purgeExpired(ctx, l)
	l.Info("refresh_success", "account_id", result.Account.ID)
	return result, nil
}

// Logout revokes every active refresh token of the account. Always
// succeeds for an authenticated caller, even with nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, accountID uint) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "account_id", accountID)
	err := s.Repo.Transaction(ctx, func(tx repo.GormRepo) error {
		return tx.RevokeAllForAccount(ctx, accountID)
	})
	if err != nil {
		return err
	}
	l.Info("logout_success")
	return nil
}

// ResolveBearer turns an access token into the live account row. Stale
// tokens for deleted accounts resolve to Unauthorized, never cached data.
func (s *AuthService) ResolveBearer(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.Codec.ParseAccess(token)
	if err != nil {
		return nil, fmt.Errorf("%w: token invalido", ErrUnauthorized)
	}
	return s.ResolveSubject(ctx, claims.Subject)
}

// ResolveSubject looks up the account behind an already-verified subject
// claim.
func (s *AuthService) ResolveSubject(ctx context.Context, subject string) (*models.Account, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: subject invalido", ErrUnauthorized)
	}
	account, err := s.Repo.GetAccount(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: conta nao encontrada", ErrUnauthorized)
	}
	return account, nil
}
