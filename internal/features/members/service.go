// Package members — service.go содержит бизнес-логику управления участниками:
// регистрацию при первом обращении, план подписки и бан.
package members

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
)

// Store — хранилище участников.
type Store interface {
	Upsert(ctx context.Context, m *Member) (bool, error)
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	SetPlan(ctx context.Context, userID int64, plan string) error
	SetBanned(ctx context.Context, userID int64, banned bool) error
}

// RegisterHook вызывается один раз для нового участника
// (например, чтобы завести нулевой баланс FP).
type RegisterHook func(ctx context.Context, userID int64) error

// Service управляет участниками.
type Service struct {
	repo  Store
	hooks []RegisterHook

	// known — кого уже видели в этом процессе, чтобы не ходить в БД
	// на каждое сообщение.
	mu    sync.RWMutex
	known map[int64]struct{}
}

// NewService создаёт новый сервис участников.
func NewService(repo Store, hooks ...RegisterHook) *Service {
	return &Service{repo: repo, hooks: hooks, known: make(map[int64]struct{})}
}

// EnsureMember гарантирует, что пользователь есть в базе, и обновляет имя.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	s.mu.RLock()
	_, seen := s.known[userID]
	s.mu.RUnlock()
	if seen {
		return nil
	}

	inserted, err := s.repo.Upsert(ctx, &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Plan:      PlanFree,
	})
	if err != nil {
		return fmt.Errorf("ошибка регистрации участника: %w", err)
	}

	if inserted {
		for _, hook := range s.hooks {
			if err := hook(ctx, userID); err != nil {
				return fmt.Errorf("ошибка инициализации участника: %w", err)
			}
		}
		log.WithFields(log.Fields{
			"user_id":  userID,
			"username": username,
		}).Info("Новый участник зарегистрирован")
	}

	s.mu.Lock()
	s.known[userID] = struct{}{}
	s.mu.Unlock()
	return nil
}

// GetByUserID возвращает участника по Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername возвращает участника по @username (с @ или без).
func (s *Service) GetByUsername(ctx context.Context, username string) (*Member, error) {
	if len(username) > 0 && username[0] == '@' {
		username = username[1:]
	}
	return s.repo.GetByUsername(ctx, username)
}

// IsPro сообщает, есть ли у пользователя Pro-план.
// Незарегистрированный пользователь считается free.
func (s *Service) IsPro(ctx context.Context, userID int64) (bool, error) {
	m, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsPro(), nil
}

// IsBanned сообщает, забанен ли пользователь.
func (s *Service) IsBanned(ctx context.Context, userID int64) (bool, error) {
	m, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsBanned, nil
}

// SetPlan меняет план участника (free/pro).
func (s *Service) SetPlan(ctx context.Context, userID int64, plan string) error {
	if plan != PlanFree && plan != PlanPro {
		return fmt.Errorf("неизвестный план %q", plan)
	}
	if err := s.repo.SetPlan(ctx, userID, plan); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "plan": plan}).Info("План участника изменён")
	return nil
}

// SetBanned ставит или снимает бан.
func (s *Service) SetBanned(ctx context.Context, userID int64, banned bool) error {
	if err := s.repo.SetBanned(ctx, userID, banned); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "banned": banned}).Info("Бан участника изменён")
	return nil
}
