// Package economy — service.go содержит бизнес-логику FP:
// валидация начислений, баланс и история.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
)

// Store — хранилище балансов.
type Store interface {
	EnsureBalance(ctx context.Context, userID int64) error
	GetBalance(ctx context.Context, userID int64) (*Balance, error)
	Credit(ctx context.Context, userID int64, amount int64, txType, description string) error
	GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}

// Service управляет FP.
type Service struct {
	repo Store
	loc  *time.Location
}

// NewService создаёт новый сервис экономики. loc — пояс для дат в истории.
func NewService(repo Store, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc}
}

// GetBalance возвращает баланс. Пользователь без записи имеет 0 FP.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*Balance, error) {
	b, err := s.repo.GetBalance(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return &Balance{UserID: userID}, nil
	}
	return b, err
}

// CreateBalance создаёт нулевой баланс для нового участника.
func (s *Service) CreateBalance(ctx context.Context, userID int64) error {
	return s.repo.EnsureBalance(ctx, userID)
}

// Grant начисляет FP от имени админа.
func (s *Service) Grant(ctx context.Context, adminID, userID int64, amount int64, reason string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	desc := "Начисление администратором"
	if reason = strings.TrimSpace(reason); reason != "" {
		desc += ": " + reason
	}
	if err := s.repo.Credit(ctx, userID, amount, TxTypeAdminGive, desc); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"user_id":  userID,
		"amount":   amount,
	}).Info("Админ начислил FP")
	return nil
}

// History возвращает последние транзакции.
func (s *Service) History(ctx context.Context, userID int64) ([]*Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, HistoryLimit)
}

// FormatHistory формирует текст баланса с историей начислений.
func (s *Service) FormatHistory(b *Balance, transactions []*Transaction) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⛽ Баланс: %s\nВсего заработано: %s\n",
		common.FormatPoints(b.Balance), common.FormatPoints(b.TotalEarned)))

	if len(transactions) == 0 {
		sb.WriteString("\n📋 Начислений пока нет")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n📋 Последние %d:\n", len(transactions)))
	for i, tx := range transactions {
		sb.WriteString(fmt.Sprintf("%d. %s | %s | %s\n",
			i+1,
			common.FormatDateTime(tx.CreatedAt, s.loc),
			common.FormatPointsDelta(tx.Amount),
			tx.Description,
		))
	}
	return strings.TrimRight(sb.String(), "\n")
}
