// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки бустов
var (
	// ErrDataUnavailable — не удалось прочитать историю (сеть/БД).
	// Вызывающий считает, что выполнений нет, и даёт повторить.
	ErrDataUnavailable = errors.New("данные временно недоступны")
	// ErrDailyLimitExceeded — уже выполнено 3 буста за сегодня
	ErrDailyLimitExceeded = errors.New("лимит бустов на сегодня исчерпан (3 в день)")
	// ErrAlreadyCompleted — этот буст уже выполнен сегодня
	ErrAlreadyCompleted = errors.New("этот буст уже выполнен сегодня")
	// ErrPersistenceFailure — запись не удалась, ничего не изменено
	ErrPersistenceFailure = errors.New("не удалось сохранить выполнение буста")
	// ErrUnknownBoost — такого буста нет в каталоге
	ErrUnknownBoost = errors.New("буст не найден")
	// ErrTierLocked — буст второго уровня доступен только на Pro
	ErrTierLocked = errors.New("бусты второго уровня доступны только на Pro-плане")
)

// Ошибки экономики (FP)
var (
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// IsRejection сообщает, что ошибка — бизнес-отказ, а не сбой.
// Такие ошибки не повторяют: пользователю просто объясняют причину.
func IsRejection(err error) bool {
	return errors.Is(err, ErrDailyLimitExceeded) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrUnknownBoost) ||
		errors.Is(err, ErrTierLocked)
}

// IsRetryable сообщает, что операцию можно повторить вручную.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDataUnavailable) || errors.Is(err, ErrPersistenceFailure)
}
