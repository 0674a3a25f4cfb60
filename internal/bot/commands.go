package bot

import "strings"

// Канонические имена команд
const (
	cmdHelp   = "help"
	cmdBoosts = "boosts"
	cmdBoost  = "boost"
	cmdToday  = "today"
	cmdWeek   = "week"
	cmdStreak = "streak"
	cmdFP     = "fp"
	cmdLogin  = "login"
	cmdLogout = "logout"
	cmdPro    = "pro"
	cmdFree   = "free"
	cmdGive   = "give"
	cmdDay    = "day"
)

// commandAliases сводит русские и английские варианты к каноническому имени.
var commandAliases = map[string]string{
	"start":  cmdHelp,
	"help":   cmdHelp,
	"помощь": cmdHelp,

	"boosts": cmdBoosts,
	"бусты":  cmdBoosts,

	"boost":    cmdBoost,
	"буст":     cmdBoost,
	"complete": cmdBoost,
	"выполнил": cmdBoost,

	"today":   cmdToday,
	"сегодня": cmdToday,

	"week":   cmdWeek,
	"неделя": cmdWeek,

	"streak": cmdStreak,
	"огонек": cmdStreak,
	"огонёк": cmdStreak,
	"серия":  cmdStreak,

	"fp":      cmdFP,
	"balance": cmdFP,
	"баланс":  cmdFP,
	"очки":    cmdFP,

	"login": cmdLogin,
	"логин": cmdLogin,

	"logout": cmdLogout,
	"выход":  cmdLogout,

	"pro":  cmdPro,
	"free": cmdFree,
	"give": cmdGive,
	"day":  cmdDay,
}

// adminCommands выполняются только в личке и только с активной сессией.
var adminCommands = map[string]bool{
	cmdPro:  true,
	cmdFree: true,
	cmdGive: true,
	cmdDay:  true,
}

// CommandParser парсит команды с префиксами /, ! и .
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/", "!", "."},
	}
}

// ParseCommand разбирает текст на каноническую команду и аргументы.
// Суффикс @имя_бота у команды отбрасывается. Неизвестная команда — не команда.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return "", nil, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil, false
	}

	name := strings.ToLower(parts[0])
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	command, ok := commandAliases[name]
	if !ok {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}

// HelpText — справка по командам.
const HelpText = `🚀 Health Rocket — ежедневные бусты

!бусты [категория] — каталог (сон, мышление, питание, спорт, биохакинг)
!буст <id> — отметить буст выполненным (до 3 в день, каждый раз в день)
!сегодня — бусты за сегодня
!неделя — бусты за неделю и дни до сброса
!огонек — серия дней подряд и ближайший бонус
!баланс — Fuel Points и последние начисления

Серия: 3 дня → +5 FP, 7 дней → +10 FP, 21 день → +100 FP`
