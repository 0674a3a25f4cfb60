// Package common — pluralize.go содержит форматирование сумм FP со знаком
// и разделителями тысяч.
package common

import "fmt"

// FormatPointsDelta создаёт строку вида "+100 FP" или "-50 FP".
// Знак «+» или «-» добавляется автоматически.
//
// Примеры:
//
//	FormatPointsDelta(100)  → "+100 FP"
//	FormatPointsDelta(-50)  → "-50 FP"
func FormatPointsDelta(amount int64) string {
	if amount >= 0 {
		return "+" + FormatPoints(amount)
	}
	return FormatPoints(amount)
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}
