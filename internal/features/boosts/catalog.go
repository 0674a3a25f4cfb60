// Package boosts — catalog.go содержит статический каталог из 45 бустов.
package boosts

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog — неизменяемый реестр бустов.
type Catalog struct {
	boosts []Boost
	byID   map[string]Boost
}

var categoryOrder = []Category{
	CategorySleep, CategoryMindset, CategoryNutrition, CategoryExercise, CategoryBiohack,
}

// categoryAliases — как категорию можно назвать в команде.
var categoryAliases = map[string]Category{
	"sleep": CategorySleep, "сон": CategorySleep,
	"mindset": CategoryMindset, "мышление": CategoryMindset, "майндсет": CategoryMindset,
	"nutrition": CategoryNutrition, "питание": CategoryNutrition, "еда": CategoryNutrition,
	"exercise": CategoryExercise, "тренировки": CategoryExercise, "спорт": CategoryExercise,
	"biohacking": CategoryBiohack, "biohack": CategoryBiohack, "биохакинг": CategoryBiohack,
}

// NewCatalog строит каталог. Повтор идентификатора или неверные
// очки/уровень — ошибка конфигурации.
func NewCatalog(list []Boost) (*Catalog, error) {
	c := &Catalog{boosts: make([]Boost, 0, len(list)), byID: make(map[string]Boost, len(list))}
	for _, b := range list {
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("буст %s объявлен дважды", b.ID)
		}
		if b.Points < 1 || b.Points > 9 {
			return nil, fmt.Errorf("буст %s: очки %d вне диапазона 1..9", b.ID, b.Points)
		}
		if b.Tier != 1 && b.Tier != 2 {
			return nil, fmt.Errorf("буст %s: неизвестный уровень %d", b.ID, b.Tier)
		}
		c.boosts = append(c.boosts, b)
		c.byID[b.ID] = b
	}
	return c, nil
}

// DefaultCatalog возвращает встроенный каталог Health Rocket.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultBoosts)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup ищет буст по идентификатору (без учёта регистра).
func (c *Catalog) Lookup(id string) (Boost, bool) {
	b, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return b, ok
}

// All возвращает копию всего каталога в исходном порядке.
func (c *Catalog) All() []Boost {
	out := make([]Boost, len(c.boosts))
	copy(out, c.boosts)
	return out
}

// ByCategory возвращает бусты категории, отсортированные по очкам.
func (c *Catalog) ByCategory(cat Category) []Boost {
	var out []Boost
	for _, b := range c.boosts {
		if b.Category == cat {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points < out[j].Points })
	return out
}

// Categories возвращает категории, в которых есть бусты.
func (c *Catalog) Categories() []Category {
	var out []Category
	for _, cat := range categoryOrder {
		for _, b := range c.boosts {
			if b.Category == cat {
				out = append(out, cat)
				break
			}
		}
	}
	return out
}

// ParseCategory разбирает название категории из команды.
func ParseCategory(s string) (Category, bool) {
	cat, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return cat, ok
}

func boost(id, name string, cat Category, points, tier int, estimated string) Boost {
	return Boost{ID: id, Name: name, Category: cat, Points: points, Tier: tier, EstimatedTime: estimated}
}

var defaultBoosts = []Boost{
	boost("sleep-101", "Morning Light Protocol", CategorySleep, 1, 1, "10-15 minutes"),
	boost("sleep-102", "Sleep Preparation Zone", CategorySleep, 2, 1, "15-20 minutes"),
	boost("sleep-103", "Digital Sunset Protocol", CategorySleep, 3, 1, "20 minutes"),
	boost("sleep-104", "Evening Wind-Down", CategorySleep, 4, 1, "25 minutes"),
	boost("sleep-105", "Sleep Schedule Alignment", CategorySleep, 5, 1, "30 minutes"),
	boost("sleep-106", "Recovery Breathing Protocol", CategorySleep, 6, 1, "30 minutes"),
	boost("sleep-201", "Advanced Sleep Architecture Optimization", CategorySleep, 7, 2, "9-10 hours"),
	boost("sleep-202", "Circadian Reset Protocol", CategorySleep, 8, 2, "24 hours"),
	boost("sleep-203", "Elite Recovery Integration", CategorySleep, 9, 2, "36 hours"),

	boost("mindset-101", "Morning Gratitude Practice", CategoryMindset, 1, 1, "5-10 minutes"),
	boost("mindset-102", "Focus Block Session", CategoryMindset, 2, 1, "25 minutes"),
	boost("mindset-103", "Mindfulness Meditation", CategoryMindset, 3, 1, "15 minutes"),
	boost("mindset-104", "Growth Mindset Integration", CategoryMindset, 4, 1, "20 minutes"),
	boost("mindset-105", "Peak State Activation", CategoryMindset, 5, 1, "30 minutes"),
	boost("mindset-106", "Mental Performance Optimization", CategoryMindset, 6, 1, "30 minutes"),
	boost("mindset-201", "Advanced Meditation Integration", CategoryMindset, 7, 2, "45-60 minutes"),
	boost("mindset-202", "Flow State Protocol", CategoryMindset, 8, 2, "90-120 minutes"),
	boost("mindset-203", "Elite Mental Performance Integration", CategoryMindset, 9, 2, "120-150 minutes"),

	boost("nutrition-101", "Nutrient Density Protocol", CategoryNutrition, 1, 1, "15 minutes"),
	boost("nutrition-102", "Anti-Inflammatory Meal", CategoryNutrition, 2, 1, "20 minutes"),
	boost("nutrition-103", "Meal Timing Protocol", CategoryNutrition, 3, 1, "25 minutes + tracking"),
	boost("nutrition-104", "Personalized Protocol Design", CategoryNutrition, 4, 1, "30 minutes"),
	boost("nutrition-105", "Micronutrient Optimization", CategoryNutrition, 5, 1, "45 minutes"),
	boost("nutrition-106", "Metabolic Health Planning", CategoryNutrition, 6, 1, "60 minutes"),
	boost("nutrition-201", "Advanced Glucose Optimization", CategoryNutrition, 7, 2, "12 hours active monitoring"),
	boost("nutrition-202", "Advanced Functional Protocol", CategoryNutrition, 8, 2, "16 hours"),
	boost("nutrition-203", "Elite Nutrition Integration", CategoryNutrition, 9, 2, "24 hours"),

	boost("exercise-101", "Movement Pattern Practice", CategoryExercise, 1, 1, "15 minutes"),
	boost("exercise-102", "Morning Movement Flow", CategoryExercise, 2, 1, "20 minutes"),
	boost("exercise-103", "Zone 2 Training Session", CategoryExercise, 3, 1, "30 minutes"),
	boost("exercise-104", "Strength Foundation", CategoryExercise, 4, 1, "45 minutes"),
	boost("exercise-105", "Recovery Integration", CategoryExercise, 5, 1, "45 minutes"),
	boost("exercise-106", "Movement Integration Protocol", CategoryExercise, 6, 1, "60 minutes"),
	boost("exercise-201", "Advanced Performance Protocol", CategoryExercise, 7, 2, "90 minutes"),
	boost("exercise-202", "Elite Strength Development", CategoryExercise, 8, 2, "120 minutes"),
	boost("exercise-203", "Complete Performance Integration", CategoryExercise, 9, 2, "150 minutes"),

	boost("biohack-101", "Basic Cold Exposure", CategoryBiohack, 1, 1, "5-10 minutes"),
	boost("biohack-102", "Red Light Session", CategoryBiohack, 2, 1, "15-20 minutes"),
	boost("biohack-103", "HRV Breathing Protocol", CategoryBiohack, 3, 1, "20 minutes"),
	boost("biohack-104", "Heat Exposure Protocol", CategoryBiohack, 4, 1, "25 minutes"),
	boost("biohack-105", "Recovery Tech Stack", CategoryBiohack, 5, 1, "30 minutes"),
	boost("biohack-106", "Metabolic Enhancement", CategoryBiohack, 6, 1, "45 minutes"),
	boost("biohack-201", "Advanced Recovery Integration", CategoryBiohack, 7, 2, "90 minutes"),
	boost("biohack-202", "Longevity Protocol Integration", CategoryBiohack, 8, 2, "120 minutes"),
	boost("biohack-203", "Complete Performance Integration", CategoryBiohack, 9, 2, "150 minutes"),
}
