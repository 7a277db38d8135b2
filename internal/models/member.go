// Package models содержит доменные структуры зала: участники, группы,
// тренировки, абонементы, пропуски и отработки, а также DTO для JSON-запросов.
package models

import "time"

// Member представляет участника зала.
// Абонемент хранится отдельной записью (см. Subscription), права всегда
// вычисляются из его типа и не персистятся.
type Member struct {
	UID          string    // Уникальный идентификатор участника
	Name         string    // Имя
	Email        string    // Электронная почта
	FitnessLevel string    // Уровень подготовки, совпадает со шкалой difficulty_level групп
	GroupID      *string   // Постоянная группа, nil если участник не закреплён
	CreatedAt    time.Time // Дата регистрации
}

// Permissions — набор прав участника, чистая функция от типа абонемента.
type Permissions struct {
	CanAccessFitnessPlans   bool `json:"can_access_fitness_plans"`
	CanAccessNutritionPlans bool `json:"can_access_nutrition_plans"`
	CanUploadMealPhotos     bool `json:"can_upload_meal_photos"`
	CanTrackProgress        bool `json:"can_track_progress"`
	CanScheduleRecoveries   bool `json:"can_schedule_recoveries"`
}

// PermissionsFor возвращает права для типа абонемента.
func PermissionsFor(subscriptionType string) Permissions {
	return Permissions{
		CanAccessFitnessPlans:   subscriptionType == SubscriptionFitness || subscriptionType == SubscriptionComplete,
		CanAccessNutritionPlans: subscriptionType == SubscriptionNutrition || subscriptionType == SubscriptionComplete,
		CanUploadMealPhotos:     subscriptionType == SubscriptionNutrition || subscriptionType == SubscriptionComplete,
		CanTrackProgress:        subscriptionType != SubscriptionBasic && IsValidSubscriptionType(subscriptionType),
		CanScheduleRecoveries:   subscriptionType == SubscriptionFitness || subscriptionType == SubscriptionComplete,
	}
}
