package models

// Group представляет постоянную тренировочную группу.
// Создаётся и редактируется внешним административным контуром,
// ядро читает её для проверок вместимости и уровня.
type Group struct {
	ID              string // Идентификатор группы
	Name            string // Название
	DifficultyLevel string // Уровень сложности, шкала совпадает с Member.FitnessLevel
	MaxCapacity     int    // Максимум участников на тренировке, постоянных и временных вместе
	Active          bool   // Принимает ли группа занятия
}
