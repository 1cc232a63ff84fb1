// Package student содержит доменную модель студента буткемпа.
//
// Это ядро бизнес-логики системы "BotCamp Hub". Пакет определяет:
//
//   - Сущность Student: участник гильдии, зачисленный в буткемп
//   - Модель прогрессии: относительный XP и квадратичные пороги уровней
//   - Интерфейсы репозиториев: Repository, Cache, AwardLock
//
// # Архитектурные принципы
//
// Пакет следует принципам Clean Architecture и DDD:
//
//  1. Минимум внешних зависимостей - только internal/domain/shared
//  2. Dependency Inversion - интерфейсы реализуются в infrastructure
//  3. Rich Domain Model - бизнес-логика инкапсулирована в сущностях
//
// # Модель прогрессии
//
// XP хранится относительно текущего уровня. Порог уровня n равен
// 5n² + 50n + 100. Начисление XP каскадно повышает уровень, пока
// накопленный XP превышает порог, перенося остаток:
//
//	st, _ := NewStudent(NewStudentParams{ID: 1, GuildID: 10, Name: "ayen"})
//	res, _ := st.AwardXP(10) // (level 0, xp 95) + 10 -> (level 1, xp 5)
//	_ = res.LevelsGained     // 1
//
// Одно крупное начисление может пересечь несколько порогов подряд.
// Отрицательные начисления уменьшают XP (возможно, ниже нуля), но
// никогда не понижают уровень.
//
// # Инвариант
//
// После каждой операции выполняется XP < Threshold(Level).
// Нарушение инварианта в хранимых данных означает порчу состояния и
// поднимается как shared.ErrProgressionBroken.
package student
