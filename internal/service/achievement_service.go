package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/beams-api/internal/domain/entity"
	"github.com/yourusername/beams-api/internal/domain/repository"
	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
)

// AchievementService выдает значки и разовые награды за них.
// Значок выдается однократно; повторную выдачу блокирует уникальный
// индекс на (user_id, achievement_id).
type AchievementService struct {
	achievementRepo repository.AchievementRepository
	completionRepo  repository.CompletionRepository
	pointsService   *PointsService
}

// NewAchievementService создает новый сервис достижений
func NewAchievementService(
	achievementRepo repository.AchievementRepository,
	completionRepo repository.CompletionRepository,
	pointsService *PointsService,
) (*AchievementService, error) {
	if achievementRepo == nil {
		return nil, fmt.Errorf("AchievementRepository is required for AchievementService")
	}
	if completionRepo == nil {
		return nil, fmt.Errorf("CompletionRepository is required for AchievementService")
	}
	if pointsService == nil {
		return nil, fmt.Errorf("PointsService is required for AchievementService")
	}
	return &AchievementService{
		achievementRepo: achievementRepo,
		completionRepo:  completionRepo,
		pointsService:   pointsService,
	}, nil
}

// AwardEligible проверяет условия всех достижений и выдает заработанные.
// Вызывается после начислений; безопасен для повторных вызовов.
func (s *AchievementService) AwardEligible(userID uint) error {
	total, err := s.pointsService.GetTotal(userID)
	if err != nil {
		return err
	}

	achievements, err := s.achievementRepo.ListAll()
	if err != nil {
		return err
	}

	for _, achievement := range achievements {
		eligible, err := s.isEligible(userID, &achievement, total)
		if err != nil {
			return err
		}
		if !eligible {
			continue
		}

		if _, err := s.achievementRepo.GetUserAchievement(userID, achievement.ID); err == nil {
			continue // уже выдано
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		award := &entity.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			AwardedAt:     time.Now(),
		}
		if err := s.achievementRepo.CreateUserAchievement(award); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue // гонка с параллельной выдачей
			}
			return err
		}

		if achievement.RewardPts > 0 {
			description := fmt.Sprintf("Достижение: %s", achievement.Name)
			if err := s.pointsService.RecordPoints(userID, achievement.RewardPts, entity.PointsSourceAchievement, description); err != nil {
				log.Printf("[AchievementService] Ошибка начисления награды за достижение %d пользователю %d: %v",
					achievement.ID, userID, err)
			}
		}

		log.Printf("[AchievementService] Пользователю %d выдано достижение %q", userID, achievement.Name)
	}

	return nil
}

// ListUserAchievements возвращает достижения пользователя вместе с определениями
func (s *AchievementService) ListUserAchievements(userID uint) ([]entity.Achievement, error) {
	awards, err := s.achievementRepo.ListUserAchievements(userID)
	if err != nil {
		return nil, err
	}

	all, err := s.achievementRepo.ListAll()
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]entity.Achievement, len(all))
	for _, a := range all {
		byID[a.ID] = a
	}

	result := make([]entity.Achievement, 0, len(awards))
	for _, award := range awards {
		if a, ok := byID[award.AchievementID]; ok {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *AchievementService) isEligible(userID uint, achievement *entity.Achievement, totalPoints int64) (bool, error) {
	switch achievement.Kind {
	case entity.AchievementKindTotalPoints:
		return totalPoints >= achievement.Threshold, nil
	case entity.AchievementKindStreak:
		// Для streak-достижений порог — количество прохождений контента
		count, err := s.completionRepo.CountCompletions(userID)
		if err != nil {
			return false, err
		}
		return count >= achievement.Threshold, nil
	default:
		return false, nil
	}
}
