// Package rewards is the reward ledger. A reward is granted UNCLAIMED and
// can be claimed exactly once by its owner.
package rewards

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oxigo-server/internal/apperr"
	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/users"
)

type Service struct {
	db  *gorm.DB
	log logging.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, log logging.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Claimed is the state of a reward after a successful claim.
type Claimed struct {
	ID    uint   `json:"id"`
	State string `json:"state"`
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Reward, error) {
	out := []models.Reward{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, apperr.Internal("error al obtener recompensas", err)
	}
	return out, nil
}

// Grant creates an UNCLAIMED reward for an existing user.
func (s *Service) Grant(ctx context.Context, userID uint, description string) (*models.Reward, error) {
	r := &models.Reward{UserID: userID, Description: description, State: models.RewardUnclaimed, CreatedAt: s.now()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := users.NewRepo(tx).Require(ctx, userID); err != nil {
			return err
		}
		if err := tx.Create(r).Error; err != nil {
			return apperr.Internal("error creando la recompensa", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "reward granted", "reward_id", r.ID, "user_id", userID)
	return r, nil
}

// Claim marks reward id as CLAIMED on behalf of userID. The row is read
// locked and the final UPDATE is conditional on the UNCLAIMED state, so of
// two concurrent claims exactly one succeeds.
func (s *Service) Claim(ctx context.Context, id, userID uint) (*Claimed, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Reward
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Recompensa no encontrada")
		}
		if err != nil {
			return apperr.Internal("error al reclamar recompensa", err)
		}
		if r.UserID != userID {
			return apperr.Forbidden("La recompensa no pertenece a este usuario")
		}
		if r.State != models.RewardUnclaimed {
			return apperr.BadRequest("La recompensa ya ha sido reclamada")
		}

		res := tx.Model(&models.Reward{}).
			Where("id = ? AND state = ?", id, models.RewardUnclaimed).
			Update("state", models.RewardClaimed)
		if res.Error != nil {
			return apperr.Internal("error al reclamar recompensa", res.Error)
		}
		if res.RowsAffected != 1 {
			return apperr.BadRequest("La recompensa ya ha sido reclamada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "reward claimed", "reward_id", id, "user_id", userID)
	return &Claimed{ID: id, State: models.RewardClaimed}, nil
}
