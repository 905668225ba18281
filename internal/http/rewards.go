package http

import "github.com/gin-gonic/gin"

// POST /v1/rewards
func (s *Server) listRewards(c *gin.Context) {
	var in userRef
	if !s.bind(c, "user_ref", &in) {
		return
	}
	list, err := s.rewards.ListByUser(c.Request.Context(), in.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "rewards": list})
}

// POST /v1/rewards/claim
func (s *Server) claimReward(c *gin.Context) {
	var in struct {
		RewardID uint `json:"reward_id"`
		UserID   uint `json:"user_id"`
	}
	if !s.bind(c, "reward_claim", &in) {
		return
	}
	res, err := s.rewards.Claim(c.Request.Context(), in.RewardID, in.UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"status":  "ok",
		"mensaje": "Recompensa reclamada correctamente",
		"reward":  res,
	})
}
