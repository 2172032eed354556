package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/verte-zerg/kudlit/internal/backend"
	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/quest"
	"github.com/verte-zerg/kudlit/internal/rewards"
	"github.com/verte-zerg/kudlit/internal/script"
	"github.com/verte-zerg/kudlit/internal/store"
)

const defaultLeaderboardLimit = 10

type handlers struct {
	rewards *rewards.Service
	backend *backend.Client
	logger  *slog.Logger
}

// TransliterateRequest is the body of POST /api/transliterate/.
type TransliterateRequest struct {
	Text      string `json:"text"`
	Direction string `json:"transliteration_direction"`
	UserID    string `json:"user_id"`
}

// TransliterateResponse mirrors the backend response shape.
type TransliterateResponse struct {
	InputText      string   `json:"input_text"`
	Direction      string   `json:"transliteration_direction"`
	NormalizedText string   `json:"normalized_text"`
	Length         int      `json:"text_length"`
	Text           string   `json:"transliterated_text"`
	Warnings       []string `json:"warnings"`
}

// QuestView is the JSON form of a quest status.
type QuestView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Period      string `json:"period"`
	Target      int    `json:"target"`
	Points      int    `json:"points"`
	Progress    int    `json:"progress"`
	State       string `json:"state"`
	PeriodKey   string `json:"periodKey"`
}

// ProfileView is the JSON form of a user record.
type ProfileView struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	TotalScore  int    `json:"totalScore"`
	LoginStreak int    `json:"loginStreak"`
	LastLogin   string `json:"lastLoginDayKey,omitempty"`
}

func (h *handlers) transliterate(c *gin.Context) {
	var req TransliterateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}
	dir := script.Direction(req.Direction)
	if req.Direction == "" {
		dir = script.ToLatin
	}
	if !dir.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transliteration direction"})
		return
	}

	normalized, warnings := script.Normalize(req.Text, dir)
	resp := TransliterateResponse{
		InputText:      req.Text,
		Direction:      string(dir),
		NormalizedText: normalized,
		Length:         len([]rune(normalized)),
		Warnings:       warnings,
	}
	switch dir {
	case script.ToLatin:
		resp.Text = script.Decode(normalized)
	case script.ToBaybayin:
		if !h.backend.Configured() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": backend.ErrNotConfigured.Error()})
			return
		}
		out, err := h.backend.ToBaybayin(c.Request.Context(), normalized)
		if err != nil {
			h.logger.Warn("backend transliteration failed", "err", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		resp.Text = out.Text
		resp.Warnings = append(resp.Warnings, out.Warnings...)
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	if req.UserID != "" && h.rewards != nil && resp.Text != script.NoContent {
		if _, err := h.rewards.Transliterated(c.Request.Context(), req.UserID); err != nil {
			h.logger.Warn("transliteration not recorded", "user", req.UserID, "err", err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) profile(c *gin.Context) {
	uid := c.Param("uid")
	rec, err := h.rewards.Profile(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profileView(uid, rec))
}

func (h *handlers) setName(c *gin.Context) {
	var body struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.DisplayName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayName is required"})
		return
	}
	uid := c.Param("uid")
	rec, err := h.rewards.SetDisplayName(c.Request.Context(), uid, body.DisplayName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profileView(uid, rec))
}

func (h *handlers) login(c *gin.Context) {
	uid := c.Param("uid")
	out, err := h.rewards.Login(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":    profileView(uid, out.Record),
		"firstToday": out.FirstToday,
		"quests":     questViews(out.Quests),
	})
}

func (h *handlers) activity(c *gin.Context) {
	var body struct {
		Kind string `json:"kind"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if body.Kind != "" && model.ActivityKind(body.Kind) != model.ActivityTransliteration {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported activity kind"})
		return
	}
	statuses, err := h.rewards.Transliterated(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": questViews(statuses)})
}

func (h *handlers) quests(c *gin.Context) {
	statuses, err := h.rewards.Quests(c.Request.Context(), c.Param("uid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": questViews(statuses)})
}

func (h *handlers) claim(c *gin.Context) {
	out, err := h.rewards.Claim(c.Request.Context(), c.Param("uid"), c.Param("quest"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"claimed":    out.Claimed,
		"points":     out.Points,
		"totalScore": out.TotalScore,
		"quest":      questView(out.Quest),
	})
}

func (h *handlers) leaderboard(c *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	entries, err := h.rewards.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"rank":        e.Rank,
			"userId":      e.UserID,
			"displayName": e.DisplayName,
			"totalScore":  e.TotalScore,
			"loginStreak": e.LoginStreak,
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rewards.ErrUnknownQuest):
		return http.StatusNotFound
	case errors.Is(err, rewards.ErrQuestNotCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrRaceLost):
		return http.StatusConflict
	case errors.Is(err, store.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func profileView(uid string, rec model.UserProgressRecord) ProfileView {
	name := rec.DisplayName
	if name == "" {
		name = uid
	}
	return ProfileView{
		UserID:      uid,
		DisplayName: name,
		TotalScore:  rec.TotalScore,
		LoginStreak: rec.LoginStreak,
		LastLogin:   rec.LastLoginDayKey,
	}
}

func questView(st quest.Status) QuestView {
	return QuestView{
		ID:          st.Quest.ID,
		Title:       st.Quest.Title,
		Description: st.Quest.Description,
		Period:      string(st.Quest.Period),
		Target:      st.Quest.Target,
		Points:      st.Quest.Points,
		Progress:    st.Progress,
		State:       st.State.String(),
		PeriodKey:   st.PeriodKey,
	}
}

func questViews(statuses []quest.Status) []QuestView {
	out := make([]QuestView, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, questView(st))
	}
	return out
}
