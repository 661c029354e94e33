// services/moderation_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"salonhub-backend/models"
)

const (
	defaultModerationURL   = "https://api.openai.com/v1/chat/completions"
	defaultModerationModel = "gpt-4o-mini"
	defaultThreshold       = 0.8
)

// Obvious abuse never reaches the LLM.
var abusePattern = regexp.MustCompile(`(?i)\b(scam|fraud|nazi|whore|slut|bitch|bastard|asshole|idiot|retard)\b`)

type ModerationService struct {
	db        *gorm.DB
	apiKey    string
	baseURL   string
	model     string
	threshold float64
	client    *http.Client
}

func NewModerationService(db *gorm.DB) *ModerationService {
	threshold := defaultThreshold
	if env := os.Getenv("MODERATION_THRESHOLD"); env != "" {
		if t, err := strconv.ParseFloat(env, 64); err == nil {
			threshold = t
		}
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultModerationURL
	}
	model := os.Getenv("MODERATION_MODEL")
	if model == "" {
		model = defaultModerationModel
	}
	return &ModerationService{
		db:        db,
		apiKey:    os.Getenv("OPENAI_API_KEY"),
		baseURL:   baseURL,
		model:     model,
		threshold: threshold,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Verdict is the classifier's JSON reply.
type Verdict struct {
	Flagged    bool    `json:"flagged"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ModerateReview runs the prefilter and, if needed, the LLM classifier,
// then persists the outcome. A classifier error leaves the review pending
// and visible; the sweeper retries it later.
func (s *ModerationService) ModerateReview(review *models.Review) error {
	if word := abusePattern.FindString(review.Comment); word != "" {
		return s.reject(review, "keyword filter: "+strings.ToLower(word), 1.0)
	}

	verdict, err := s.Classify(context.Background(), review.Comment)
	if err != nil {
		zap.L().Warn("moderation classify failed",
			zap.String("reviewId", review.ID.String()),
			zap.Error(err),
		)
		return nil
	}

	confidence := ClampConfidence(verdict.Confidence)
	if verdict.Flagged && confidence >= s.threshold {
		reason := verdict.Reason
		if reason == "" {
			reason = "flagged by classifier"
		}
		return s.reject(review, reason, confidence)
	}

	return s.db.Model(review).Updates(map[string]interface{}{
		"moderation_status": models.ModerationApproved,
		"confidence":        confidence,
	}).Error
}

func (s *ModerationService) reject(review *models.Review, reason string, confidence float64) error {
	err := s.db.Model(review).Updates(map[string]interface{}{
		"is_visible":        false,
		"moderation_status": models.ModerationRejected,
		"moderation_reason": reason,
		"confidence":        confidence,
	}).Error
	if err != nil {
		return err
	}

	// Auto-report with no reporter marks the system as the source.
	report := models.ReviewReport{
		ReviewID: review.ID,
		SalonID:  review.SalonID,
		Reason:   reason,
		Status:   models.ReportStatusOpen,
	}
	return s.db.Create(&report).Error
}

// Classify asks the LLM for a {flagged, confidence, reason} verdict.
func (s *ModerationService) Classify(ctx context.Context, comment string) (Verdict, error) {
	prompt := "You moderate salon reviews. Reply with strict JSON only: " +
		`{"flagged": bool, "confidence": number 0..1, "reason": string}. ` +
		"Flag hate speech, harassment, spam and personal attacks.\n\nReview:\n" + comment

	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return Verdict{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Verdict{}, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return Verdict{}, fmt.Errorf("moderation API: %s", apiErr.Error.Message)
		}
		return Verdict{}, fmt.Errorf("moderation API status %d", resp.StatusCode)
	}

	var reply chatResponse
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Verdict{}, err
	}
	if len(reply.Choices) == 0 {
		return Verdict{}, fmt.Errorf("moderation API returned no choices")
	}

	content := strings.TrimSpace(reply.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var verdict Verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("unparseable verdict: %w", err)
	}
	return verdict, nil
}

// RetryPending re-runs moderation on reviews the classifier never ruled on.
func (s *ModerationService) RetryPending(olderThan time.Time) {
	var reviews []models.Review
	if err := s.db.Where("moderation_status = ? AND created_at < ?", models.ModerationPending, olderThan).
		Find(&reviews).Error; err != nil {
		zap.L().Error("fetch pending reviews", zap.Error(err))
		return
	}
	for i := range reviews {
		if err := s.ModerateReview(&reviews[i]); err != nil {
			zap.L().Error("retry moderation", zap.String("reviewId", reviews[i].ID.String()), zap.Error(err))
		}
	}
}

func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
