package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/civicledger/disclosure-engine/pkg/llm"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/retry"
)

// UnknownEntry is one Unknown-category disclosure sent to the model.
type UnknownEntry struct {
	ID      uuid.UUID `json:"id"`
	Item    string    `json:"item"`
	Details string    `json:"details"`
}

// LLMResult is the validated classification for one entry. Entries the model
// could not place stay Unknown.
type LLMResult struct {
	ID             uuid.UUID
	Classification Classification
	Confidence     string
}

const llmTemperature = 0.1

// LLMClassifier sends batches of Unknown entries to a chat model and clamps
// the response onto the fixed taxonomy. Requests are paced by a rate limiter
// and retried on transient failures.
type LLMClassifier struct {
	client  llm.Client
	limiter *rate.Limiter
	retry   *retry.Config
	logger  *zap.Logger
}

// NewLLMClassifier creates a classifier around an LLM client. requestsPerMin
// of zero or less disables pacing.
func NewLLMClassifier(client llm.Client, requestsPerMin int, logger *zap.Logger) *LLMClassifier {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMin)/60.0), 1)
	}
	return &LLMClassifier{
		client:  client,
		limiter: limiter,
		retry:   retry.DefaultConfig(),
		logger:  logger.Named("llm_classifier"),
	}
}

type llmResponseItem struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	SubCategory  string `json:"subcategory"`
	TemporalType string `json:"temporal_type"`
	Confidence   string `json:"confidence"`
}

// ClassifyBatch classifies one batch of entries. The returned slice holds one
// result per response item whose id matched an input entry; entries missing
// from the response are simply absent.
func (c *LLMClassifier) ClassifyBatch(ctx context.Context, entries []UnknownEntry) ([]LLMResult, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	prompt, err := buildCategorizationPrompt(entries)
	if err != nil {
		return nil, err
	}

	var response string
	err = retry.DoIfRetryable(ctx, c.retry, func() error {
		var genErr error
		response, genErr = c.client.GenerateResponse(ctx, prompt, categorizationSystemMessage, llmTemperature)
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("llm categorization request: %w", err)
	}

	items, err := llm.ParseJSONResponse[[]llmResponseItem](response)
	if err != nil {
		return nil, fmt.Errorf("parsing llm categorization response: %w", err)
	}

	known := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		known[e.ID] = true
	}

	results := make([]LLMResult, 0, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ID)
		if err != nil || !known[id] {
			c.logger.Warn("response references unknown entry id", zap.String("id", item.ID))
			continue
		}
		results = append(results, LLMResult{
			ID:             id,
			Classification: clampLLMClassification(item),
			Confidence:     item.Confidence,
		})
	}

	c.logger.Info("classified batch",
		zap.String("model", c.client.Model()),
		zap.Int("sent", len(entries)),
		zap.Int("returned", len(results)))

	return results, nil
}

// clampLLMClassification forces a raw model answer onto the fixed taxonomy.
// Subcategories arriving as "Category > Subcategory" lose their prefix;
// invalid categories become Unknown, and invalid temporal types fall back to
// a per-category default.
func clampLLMClassification(item llmResponseItem) Classification {
	category := models.Category(strings.TrimSpace(item.Category))
	if !category.Valid() {
		category = models.CategoryUnknown
	}

	sub := strings.TrimSpace(item.SubCategory)
	if idx := strings.Index(sub, ">"); idx >= 0 {
		sub = strings.TrimSpace(sub[idx+1:])
	}
	if sub == "" || (category != models.CategoryUnknown && !models.ValidSubcategory(category, sub)) {
		sub = models.DefaultSubcategory(category)
	}

	temporal := models.TemporalType(strings.TrimSpace(item.TemporalType))
	if !temporal.Valid() {
		switch category {
		case models.CategoryAsset, models.CategoryMembership:
			temporal = models.TemporalOngoing
		case models.CategoryIncome:
			temporal = models.TemporalRecurring
		default:
			temporal = models.TemporalOneTime
		}
	}

	return Classification{Category: category, SubCategory: sub, TemporalType: temporal}
}

const categorizationSystemMessage = "You are a data-quality assistant that categorizes parliamentary financial disclosure entries. Respond only with JSON."

const categoriesInfo = `Valid categories:
- Asset: Physical or financial assets owned by the office-holder
- Income: Sources of income
- Gift: Items or benefits given to the office-holder
- Travel: Travel benefits or expenses
- Liability: Debts or financial obligations
- Membership: Memberships in organizations
- Unknown: Only use this if you really cannot determine the category

Valid subcategories:
For Asset: Real Estate, Shares, Trust, Other Asset
For Income: Salary, Dividend, Other Income
For Membership: Professional, Other Membership
For Gift: Hospitality, Entertainment, Travel Gift, Decorative, Electronics, Other Gift
For Travel: Air Travel, Other Travel
For Liability: Mortgage, Loan, Credit, Other Liability

Temporal types (use EXACTLY one of these strings):
- "one-time": Single occurrences (e.g., a gift)
- "recurring": Repeats periodically (e.g., dividend payment)
- "ongoing": Continues indefinitely (e.g., share ownership)`

func buildCategorizationPrompt(entries []UnknownEntry) (string, error) {
	entriesJSON, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding entries: %w", err)
	}

	return fmt.Sprintf(`Categorize this batch of financial disclosure entries declared by office-holders.

%s

Here are the entries to categorize, in JSON format:
%s

For each entry, analyze the "item" and "details" fields to determine the most appropriate category, subcategory, and temporal type.

Return a JSON array with objects in this format:
[
  {
    "id": "entry_id",
    "category": "chosen_category",
    "subcategory": "chosen_subcategory",
    "temporal_type": "one-time" | "recurring" | "ongoing",
    "confidence": "high/medium/low"
  }
]

IMPORTANT:
1. For temporal_type, you MUST use exactly one of: "one-time", "recurring", "ongoing".
2. For subcategory, use ONLY the subcategory name WITHOUT the category prefix: "Shares", not "Asset > Shares".

Respond ONLY with the JSON array, nothing else.`, categoriesInfo, string(entriesJSON)), nil
}
