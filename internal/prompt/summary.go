package prompt

import (
	"fmt"
	"strings"

	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// SummaryQuery is the fixed question posed alongside the analyst context.
const SummaryQuery = "Summarize and suggest improvements for the restaurant based on the data above."

const summaryTemplate = `You are a restaurant menu and information database analyst specializing in identifying weak points and providing actionable improvements:
- Identify any missing or lacking information (e.g., working hours, customization options, dietary info, etc.)
- Missing metadata (e.g., opening hours, contact info, location)
- Lack of dietary labels (e.g., vegetarian, vegan, gluten-free)
- Missing allergy warnings
- No indication of portion sizes or calorie/nutritional information
- Inconsistent or unclear naming and description formats
- Missing menu categories or item tagging structure
- Lack of combo options, customizable choices, or upsell suggestions
- Missing language/localization consistency (e.g., multilingual support)
- STRICTLY Respond in the language: %s

Menu Items (%d):
%s

Restaurant Details (%d):
%s`

// BuildSummaryPrompt renders the completeness-analysis context block for the
// summary operation: every menu item and restaurant detail with counts, plus
// the analyst instructions. It is passed to the chat template as knowledge
// context, exactly like retrieved snippets would be.
func BuildSummaryPrompt(language string, menuItems []models.MenuItem, details []models.RestaurantDetail) string {
	menuLines := make([]string, 0, len(menuItems))
	for _, item := range menuItems {
		menuLines = append(menuLines, fmt.Sprintf("- %s (Price: %s)\n  Description: %s", item.Name, item.Price, item.Description))
	}

	detailLines := make([]string, 0, len(details))
	for _, detail := range details {
		detailLines = append(detailLines, fmt.Sprintf("- %s\n  Description: %s", detail.Details, detail.Description))
	}

	return fmt.Sprintf(summaryTemplate,
		language,
		len(menuItems), strings.Join(menuLines, "\n"),
		len(details), strings.Join(detailLines, "\n"),
	)
}
