package summary

import (
	"fmt"
	"strings"
)

const (
	// MaxTokens caps the generated answer.
	MaxTokens = 300
	// Temperature used for every provider.
	Temperature = 0.7
)

// Prompt asks for a short, neutral Russian summary of one news item.
func Prompt(title, description string) string {
	description = strings.Join(strings.Fields(description), " ")

	return fmt.Sprintf(`Напиши краткое резюме (2-3 предложения) на русском языке для следующей новости:

Заголовок: %s
Описание: %s

Резюме должно быть информативным и объективным. Отвечай только резюме, без дополнительных комментариев.`, title, description)
}
