package ai

import (
	"fmt"
	"strings"
)

// BookContext describes one book from the user's history for prompt building.
// Rating is only set for read books: true liked, false disliked.
type BookContext struct {
	Title   string
	Authors []string
	Rating  *bool
}

// BuildSystemPrompt embeds the user's stated preferences and preferred
// language into the recommendation instruction.
func BuildSystemPrompt(readingPreferences, preferredLanguage string) string {
	return fmt.Sprintf(`You are a book recommendation expert. Your task is to recommend a single book based on the user's reading preferences and history.

User preferences: %s
User preferred language for books: %s

Provide recommendations that align with these preferences while avoiding books the user has already read, rejected, or added to their to-read list.
Pay special attention to the user's book ratings - books marked as "liked" indicate preferences you should consider, while "disliked" books should guide you away from similar titles or styles.
Your recommendation should be thoughtful and include a compelling rationale.
Do not suggest books that the user has already mentioned in any category.

IMPORTANT LANGUAGE REQUIREMENTS:
- Always provide the book title in the user's preferred language (%s).
- The plot summary and rationale MUST be written in English, regardless of the book's language.
- Make sure to set the language field in your response to match the user's preferred language.`,
		readingPreferences, preferredLanguage, preferredLanguage)
}

// BuildUserPrompt lists the user's read (with liked/disliked annotations),
// rejected and queued books, with an explicit no-duplicates instruction.
func BuildUserPrompt(read, rejected, toRead []BookContext, preferredLanguage string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Please recommend a book for me based on my preferences. I prefer books in %s language.", preferredLanguage)

	if len(read) > 0 {
		b.WriteString("\n\nBooks I've already read:")
		for _, book := range read {
			b.WriteString(formatBookLine(book, true))
		}
	}

	if len(rejected) > 0 {
		b.WriteString("\n\nBooks I'm not interested in:")
		for _, book := range rejected {
			b.WriteString(formatBookLine(book, false))
		}
	}

	if len(toRead) > 0 {
		b.WriteString("\n\nBooks already on my to-read list (don't recommend these):")
		for _, book := range toRead {
			b.WriteString(formatBookLine(book, false))
		}
	}

	b.WriteString("\n\nPlease recommend a book that isn't in any of the lists above. Make sure your recommendation is unique and not a duplicate of anything I've already mentioned.")
	fmt.Fprintf(&b, "\n\nRemember to provide the book title in %s language, but write the plot summary and rationale in English.", preferredLanguage)

	return b.String()
}

func formatBookLine(book BookContext, withRating bool) string {
	authors := "Unknown author"
	if len(book.Authors) > 0 {
		authors = strings.Join(book.Authors, ", ")
	}

	rating := ""
	if withRating && book.Rating != nil {
		if *book.Rating {
			rating = " (liked)"
		} else {
			rating = " (disliked)"
		}
	}

	return fmt.Sprintf("\n- %q by %s%s", book.Title, authors, rating)
}
