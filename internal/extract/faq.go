package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maxbolgarin/docmeta/internal/model"
)

const faqHeading = "FAQ"

// FAQ collects question/answer pairs from the section under an h2 titled "FAQ".
// Every h3 is a question, its answer is the text of the paragraphs that follow it.
// The section ends at the next h1 or h2. Questions without an answer are dropped.
func FAQ(doc *goquery.Document) []model.FAQ {
	var section *goquery.Selection
	doc.Find("h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if HeadingText(s) == faqHeading {
			section = s
			return false
		}
		return true
	})
	if section == nil {
		return nil
	}

	var (
		out      []model.FAQ
		question string
		answer   []string
	)
	flush := func() {
		if question != "" && len(answer) > 0 {
			out = append(out, model.FAQ{Question: question, Answer: strings.Join(answer, " ")})
		}
		question, answer = "", nil
	}

	section.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch goquery.NodeName(s) {
		case "h1", "h2":
			return false
		case "h3":
			flush()
			question = HeadingText(s)
		case "p":
			if question == "" {
				return true
			}
			if text := strings.TrimSpace(s.Text()); text != "" {
				answer = append(answer, text)
			}
		}
		return true
	})
	flush()

	return out
}
