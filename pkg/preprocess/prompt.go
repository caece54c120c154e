// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package preprocess

import "fmt"

// MaxPromptChars is the default character budget for document text sent to
// the model.
const MaxPromptChars = 400000

const structurePrompt = `Structure this English regulatory document into clean Markdown.

Rules: Clear headings (# ## ###), lists, preserve all data, remove formatting artifacts.

Document:
%s

Return ONLY Markdown:`

const translatePrompt = `Translate this document to English AND structure it as Markdown.

Rules:
- Accurate translation to English (preserve dates, numbers, names)
- Clean Markdown structure (# ## ###, lists)
- Full content, no summary
- Remove formatting artifacts

Document:
%s

Return ONLY English Markdown:`

// BuildPrompt picks the structure-only prompt for English text and the
// translate-and-structure prompt for everything else, including text whose
// language is unknown. text is cut to maxChars characters first.
func BuildPrompt(text, lang string, maxChars int) string {
	text = Truncate(text, maxChars)
	if lang == "en" {
		return fmt.Sprintf(structurePrompt, text)
	}
	return fmt.Sprintf(translatePrompt, text)
}

// Truncate returns the first n characters of s. n <= 0 leaves s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
