package services

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

const notesPreamble = `Using the following notes:
{{.context}}

`

var answerPrompt = prompts.PromptTemplate{
	Template: notesPreamble + `Answer the question: {{.question}}
Give a concise and accurate answer based on the notes. If the notes are not enough, add your own knowledge as well.
Talk to the student directly, the way a friendly professor would. Never refer to them as "the user".
Use clear spacing, and include code snippets where they help.
`,
	InputVariables: []string{"context", "question"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

var practicePrompt = prompts.PromptTemplate{
	Template: notesPreamble + `Generate {{.count}} open-ended, long-answer practice questions that require detailed explanations or essay-style responses. For each, provide:
1. The question text.
2. The type ('long-answer').

Reply with only a JSON list of objects, for example:
[
    {"question": "Explain the significance of the Pythagorean theorem in geometry.", "type": "long-answer"}
]`,
	InputVariables: []string{"context", "count"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

var evaluationPrompt = prompts.PromptTemplate{
	Template: notesPreamble + `Evaluate the student's answer to the question: {{.question}}
Student's answer: {{.answer}}

Provide:
1. A score (0-100) based on accuracy, completeness, and relevance.
2. Brief feedback explaining the score.

Reply with only a JSON object:
{"score": <int>, "feedback": "<string>"}`,
	InputVariables: []string{"context", "question", "answer"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

var flashcardPrompt = prompts.PromptTemplate{
	Template: notesPreamble + `Generate {{.count}} flashcards for quick review. Each flashcard should have:
1. A concise question.
2. A short, accurate answer (1-2 sentences).

Reply with only a JSON list of objects:
[
    {"question": "<question>", "answer": "<answer>"}
]`,
	InputVariables: []string{"context", "count"},
	TemplateFormat: prompts.TemplateFormatGoTemplate,
}

func renderPrompt(tmpl prompts.PromptTemplate, values map[string]any) (string, error) {
	prompt, err := tmpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return prompt, nil
}
