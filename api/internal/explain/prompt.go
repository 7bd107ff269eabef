package explain

import "fmt"

const (
	FallbackLanguage = "Unknown"
	FallbackText     = "Sorry, I had trouble explaining this code. Please try again!"
)

func languagePrompt(code string) string {
	return `Analyze this code and tell me what programming language it is. Respond with ONLY the language name (like "JavaScript", "Python", "Java", etc.) and nothing else:

` + code
}

func explanationPrompt(language, code string) string {
	return fmt.Sprintf(`Analyze the following %s code snippet and provide your analysis in two sections.

[SYNTAX]
List and explain every syntax element used in the code (e.g., keywords, operators, data types, functions, etc.). Provide a brief description for each element.

[LOGIC]
Explain the overall logic and flow of the code. Describe how the code works, what it does step-by-step, and how its components interact.


Code snippet:
%s`, language, code)
}
