package generator

import (
	"fmt"
	"strings"

	"github.com/mathbeast/backend/internal/models"
)

// reasoningTemplates controls how much work the model is asked to show.
var reasoningTemplates = map[models.ReasoningLevel]string{
	models.ReasoningLow: `Provide a concise solution with minimal explanation. Focus on the final answer.`,
	models.ReasoningMedium: `Provide a step-by-step solution with clear explanations.
Show your work at each step and explain the reasoning behind each transformation.`,
	models.ReasoningHigh: `Provide a detailed solution with full chain-of-thought reasoning.
Include:
- Initial problem analysis and strategy selection
- Step-by-step solution with explanations
- Alternative approaches when applicable
- Common mistakes to avoid
- Verification of the answer
- Related concepts and extensions`,
}

// harmonyFormats steer the harmony response format per reasoning level.
var harmonyFormats = map[models.ReasoningLevel]string{
	models.ReasoningLow:    "Reasoning: low\nProvide direct answer with minimal steps.",
	models.ReasoningMedium: "Reasoning: medium\nShow key steps with brief explanations.",
	models.ReasoningHigh:   "Reasoning: high\nFull chain-of-thought with detailed justification for each step.",
}

const competitionSystemPrompt = `You are an expert competitive mathematics problem solver.
Use rigorous mathematical reasoning with full proofs.
Show all intermediate steps and justify each transformation.
Consider edge cases and verify your solution.`

func BuildClassificationPrompt(rawContent, source string) string {
	return fmt.Sprintf(`
Analyze the following math problem and classify it comprehensively.

Source: %s
Problem: %s

Provide a JSON response with:
{
  "mainTopic": "one of: algebra, calculus, geometry, statistics, trigonometry, number_theory, combinatorics, linear_algebra, differential_equations, probability",
  "subtopics": ["list of specific subtopics"],
  "difficultyLevel": "one of: beginner, intermediate, advanced, expert",
  "estimatedSolveTime": number in minutes,
  "tags": ["relevant keywords"],
  "requiresCalculator": boolean,
  "requiresDrawing": boolean,
  "problemType": "one of: multiple_choice, free_response, proof, application",
  "keyConcepts": ["mathematical concepts needed"],
  "prerequisiteTopics": ["topics student should know first"],
  "competitionLevel": "one of: AMC, AIME, USAMO, IMO, none"
}

Respond with ONLY valid JSON.`, source, rawContent)
}

func BuildSolutionSystemPrompt(problem *models.Problem, level models.ReasoningLevel, includeAlternatives bool) string {
	keyConcepts := "N/A"
	if kc, ok := problem.Metadata["keyConcepts"].([]string); ok && len(kc) > 0 {
		keyConcepts = strings.Join(kc, ", ")
	}

	closing := "Focus only on the main solution."
	if includeAlternatives {
		closing = "Include alternative methods and common mistakes."
	}

	return fmt.Sprintf(`
You are an expert mathematics tutor specializing in %s.
%s

Problem Context:
- Difficulty: %s
- Topics: %s
- Key Concepts: %s

Generate a solution with the following JSON structure:
{
  "steps": [
    {"stepNumber": 1, "description": "What we're doing", "explanation": "Why we're doing it", "equation": "Mathematical expression"}
  ],
  "finalAnswer": "The final answer",
  "explanation": "Overall explanation of the solution approach",
  "alternativeMethods": [{"name": "Method name", "description": "Brief description of alternative approach"}],
  "commonMistakes": ["List of common mistakes students make"],
  "verification": {"method": "How to verify", "result": "Verification result"},
  "chainOfThought": [
    {"thought": "Initial analysis", "action": "What to do", "observation": "Result", "confidence": 0.9}
  ]
}

%s

Respond with ONLY valid JSON.`,
		problem.Topic, reasoningTemplates[level], problem.Difficulty,
		strings.Join(problem.Subtopics, ", "), keyConcepts, closing)
}

// hintPrompts are the three fixed instruction templates, from a gentle
// nudge at level 1 to walking the first step at level 3.
var hintPrompts = map[int]string{
	1: `Give a subtle hint that points the student in the right direction without revealing the method. Just nudge them toward the correct approach.`,
	2: `Give a more specific hint that identifies the key concept or technique needed, but don't solve any steps.`,
	3: `Give a detailed hint that explains the first step or two of the solution approach, helping the student get started.`,
}

func BuildHintPrompt(problem *models.Problem, currentStep int, userAnswer string, hintLevel int) string {
	attempt := ""
	if userAnswer != "" {
		attempt = fmt.Sprintf("Student's current answer attempt: %s\n", userAnswer)
	}

	return fmt.Sprintf(`
Problem: %s
Current step the student is on: %d
%s
%s

Provide ONLY the hint text, no JSON or extra formatting.`,
		problem.RawContent, currentStep, attempt, hintPrompts[hintLevel])
}

func BuildStreamSystemPrompt(level models.ReasoningLevel) string {
	return fmt.Sprintf(`
You are an expert mathematics tutor. %s
Solve the following problem step by step, explaining each step clearly.`, reasoningTemplates[level])
}

func BuildCompetitionSystemPrompt(problem *models.CompetitionProblem, level models.ReasoningLevel) string {
	return fmt.Sprintf(`%s
%s

Competition: %s %d
Problem %d
Topics: %s
Known techniques: %s

Generate a complete solution with verification.`,
		competitionSystemPrompt, harmonyFormats[level],
		problem.Competition, problem.Year, problem.ProblemNumber,
		strings.Join(problem.Topics, ", "), strings.Join(problem.Techniques, ", "))
}

func BuildCompetitionStreamSystemPrompt() string {
	return fmt.Sprintf(`%s
%s

Show your complete reasoning process as you solve this competition problem.
Think out loud and verify each step.`, competitionSystemPrompt, harmonyFormats[models.ReasoningHigh])
}
