package prompts

import "review_pulse/internal/domain"

// System prompts per business type. Each is paired with a per-task user
// template by Lookup; both halves together form the PromptTemplate.
var systemPrompts = map[string]string{
	"restaurant": `You are a restaurant operations consultant who turns customer review
analytics into concrete changes a restaurant owner can make this month.
Ground every suggestion in the supplied metrics, speak in plain language,
and never invent numbers that are not in the data.`,

	"retail": `You are a retail business advisor specializing in customer experience.
Translate review analytics into merchandising, staffing, and store-experience
actions. Ground every suggestion in the supplied metrics and keep the tone
practical, not academic.`,

	"service": `You are a consultant for service businesses (salons, repair shops,
agencies, clinics). Turn review analytics into improvements in booking,
communication, and service delivery. Stay grounded in the supplied metrics.`,

	"hospitality": `You are a hospitality consultant for hotels and lodging businesses.
Turn guest review analytics into actions across front desk, housekeeping,
amenities, and guest communication. Stay grounded in the supplied metrics.`,
}

// User templates per task. The variable lists below must match the
// placeholders exactly; Render enforces both directions.
var userPrompts = map[domain.Task]string{
	domain.TaskAnalysis: `Business: {{business_name}} ({{business_type}})
Average rating {{avg_rating}} across {{total_reviews}} reviews ({{monthly_reviews}} per month).
Sentiment: {{sentiment_summary}}.
Top themes: {{top_themes}}.
Pain points: {{pain_points}}.
Strengths: {{strengths}}.
Trends: {{trends}}.

Explain what is driving this picture. Respond with a JSON object:
{"recommendations": ["..."], "confidence": 0.0, "reasoning": "..."}
where recommendations are the 3-5 most important findings.`,

	domain.TaskRecommendations: `Business: {{business_name}} ({{business_type}})
Average rating {{avg_rating}} across {{total_reviews}} reviews ({{monthly_reviews}} per month).
Sentiment: {{sentiment_summary}}.
Top themes: {{top_themes}}.
Pain points: {{pain_points}}.
Strengths: {{strengths}}.
Trends: {{trends}}.

Give 3-5 specific, prioritized actions the owner should take next.
Respond with a JSON object:
{"recommendations": ["..."], "confidence": 0.0, "reasoning": "..."}`,

	domain.TaskMarketing: `Business: {{business_name}} ({{business_type}})
Average rating {{avg_rating}} across {{total_reviews}} reviews.
Strengths customers praise: {{strengths}}.
Sentiment: {{sentiment_summary}}.

Propose 3-5 marketing angles that lean on what customers already love.
Respond with a JSON object:
{"recommendations": ["..."], "confidence": 0.0, "reasoning": "..."}`,

	domain.TaskScenario: `Business: {{business_name}} ({{business_type}})
Average rating {{avg_rating}} across {{total_reviews}} reviews.
Pain points: {{pain_points}}.
Trends: {{trends}}.

Sketch 3 plausible six-month scenarios (best case, likely case, worst case)
if current trends continue, each with the single action that most changes it.
Respond with a JSON object:
{"recommendations": ["..."], "confidence": 0.0, "reasoning": "..."}`,
}

var taskVariables = map[domain.Task][]string{
	domain.TaskAnalysis: {
		"business_name", "business_type", "avg_rating", "total_reviews",
		"monthly_reviews", "sentiment_summary", "top_themes", "pain_points",
		"strengths", "trends",
	},
	domain.TaskRecommendations: {
		"business_name", "business_type", "avg_rating", "total_reviews",
		"monthly_reviews", "sentiment_summary", "top_themes", "pain_points",
		"strengths", "trends",
	},
	domain.TaskMarketing: {
		"business_name", "business_type", "avg_rating", "total_reviews",
		"strengths", "sentiment_summary",
	},
	domain.TaskScenario: {
		"business_name", "business_type", "avg_rating", "total_reviews",
		"pain_points", "trends",
	},
}
