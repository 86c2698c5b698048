package incidents

import "time"

// SampleIncidents returns the records loaded by the seeder.
func SampleIncidents() []CreateIncidentInput {
	at := func(year int, month time.Month, day int) *time.Time {
		t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return []CreateIncidentInput{
		{
			Title:       "AI Chatbot Produced Harmful Content",
			Description: "An AI chatbot deployed in a customer service application started generating harmful and inappropriate responses after being exposed to biased training data.",
			Severity:    "High",
			ReportedAt:  at(2023, time.July, 15),
		},
		{
			Title:       "AI Facial Recognition False Identification",
			Description: "The facial recognition system incorrectly identified an innocent person as a wanted criminal, leading to a brief detention by authorities.",
			Severity:    "Medium",
			ReportedAt:  at(2023, time.September, 23),
		},
		{
			Title:       "AI Recommendation Algorithm Reinforcing Bias",
			Description: "A content recommendation algorithm was found to be reinforcing existing biases by preferentially suggesting content that aligned with users' pre-existing views.",
			Severity:    "Low",
			ReportedAt:  at(2023, time.November, 5),
		},
	}
}
