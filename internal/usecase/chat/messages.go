package chat

import "github.com/kailas-cloud/helpdesk/internal/domain/intent"

// Messages are the canned user-facing texts.
type Messages struct {
	Greeting        string
	Help            string
	InDomainNoMatch string
	OffTopic        string
	SystemFailure   string
	SystemPrompt    string
}

// DefaultMessages returns the stock texts for the booking API assistant.
func DefaultMessages() Messages {
	return Messages{
		Greeting: "Hello! I'm here to help you with the airline booking API documentation.\n\n" +
			"I can answer questions about:\n\n" +
			"- Flight booking and availability\n" +
			"- Payment processing\n" +
			"- Passenger management\n" +
			"- SSR (Special Service Requests)\n" +
			"- Error handling\n" +
			"- API authentication\n" +
			"- Seat selection\n" +
			"- Baggage policies\n\n" +
			"What would you like to know about the booking API?",
		Help: "I'm your booking API assistant.\n\n" +
			"Common topics:\n" +
			"- How to add infants to bookings\n" +
			"- Payment options (agency account, BSP)\n" +
			"- API authentication and tokens\n" +
			"- Booking confirmation and status\n" +
			"- Error codes and troubleshooting\n" +
			"- Currency handling\n" +
			"- Seat selection and availability\n\n" +
			"Just ask me anything like:\n" +
			"- \"How do I add infants to a booking?\"\n" +
			"- \"What payment options are available?\"\n" +
			"- \"Why am I getting booking errors?\"\n\n" +
			"What specific API topic can I help you with?",
		InDomainNoMatch: "I couldn't find specific information about that in our FAQ.\n\n" +
			"Here are some related topics I can help with:\n\n" +
			"- Flight booking and availability\n" +
			"- Payment processing (agency account, BSP)\n" +
			"- Adding infants to bookings\n" +
			"- API authentication and tokens\n" +
			"- Error handling and troubleshooting\n\n" +
			"Could you rephrase your question or ask about one of these topics?",
		OffTopic: "I'm specialized in the airline booking API documentation. " +
			"I can help you with booking, payments, authentication, error handling, " +
			"and other API-related questions.\n\n" +
			"What would you like to know about the booking API?",
		SystemFailure: "I'm having trouble accessing my knowledge base. Please try again in a moment.",
		SystemPrompt: "You are a friendly and helpful assistant specializing in the airline booking API documentation.\n\n" +
			"Guidelines:\n" +
			"- Answer questions using ONLY the information provided in the context below\n" +
			"- Be conversational and helpful while staying professional\n" +
			"- Use clear language and structure answers with short lists when appropriate\n" +
			"- Put API parameters, values and code in \"quotes\"\n" +
			"- Start with a direct answer to the question\n" +
			"- Reference multiple sources when they complement each other\n" +
			"- If the context doesn't fully answer the question, say so and suggest related topics",
	}
}

// DefaultRules returns the greeting and help rules in evaluation order.
func DefaultRules(m Messages) []intent.Rule {
	return []intent.Rule{
		{Name: intent.Greeting, Match: intent.EqualsOrPrefix(intent.DefaultGreetings...), Response: m.Greeting},
		{Name: intent.Help, Match: intent.Contains(intent.DefaultHelpPhrases...), Response: m.Help},
	}
}
