package chat

import "github.com/jrsteele09/estate-client/users"

// RoleProfile is how the chat presents itself to one role: its greeting,
// accent colour and the starter prompts offered as suggestions.
type RoleProfile struct {
	Role        users.RoleType
	Title       string
	Greeting    string
	Color       string // hex, used for the role badge and accents
	Suggestions []string
}

var roleProfiles = map[users.RoleType]RoleProfile{
	users.RoleClient: {
		Role:     users.RoleClient,
		Title:    "Property Assistant",
		Greeting: "Hi there! 👋 ",
		Color:    "#2563EB",
		Suggestions: []string{
			"Show me 2-bedroom apartments in Dubai Marina",
			"What are the best family communities in Dubai?",
			"How does the buying process work for first-time buyers?",
			"What service charges should I expect?",
		},
	},
	users.RoleAgent: {
		Role:     users.RoleAgent,
		Title:    "Agent Workspace",
		Greeting: "Hi Agent! 🏠 ",
		Color:    "#059669",
		Suggestions: []string{
			"What are the current market trends in Downtown Dubai?",
			"Draft a listing description for a 3-bedroom villa",
			"Compare rental yields in JVC and Business Bay",
			"How should I follow up after a viewing?",
		},
	},
	users.RoleEmployee: {
		Role:     users.RoleEmployee,
		Title:    "Operations Desk",
		Greeting: "Hello! 👨‍💼 ",
		Color:    "#D97706",
		Suggestions: []string{
			"What documents are required for a property transfer?",
			"Summarise the RERA compliance checklist",
			"What is the process for registering a tenancy contract?",
			"Explain the DLD fee structure",
		},
	},
	users.RoleAdmin: {
		Role:     users.RoleAdmin,
		Title:    "Administration",
		Greeting: "Greetings! ⚙️ ",
		Color:    "#7C3AED",
		Suggestions: []string{
			"Show the Admin Analytics Dashboard",
			"How many active users logged in this week?",
			"Which agents closed the most deals this month?",
			"What is the system response time trend?",
		},
	},
}

// ProfileFor returns the presentation for role, falling back to client.
func ProfileFor(role users.RoleType) RoleProfile {
	if p, ok := roleProfiles[role]; ok {
		return p
	}
	return roleProfiles[users.RoleClient]
}
