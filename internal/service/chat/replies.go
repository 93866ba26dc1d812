package chat

import "fmt"

// cannedReplies is the fixed pool the simulated admin answers from.
var cannedReplies = []string{
	"I understand your concern. Let me look into this for you.",
	"That's a great question! Here's what I can tell you...",
	"I'll need to check with the department on this. Give me a moment.",
	"Thanks for bringing this to my attention. I'll help you resolve this.",
	"Let me pull up your records to give you the most accurate information.",
}

// greeting is the opening message every assigned admin sends.
func greeting(facultyName, adminName string) string {
	return fmt.Sprintf("Hello %s! I'm %s. How can I help you today?", facultyName, adminName)
}
