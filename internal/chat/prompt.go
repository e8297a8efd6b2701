package chat

import (
	"fmt"
	"strings"

	"github.com/schoolmind/schoolmind/internal/profile"
)

// SystemInstruction builds the per-request system prompt from the
// caller's resolved context and the names of the available tools. The
// model sees this once per exchange; it is never persisted.
func SystemInstruction(caller profile.Context, toolNames []string) string {
	var b strings.Builder

	b.WriteString("You are SchoolMind, a helpful assistant for a school management platform. ")
	b.WriteString("You help students, teachers, and administrators with school-related questions and tasks.\n\n")

	fmt.Fprintf(&b, "You are talking to %s", caller.DisplayName)
	if caller.OrgName != "" {
		fmt.Fprintf(&b, " from %s", caller.OrgName)
	}
	fmt.Fprintf(&b, ". Their role is: %s.\n", caller.Role)

	if clause := roleClause(caller); clause != "" {
		b.WriteString("\n")
		b.WriteString(clause)
		b.WriteString("\n")
	}

	if len(toolNames) > 0 {
		b.WriteString("\nYou have access to the following tools: ")
		b.WriteString(strings.Join(toolNames, ", "))
		b.WriteString(". Use them when they can ground your answer in real data instead of guessing.\n")
	}

	b.WriteString("\nStay on school-related topics: coursework, teaching, scheduling, school ")
	b.WriteString("administration, and general academic productivity. If asked about something ")
	b.WriteString("unrelated, politely decline and steer the conversation back.\n")
	b.WriteString("\nKeep answers clear and well structured. Prefer short paragraphs and lists ")
	b.WriteString("over walls of text.")

	return b.String()
}

// roleClause tailors the assistant's behavior to the caller's role.
// Learners get a tutor that guides rather than answers outright.
func roleClause(caller profile.Context) string {
	switch caller.Role {
	case profile.RoleLearner:
		var b strings.Builder
		b.WriteString("This user is a student. Act as a Socratic tutor: guide them toward ")
		b.WriteString("understanding with questions and hints, and never hand over direct ")
		b.WriteString("answers to homework, quizzes, or exams.")
		if len(caller.Subjects) > 0 {
			fmt.Fprintf(&b, " Their current subjects are: %s. Keep academic help within these subjects.",
				strings.Join(caller.Subjects, ", "))
		}
		return b.String()
	case profile.RoleEducator:
		return "This user is a teacher. Help with lesson planning, grading strategies, " +
			"classroom materials, and communicating with students and parents."
	case profile.RoleAdministrator:
		return "This user is a school administrator. Help with school data, scheduling, " +
			"staffing, and operational questions."
	default:
		return ""
	}
}
