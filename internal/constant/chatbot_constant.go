package constant

const (
	// OnboardingAcknowledgement is returned instead of an agent answer when a
	// user keeps circling the same question. The actual routing to a human is
	// handled by the escalation pipeline.
	OnboardingAcknowledgement = `It looks like you're having trouble with this step of the onboarding. I've sent a ticket to our support team and someone will reach out to help you directly.`

	// DocGapEscalatedTemplate closes the loop with the user after a
	// documentation gap has been reported. The placeholder carries the
	// Intercom conversation id for support follow-up.
	DocGapEscalatedTemplate = `I couldn’t find a clear answer in our documentation. I’ve flagged this for the docs team so we can improve it. (intercom_conversation_id=%s)`

	// DocGapEscalationFailed is the degraded variant when the ticketing
	// system itself is unavailable.
	DocGapEscalationFailed = `I couldn’t find a clear answer in our documentation. I tried to create a ticket for the docs team but it failed.`

	// InvalidSessionMessage is returned when a question references a session
	// that was never created or has been deleted.
	InvalidSessionMessage = `No active document session found. Please upload a document first.`
)
