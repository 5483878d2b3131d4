package newsletter

import "fmt"

// Section is one formatted menu section.
type Section struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Content is the formatted email content returned by a Formatter.
type Content struct {
	Subject  string    `json:"subject"`
	Sections []Section `json:"sections"`
}

// Result reports the outcome of a send or a preview.
type Result struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	Text    string `json:"text,omitempty"`
	Preview bool   `json:"preview"`
}

func noSubscribersResult(preview bool) *Result {
	return &Result{
		Success: true,
		Count:   0,
		Message: "Aucun abonné pour cette liste. Rien n'a été envoyé.",
		Subject: "Aucun abonné",
		Preview: preview,
	}
}

func sentMessage(n int) string {
	return fmt.Sprintf("Tous les emails ont bien été envoyés à %d abonné(s).", n)
}

func previewMessage(n int) string {
	return fmt.Sprintf("Aperçu prêt pour %d abonné(s). Aucun email n'a été envoyé.", n)
}
