package upstream

// Business is the collaborator's record for one business, reduced to the
// fields the preview and customization flows consume.
type Business struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	GeneratedSource string `json:"generatedCode"`
}

// CustomizeResult is the outcome of one customization exchange.
type CustomizeResult struct {
	Success           bool   `json:"success"`
	AssistantMessage  string `json:"assistantMessage"`
	UpdatedSource     string `json:"updatedCode"`
	MessagesRemaining int    `json:"messagesRemaining"`
}

// QuotaStatus reports how many customization messages a business has left
// and whether another exchange is allowed.
type QuotaStatus struct {
	Remaining    int  `json:"remaining"`
	CanCustomize bool `json:"canCustomize"`
}

// GenerationResult is the outcome of a full website generation request.
type GenerationResult struct {
	Success         bool   `json:"success"`
	GeneratedSource string `json:"generatedCode"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
}
