package dto

type SummarizeRequest struct {
	GitHubURL string `json:"githubUrl"`
}

type SummarizeResponse struct {
	GitHubURL string   `json:"githubUrl"`
	Summary   string   `json:"summary"`
	CoolFacts []string `json:"coolFacts"`
}
